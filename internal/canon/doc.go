// Package canon produces canonical JSON and content fingerprints.
//
// Fingerprints make run determinism checkable: two fresh checkers fed the
// same messages must produce byte-identical canonical traces, and therefore
// equal fingerprints. The encoding follows RFC 8785 for the value space the
// checker emits (objects, arrays, strings, integers, booleans, null):
//
//   - object keys sorted by UTF-16 code units
//   - no HTML escaping, U+2028/U+2029 left literal
//   - strings NFC normalized
//   - floats rejected
package canon
