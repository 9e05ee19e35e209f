// Package model turns concrete state machines into named, data-driven
// models.
//
// A Model hides the machine's context, message and output types behind
// MessageSpec (kind plus arguments, as read from a scenario file) and
// Outcome (a rendered, JSON-friendly report of one run). This is what lets
// the CLI replay scenario files against any registered machine without
// knowing its Go types.
//
// Models are built with Define from a Definition that names the initial
// state, the contract registry and one Decoder per message kind. Decoders
// built with As use mapstructure to fill typed message structs from the
// scenario arguments, rejecting unknown keys and out-of-range integers.
package model
