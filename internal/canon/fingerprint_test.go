package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	v := map[string]any{"b": 1, "a": []any{"x", true}}
	first, err := Fingerprint(DomainTrace, v)
	require.NoError(t, err)
	second, err := Fingerprint(DomainTrace, map[string]any{"a": []any{"x", true}, "b": 1})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	a := MustFingerprint(DomainTrace, map[string]int{"contents": 70})
	b := MustFingerprint(DomainTrace, map[string]int{"contents": 71})
	assert.NotEqual(t, a, b)
}

func TestFingerprint_DomainSeparation(t *testing.T) {
	v := map[string]int{"step": 1}
	assert.NotEqual(t,
		MustFingerprint(DomainTrace, v),
		MustFingerprint(DomainVerdict, v))
}

func TestFingerprint_NullSeparator(t *testing.T) {
	// Without the separator, ("ab", "c") and ("a", "bc") would collide.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestFingerprint_Error(t *testing.T) {
	_, err := Fingerprint(DomainTrace, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DomainTrace)

	assert.Panics(t, func() { MustFingerprint(DomainTrace, 0.5) })
}
