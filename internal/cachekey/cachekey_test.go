package cachekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest_Deterministic(t *testing.T) {
	args := []any{"theorem foo : 1 = 1 := rfl", "foo.lean", "/tmp/project", []string{"Mathlib"}, 60}

	hash1 := Digest(args...)
	hash2 := Digest(args...)

	assert.NotEmpty(t, hash1)
	assert.Len(t, hash1, 64, "SHA256 hex digest is 64 characters")
	assert.Equal(t, hash1, hash2, "Digest should be deterministic")
}

func TestDigest_MapKeyOrderIrrelevant(t *testing.T) {
	// Build the same logical mapping with different insertion orders
	first := map[string]any{}
	first["benchmark"] = "minif2f"
	first["session"] = map[string]any{"id": "abc", "run": 3}

	second := map[string]any{}
	second["session"] = map[string]any{"run": 3, "id": "abc"}
	second["benchmark"] = "minif2f"

	assert.Equal(t, Digest("x", first), Digest("x", second),
		"Map key order should not change the digest")
}

func TestDigest_ArgumentsChangeKey(t *testing.T) {
	base := Digest("content", "foo.lean", "/project", []string{}, 60)

	assert.NotEqual(t, base, Digest("other content", "foo.lean", "/project", []string{}, 60))
	assert.NotEqual(t, base, Digest("content", "bar.lean", "/project", []string{}, 60))
	assert.NotEqual(t, base, Digest("content", "foo.lean", "/project", []string{"Mathlib"}, 60))
	assert.NotEqual(t, base, Digest("content", "foo.lean", "/project", []string{}, 120))
}

func TestDigest_ListOrderMatters(t *testing.T) {
	first := Digest([]string{"Mathlib", "Aesop"})
	second := Digest([]string{"Aesop", "Mathlib"})

	assert.NotEqual(t, first, second, "Lists are order-sensitive")
}

func TestDigest_ScalarKinds(t *testing.T) {
	assert.NotEqual(t, Digest(true), Digest(false))
	assert.Equal(t, Digest(nil), Digest(nil))
	assert.Equal(t, Digest(int64(60)), Digest(60), "Integer kinds encode identically")
}
