package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	// Multi-byte runes are never split
	assert.Equal(t, "Şubat", Truncate("Şubat ayı", 5))
	assert.Equal(t, 5, RuneLen(Truncate("ğüşöçığüşöçı", 5)))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a \n\t b   c "))
	assert.Equal(t, "", CollapseSpace(" \n "))
}
