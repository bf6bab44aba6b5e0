package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesMatchesTable(t *testing.T) {
	names := Names()
	require.Len(t, names, len(prompts))
	assert.Equal(t, Default, names[0])
	for _, n := range names {
		p, ok := Lookup(n)
		assert.True(t, ok, n)
		assert.NotEmpty(t, p, n)
	}
}

func TestNamesReturnsCopy(t *testing.T) {
	names := Names()
	names[0] = "mutated"
	assert.Equal(t, Default, Names()[0])
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("Pirate")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	name, prompt, fellBack := Resolve("Great Writer")
	assert.Equal(t, "Great Writer", name)
	assert.Contains(t, prompt, "literary virtuoso")
	assert.False(t, fellBack)

	name, _, fellBack = Resolve("")
	assert.Equal(t, Default, name)
	assert.False(t, fellBack)

	name, prompt, fellBack = Resolve("Pirate")
	assert.Equal(t, Default, name)
	assert.Contains(t, prompt, "versatile AI writer")
	assert.True(t, fellBack)
}
