package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferEditing(t *testing.T) {
	var b Buffer
	for _, r := range "héllo" {
		b.Insert(r)
	}
	assert.Equal(t, "héllo", b.String())
	assert.Equal(t, 5, b.Pos())

	b.Left()
	b.Left()
	b.Insert('X')
	assert.Equal(t, "hélXlo", b.String())
	assert.Equal(t, 4, b.Pos())

	assert.True(t, b.Backspace())
	assert.True(t, b.Delete())
	assert.Equal(t, "hélo", b.String())
	assert.Equal(t, 3, b.Pos())
}

func TestBufferBounds(t *testing.T) {
	var b Buffer
	assert.False(t, b.Backspace())
	assert.False(t, b.Delete())
	b.Left()
	b.Right()
	assert.Equal(t, 0, b.Pos())

	b.Set("abc", 99)
	assert.Equal(t, 3, b.Pos())
	b.Set("abc", -1)
	assert.Equal(t, 0, b.Pos())
}

func TestBufferLines(t *testing.T) {
	var b Buffer
	b.Set("first\nsecond line", 9)

	b.Home()
	assert.Equal(t, 6, b.Pos())
	b.End()
	assert.Equal(t, 17, b.Pos())

	line, col := b.lineCol()
	assert.Equal(t, 1, line)
	assert.Equal(t, 11, col)

	assert.True(t, b.KillLine())
	assert.Equal(t, "first\n", b.String())
	assert.False(t, b.KillLine())
}
