package draft

// Buffer is the editable text with a cursor, both counted in runes.
type Buffer struct {
	text []rune
	pos  int
}

// String returns the text.
func (b *Buffer) String() string { return string(b.text) }

// Pos returns the cursor offset in runes.
func (b *Buffer) Pos() int { return b.pos }

// Len returns the text length in runes.
func (b *Buffer) Len() int { return len(b.text) }

// Set replaces the text and clamps the cursor into it.
func (b *Buffer) Set(text string, pos int) {
	b.text = []rune(text)
	b.pos = max(0, min(pos, len(b.text)))
}

// Insert adds r at the cursor.
func (b *Buffer) Insert(r rune) {
	b.text = append(b.text, 0)
	copy(b.text[b.pos+1:], b.text[b.pos:])
	b.text[b.pos] = r
	b.pos++
}

// Backspace deletes the rune before the cursor. It reports whether the text changed.
func (b *Buffer) Backspace() bool {
	if b.pos == 0 {
		return false
	}
	b.text = append(b.text[:b.pos-1], b.text[b.pos:]...)
	b.pos--
	return true
}

// Delete deletes the rune under the cursor. It reports whether the text changed.
func (b *Buffer) Delete() bool {
	if b.pos >= len(b.text) {
		return false
	}
	b.text = append(b.text[:b.pos], b.text[b.pos+1:]...)
	return true
}

// Left moves the cursor back one rune.
func (b *Buffer) Left() {
	if b.pos > 0 {
		b.pos--
	}
}

// Right moves the cursor forward one rune.
func (b *Buffer) Right() {
	if b.pos < len(b.text) {
		b.pos++
	}
}

// Home moves the cursor to the start of the current line.
func (b *Buffer) Home() {
	for b.pos > 0 && b.text[b.pos-1] != '\n' {
		b.pos--
	}
}

// End moves the cursor to the end of the current line.
func (b *Buffer) End() {
	for b.pos < len(b.text) && b.text[b.pos] != '\n' {
		b.pos++
	}
}

// KillLine deletes from the start of the current line to the cursor. It
// reports whether the text changed.
func (b *Buffer) KillLine() bool {
	end := b.pos
	b.Home()
	if b.pos == end {
		return false
	}
	b.text = append(b.text[:b.pos], b.text[end:]...)
	return true
}

// lineCol returns the zero-based line and column of the cursor.
func (b *Buffer) lineCol() (int, int) {
	return lineCol(b.text, b.pos)
}

func lineCol(text []rune, pos int) (line, col int) {
	for _, r := range text[:pos] {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}
