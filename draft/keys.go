package draft

import (
	"bufio"
	"errors"
	"unicode/utf8"
)

// ErrInterrupt is returned when the user presses Ctrl-C.
var ErrInterrupt = errors.New("interrupted")

type keyKind int

const (
	keyRune keyKind = iota
	keyEnter
	keyBackspace
	keyDelete
	keyLeft
	keyRight
	keyUp
	keyDown
	keyHome
	keyEnd
	keyTab
	keyEscape
	keyKillLine
	keyInterrupt
	keyFinish
	keyIgnored
)

type keyEvent struct {
	kind keyKind
	r    rune
}

// readKey decodes one key press from raw terminal input. A lone ESC with
// nothing buffered behind it is the Escape key; otherwise it starts a CSI
// sequence.
func readKey(r *bufio.Reader) (keyEvent, error) {
	b, err := r.ReadByte()
	if err != nil {
		return keyEvent{}, err
	}

	switch b {
	case 3: // Ctrl-C
		return keyEvent{kind: keyInterrupt}, nil
	case 4: // Ctrl-D
		return keyEvent{kind: keyFinish}, nil
	case 9:
		return keyEvent{kind: keyTab}, nil
	case 13, 10: // Enter
		return keyEvent{kind: keyEnter}, nil
	case 127, 8: // Backspace / Ctrl-H
		return keyEvent{kind: keyBackspace}, nil
	case 1: // Ctrl-A
		return keyEvent{kind: keyHome}, nil
	case 5: // Ctrl-E
		return keyEvent{kind: keyEnd}, nil
	case 21: // Ctrl-U
		return keyEvent{kind: keyKillLine}, nil
	case 27:
		if r.Buffered() == 0 {
			return keyEvent{kind: keyEscape}, nil
		}
		return readEscape(r)
	}

	if b < 32 {
		return keyEvent{kind: keyIgnored}, nil
	}
	if b < utf8.RuneSelf {
		return keyEvent{kind: keyRune, r: rune(b)}, nil
	}

	// Multi-byte UTF-8 sequence.
	buf := []byte{b}
	for len(buf) < utf8RuneLen(b) {
		next, err := r.ReadByte()
		if err != nil {
			return keyEvent{}, err
		}
		buf = append(buf, next)
	}
	ch, _ := utf8.DecodeRune(buf)
	if ch == utf8.RuneError {
		return keyEvent{kind: keyIgnored}, nil
	}
	return keyEvent{kind: keyRune, r: ch}, nil
}

func readEscape(r *bufio.Reader) (keyEvent, error) {
	b, err := r.ReadByte()
	if err != nil {
		return keyEvent{}, err
	}
	if b != '[' && b != 'O' {
		return keyEvent{kind: keyIgnored}, nil
	}
	b, err = r.ReadByte()
	if err != nil {
		return keyEvent{}, err
	}
	switch b {
	case 'A':
		return keyEvent{kind: keyUp}, nil
	case 'B':
		return keyEvent{kind: keyDown}, nil
	case 'C':
		return keyEvent{kind: keyRight}, nil
	case 'D':
		return keyEvent{kind: keyLeft}, nil
	case 'H':
		return keyEvent{kind: keyHome}, nil
	case 'F':
		return keyEvent{kind: keyEnd}, nil
	case '1', '3', '4', '7', '8': // \x1b[N~
		if _, err := r.ReadByte(); err != nil { // consume '~'
			return keyEvent{}, err
		}
		switch b {
		case '3':
			return keyEvent{kind: keyDelete}, nil
		case '1', '7':
			return keyEvent{kind: keyHome}, nil
		default:
			return keyEvent{kind: keyEnd}, nil
		}
	}
	return keyEvent{kind: keyIgnored}, nil
}

// utf8RuneLen returns the expected byte length of a UTF-8 sequence
// from its leading byte.
func utf8RuneLen(lead byte) int {
	if lead < 0xC0 {
		return 1
	}
	if lead < 0xE0 {
		return 2
	}
	if lead < 0xF0 {
		return 3
	}
	return 4
}
