package controller

import "unicode/utf8"

// State is the suggestion lifecycle state.
type State int

const (
	// Idle: nothing pending or shown.
	Idle State = iota
	// Thinking: input has paused long enough to signal that a suggestion is coming.
	Thinking
	// Fetching: a completion request is in flight.
	Fetching
	// Suggested: a cleaned suggestion is ready to show after the cursor.
	Suggested
	// Error: the last completion request failed.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Thinking:
		return "thinking"
	case Fetching:
		return "fetching"
	case Suggested:
		return "suggested"
	case Error:
		return "error"
	}
	return "unknown"
}

// Snapshot is a consistent view of the controller for rendering.
type Snapshot struct {
	Text   string
	Cursor int // in runes
	State  State
	// Suggestion is set only in the Suggested state.
	Suggestion string
	// Message is set only in the Error state.
	Message string
	// Exceeded reports that input was cut at the maximum length. Fetching is
	// suppressed while it is set.
	Exceeded bool

	seq uint64
}

// Visible reports whether ghost text should be drawn after the cursor. It
// is only drawn while the cursor sits at the end of the text.
func (s Snapshot) Visible() bool {
	return s.State == Suggested && s.Suggestion != "" && s.Cursor == utf8.RuneCountInString(s.Text)
}
