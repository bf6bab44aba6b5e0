package controller

// Key identifies a key the controller can bind to accept or dismiss.
type Key int

const (
	KeyNone Key = iota
	KeyTab
	KeyEscape
	KeyRight
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyTab:
		return "tab"
	case KeyEscape:
		return "escape"
	case KeyRight:
		return "right"
	case KeyEnter:
		return "enter"
	}
	return "none"
}

// HandleKey applies the accept and dismiss bindings. It returns true when the
// key was consumed, in which case the caller must not apply the key's
// default editing behavior.
func (c *Controller) HandleKey(k Key) bool {
	switch k {
	case KeyNone:
		return false
	case c.acceptKey:
		return c.Accept()
	case c.dismissKey:
		return c.Dismiss()
	}
	return false
}
