package draft

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Paranoid-AF/ghostwrite/controller"
)

// theme holds the editor's styles. They come from a renderer bound to the
// terminal being drawn on, which is not stdout when the draft is captured.
type theme struct {
	ghost  lipgloss.Style
	header lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	hint   lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	return theme{
		ghost:  r.NewStyle().Foreground(lipgloss.Color("8")),
		header: r.NewStyle().Bold(true),
		err:    r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		hint:   r.NewStyle().Faint(true),
	}
}

// headerLines is the number of screen rows above the text.
const headerLines = 2

// statusLine describes the suggestion state under the text.
func (t theme) statusLine(snap controller.Snapshot) string {
	var parts []string
	switch snap.State {
	case controller.Thinking:
		parts = append(parts, "Thinking...")
	case controller.Fetching:
		parts = append(parts, "Loading suggestion...")
	case controller.Suggested:
		parts = append(parts, t.hint.Render("Tab to accept, Esc to dismiss"))
	case controller.Error:
		parts = append(parts, t.err.Render(snap.Message))
	}
	if snap.Exceeded {
		parts = append(parts, t.warn.Render("Input exceeds the maximum length"))
	}
	return strings.Join(parts, "  ")
}

// renderFrame draws the whole screen for snap: a header, the text with any
// ghost suggestion after the cursor, a status line, and finally moves the
// terminal cursor back to the caret.
func (t theme) renderFrame(snap controller.Snapshot, model, persona string) string {
	var sb strings.Builder
	sb.WriteString("\x1b[H\x1b[2J") // home, clear screen

	sb.WriteString(t.header.Render("ghostwrite"))
	fmt.Fprintf(&sb, "  %s  %s\r\n", model, persona)
	sb.WriteString(t.hint.Render("Ctrl-D to finish, Ctrl-C to abort"))
	sb.WriteString("\r\n")

	sb.WriteString(crlf(snap.Text))
	if snap.Visible() {
		sb.WriteString(t.ghost.Render(snap.Suggestion))
	}
	sb.WriteString("\r\n\r\n")
	sb.WriteString(t.statusLine(snap))

	line, col := lineCol([]rune(snap.Text), snap.Cursor)
	fmt.Fprintf(&sb, "\x1b[%d;%dH", headerLines+line+1, col+1)
	return sb.String()
}

// crlf converts \n to \r\n, since raw mode disables the terminal's own translation.
func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}
