// Package draft is a terminal drafting surface: a raw-mode editor that shows
// inline suggestions from a controller as gray ghost text.
package draft

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Paranoid-AF/ghostwrite/controller"
)

// Options configures a drafting session.
type Options struct {
	Model          string
	Persona        string
	MaxInputLength int
	ThinkingDelay  time.Duration
	FetchDelay     time.Duration
	// Initial is the starting text; the cursor starts at its end.
	Initial string
	Logger  *slog.Logger
	Clock   controller.Clock
}

// TTY is a terminal switched to raw mode.
type TTY struct {
	*os.File
	oldState *term.State
}

// OpenTTY opens /dev/tty and switches it to raw mode. It reads from /dev/tty
// so stdout can be redirected to capture the finished draft.
func OpenTTY() (*TTY, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/tty: %w", err)
	}

	old, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		tty.Close()
		return nil, fmt.Errorf("raw mode: %w", err)
	}

	return &TTY{File: tty, oldState: old}, nil
}

// Close restores terminal state and closes the tty fd.
func (t *TTY) Close() error {
	fmt.Fprint(t.File, "\x1b[H\x1b[2J")
	term.Restore(int(t.Fd()), t.oldState)
	return t.File.Close()
}

// Run edits a draft read from in, rendering to out, until the user finishes
// with Ctrl-D (returning the text) or aborts with Ctrl-C (ErrInterrupt).
func Run(ctx context.Context, completer controller.Completer, in io.Reader, out io.Writer, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	redraw := make(chan struct{}, 1)
	requestRedraw := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}

	ctrl := controller.New(completer, controller.Options{
		Model:          opts.Model,
		Persona:        opts.Persona,
		MaxInputLength: opts.MaxInputLength,
		ThinkingDelay:  opts.ThinkingDelay,
		FetchDelay:     opts.FetchDelay,
		Clock:          opts.Clock,
		Logger:         logger,
		OnChange:       func(controller.Snapshot) { requestRedraw() },
		OnSelect: func(text string) {
			logger.Debug("suggestion accepted", "chars", len([]rune(text)))
		},
	})
	defer ctrl.Close()

	e := &editor{ctrl: ctrl}
	if opts.Initial != "" {
		e.buf.Set(opts.Initial, len([]rune(opts.Initial)))
		e.sync(true)
	}

	keys := make(chan keyEvent)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go readKeys(in, keys, readErr, done)

	th := newTheme(lipgloss.NewRenderer(out))
	draw := func() {
		io.WriteString(out, th.renderFrame(ctrl.Snapshot(), opts.Model, opts.Persona))
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return ctrl.Value(), ctx.Err()
		case err := <-readErr:
			if err == io.EOF {
				return ctrl.Value(), nil
			}
			return ctrl.Value(), err
		case <-redraw:
			draw()
		case k := <-keys:
			switch e.handle(k) {
			case actionFinish:
				return ctrl.Value(), nil
			case actionAbort:
				return ctrl.Value(), ErrInterrupt
			}
			draw()
		}
	}
}

// readKeys decodes key presses from in until a read fails, which it reports
// on errc, or until done is closed.
func readKeys(in io.Reader, keys chan<- keyEvent, errc chan<- error, done <-chan struct{}) {
	r := bufio.NewReader(in)
	for {
		k, err := readKey(r)
		if err != nil {
			select {
			case errc <- err:
			case <-done:
			}
			return
		}
		select {
		case keys <- k:
		case <-done:
			return
		}
	}
}

type action int

const (
	actionContinue action = iota
	actionFinish
	actionAbort
)

// editor applies key presses to the buffer and reports changes to the controller.
type editor struct {
	buf  Buffer
	ctrl *controller.Controller
}

func (e *editor) handle(k keyEvent) action {
	before := e.buf.Pos()
	changed := false

	switch k.kind {
	case keyInterrupt:
		return actionAbort
	case keyFinish:
		return actionFinish
	case keyTab:
		if e.ctrl.HandleKey(controller.KeyTab) {
			// The controller owns the merged text.
			v := e.ctrl.Value()
			e.buf.Set(v, len([]rune(v)))
		}
		return actionContinue
	case keyEscape:
		e.ctrl.HandleKey(controller.KeyEscape)
		return actionContinue
	case keyRune:
		e.buf.Insert(k.r)
		changed = true
	case keyEnter:
		e.buf.Insert('\n')
		changed = true
	case keyBackspace:
		changed = e.buf.Backspace()
	case keyDelete:
		changed = e.buf.Delete()
	case keyKillLine:
		changed = e.buf.KillLine()
	case keyLeft:
		e.buf.Left()
	case keyRight:
		e.buf.Right()
	case keyHome:
		e.buf.Home()
	case keyEnd:
		e.buf.End()
	default:
		return actionContinue
	}

	if changed {
		e.sync(true)
	} else if e.buf.Pos() != before {
		e.ctrl.CursorMoved(e.buf.Pos())
	}
	return actionContinue
}

// sync reports the buffer to the controller and adopts the controller's
// view back, which differs when input was cut at the maximum length.
func (e *editor) sync(textChanged bool) {
	if textChanged {
		e.ctrl.TextChanged(e.buf.String(), e.buf.Pos())
	}
	snap := e.ctrl.Snapshot()
	if snap.Text != e.buf.String() || snap.Cursor != e.buf.Pos() {
		e.buf.Set(snap.Text, snap.Cursor)
	}
}
