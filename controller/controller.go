// Package controller implements the suggestion lifecycle behind a drafting
// surface: it owns the text buffer, debounces requests to a completion
// service, discards stale results and exposes accept and dismiss.
package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Paranoid-AF/ghostwrite/suggest"
)

// Defaults for Options fields left zero.
const (
	DefaultThinkingDelay  = 500 * time.Millisecond
	DefaultFetchDelay     = 2000 * time.Millisecond
	DefaultMaxInputLength = 8192
)

// ErrorMessage is shown after a failed completion request.
const ErrorMessage = "Failed to generate suggestion. Please try again."

// Completer returns a raw continuation of text. Implementations should
// return promptly once ctx is cancelled.
type Completer interface {
	Complete(ctx context.Context, text, modelID, persona string) (string, error)
}

// Options configures a Controller.
type Options struct {
	Model   string
	Persona string
	// MaxInputLength limits the buffer, in runes.
	MaxInputLength int
	ThinkingDelay  time.Duration
	FetchDelay     time.Duration
	AcceptKey      Key
	DismissKey     Key
	Clock          Clock
	Logger         *slog.Logger

	// OnChange receives a snapshot after every state change. It is called
	// without the controller's lock held but must not call back into the
	// controller's mutating methods synchronously.
	OnChange func(Snapshot)
	// OnSelect receives the merged text after a suggestion is accepted.
	OnSelect func(text string)
}

// Controller serializes every transition under one mutex. Each change to
// the buffer, cursor, model or persona starts a new epoch; timers and fetch
// results from an older epoch are ignored.
type Controller struct {
	completer     Completer
	clock         Clock
	logger        *slog.Logger
	maxLen        int
	thinkingDelay time.Duration
	fetchDelay    time.Duration
	acceptKey     Key
	dismissKey    Key
	onChange      func(Snapshot)
	onSelect      func(string)

	mu          sync.Mutex
	text        []rune
	cursor      int
	model       string
	persona     string
	state       State
	suggestion  string
	message     string
	exceeded    bool
	epoch       uint64
	seq         uint64
	closed      bool
	thinking    Timer
	fetch       Timer
	cancelFetch context.CancelFunc

	notifyMu sync.Mutex
	notified uint64
}

// New creates a Controller that asks completer for suggestions.
func New(completer Completer, opts Options) *Controller {
	c := &Controller{
		completer:     completer,
		clock:         opts.Clock,
		logger:        opts.Logger,
		maxLen:        opts.MaxInputLength,
		thinkingDelay: opts.ThinkingDelay,
		fetchDelay:    opts.FetchDelay,
		acceptKey:     opts.AcceptKey,
		dismissKey:    opts.DismissKey,
		onChange:      opts.OnChange,
		onSelect:      opts.OnSelect,
		model:         opts.Model,
		persona:       opts.Persona,
	}
	if c.clock == nil {
		c.clock = SystemClock
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.maxLen <= 0 {
		c.maxLen = DefaultMaxInputLength
	}
	if c.thinkingDelay <= 0 {
		c.thinkingDelay = DefaultThinkingDelay
	}
	if c.fetchDelay <= 0 {
		c.fetchDelay = DefaultFetchDelay
	}
	if c.acceptKey == KeyNone {
		c.acceptKey = KeyTab
	}
	if c.dismissKey == KeyNone {
		c.dismissKey = KeyEscape
	}
	return c
}

// TextChanged replaces the buffer and cursor. Text beyond the maximum input
// length is dropped and the exceeded indicator is set.
func (c *Controller) TextChanged(text string, cursor int) {
	runes := []rune(text)
	exceeded := len(runes) > c.maxLen
	if exceeded {
		runes = runes[:c.maxLen]
	}
	cursor = clamp(cursor, len(runes))

	c.mu.Lock()
	if c.closed || (c.exceeded == exceeded && c.cursor == cursor && string(c.text) == string(runes)) {
		c.mu.Unlock()
		return
	}
	c.text = runes
	c.cursor = cursor
	c.exceeded = exceeded
	c.restart()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// CursorMoved updates the cursor. Leaving the end of the buffer hides any
// suggestion and discards an in-flight request.
func (c *Controller) CursorMoved(cursor int) {
	c.mu.Lock()
	cursor = clamp(cursor, len(c.text))
	if c.closed || cursor == c.cursor {
		c.mu.Unlock()
		return
	}
	c.cursor = cursor
	c.restart()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// SetModel switches the model id used for new requests.
func (c *Controller) SetModel(id string) {
	c.mu.Lock()
	if c.closed || id == c.model {
		c.mu.Unlock()
		return
	}
	c.model = id
	c.restart()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// SetPersona switches the persona used for new requests.
func (c *Controller) SetPersona(name string) {
	c.mu.Lock()
	if c.closed || name == c.persona {
		c.mu.Unlock()
		return
	}
	c.persona = name
	c.restart()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// Accept merges the shown suggestion into the buffer and immediately
// requests the next one. It reports false when there was nothing to accept.
func (c *Controller) Accept() bool {
	c.mu.Lock()
	if c.closed || c.state != Suggested || c.cursor != len(c.text) {
		c.mu.Unlock()
		return false
	}

	merged := append(c.text, []rune(c.suggestion)...)
	c.exceeded = len(merged) > c.maxLen
	if c.exceeded {
		merged = merged[:c.maxLen]
	}
	c.text = merged
	c.cursor = len(merged)
	c.invalidate()
	if c.canFetch() {
		c.startFetch()
	}
	text := string(c.text)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onSelect != nil {
		c.onSelect(text)
	}
	c.emit(snap)
	return true
}

// Dismiss hides the suggestion and abandons any pending request without
// touching the buffer. It reports whether a suggestion was shown.
func (c *Controller) Dismiss() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	shown := c.state == Suggested
	if c.state == Idle && c.thinking == nil && c.fetch == nil {
		c.mu.Unlock()
		return false
	}
	c.invalidate()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
	return shown
}

// Value returns the current buffer.
func (c *Controller) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.text)
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops all timers and cancels any in-flight request. Later calls are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.invalidate()
}

// invalidate starts a new epoch with no timers, no request and nothing shown.
func (c *Controller) invalidate() {
	c.epoch++
	if c.thinking != nil {
		c.thinking.Stop()
		c.thinking = nil
	}
	if c.fetch != nil {
		c.fetch.Stop()
		c.fetch = nil
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.state = Idle
	c.suggestion = ""
	c.message = ""
}

// restart invalidates the current cycle and arms the debounce timers when
// the buffer is eligible for a suggestion.
func (c *Controller) restart() {
	c.invalidate()
	if !c.canFetch() {
		return
	}
	epoch := c.epoch
	c.thinking = c.clock.AfterFunc(c.thinkingDelay, func() { c.thinkingFired(epoch) })
	c.fetch = c.clock.AfterFunc(c.fetchDelay, func() { c.fetchFired(epoch) })
}

func (c *Controller) canFetch() bool {
	return c.cursor == len(c.text) && !c.exceeded && strings.TrimSpace(string(c.text)) != ""
}

func (c *Controller) thinkingFired(epoch uint64) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.thinking = nil
	if c.state != Idle || !c.canFetch() {
		c.mu.Unlock()
		return
	}
	c.state = Thinking
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

func (c *Controller) fetchFired(epoch uint64) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.fetch = nil
	if !c.canFetch() {
		c.mu.Unlock()
		return
	}
	c.startFetch()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// startFetch issues a request for the current buffer under the current epoch.
func (c *Controller) startFetch() {
	if c.thinking != nil {
		c.thinking.Stop()
		c.thinking = nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel
	c.state = Fetching
	c.suggestion = ""
	c.message = ""

	epoch, text, model, persona := c.epoch, string(c.text), c.model, c.persona
	go c.runFetch(ctx, epoch, text, model, persona)
}

func (c *Controller) runFetch(ctx context.Context, epoch uint64, text, model, persona string) {
	start := c.clock.Now()
	raw, err := c.completer.Complete(ctx, text, model, persona)

	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding stale suggestion", "epoch", epoch, "error", err)
		return
	}
	c.cancelFetch()
	c.cancelFetch = nil

	switch {
	case err != nil:
		c.logger.Warn("suggestion request failed", "model", model, "error", err)
		c.state = Error
		c.message = ErrorMessage
	default:
		cleaned := suggest.Process(text, raw)
		c.logger.Debug("suggestion received", "model", model, "elapsed", c.clock.Now().Sub(start), "empty", cleaned == "")
		if cleaned == "" {
			c.state = Idle
		} else {
			c.state = Suggested
			c.suggestion = cleaned
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	c.seq++
	return Snapshot{
		Text:       string(c.text),
		Cursor:     c.cursor,
		State:      c.state,
		Suggestion: c.suggestion,
		Message:    c.message,
		Exceeded:   c.exceeded,
		seq:        c.seq,
	}
}

// emit delivers snap to the change observer unless a newer snapshot has
// already been delivered.
func (c *Controller) emit(snap Snapshot) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.seq <= c.notified {
		return
	}
	c.notified = snap.seq
	c.onChange(snap)
}

func clamp(n, hi int) int {
	if n < 0 {
		return 0
	}
	if n > hi {
		return hi
	}
	return n
}
