package track

import (
	"sync"
	"sync/atomic"
	"time"
)

// AcceptResetDelay is the fixed delay after a cursor/selection change before
// the coarse acceptance flag is cleared.
const AcceptResetDelay = 200 * time.Millisecond

// AcceptanceFlag is the coarse "last completion accepted" signal that gates
// suppression of immediately-following spurious completions. It is computed
// independently of the per-completion FeedbackRecord but can never disagree
// with it: the flag fires only when the edited text equals the completion
// text (the record's acceptance test) and the completion is multiline.
//
// The reset timer is the only cross-goroutine touch in this package; the
// flag value itself is atomic so the edit path never blocks on it.
type AcceptanceFlag struct {
	active atomic.Bool
	delay  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewAcceptanceFlag creates a flag with the standard reset delay.
func NewAcceptanceFlag() *AcceptanceFlag {
	return &AcceptanceFlag{delay: AcceptResetDelay}
}

// Observe inspects an edit against the last issued completion and raises the
// flag when the edit is an exact acceptance of a multiline suggestion.
func (f *AcceptanceFlag) Observe(edit Edit, last CompletionRecord, known bool) {
	if !known || last.ID == "" {
		return
	}
	if edit.Path != last.Path {
		return
	}
	if last.Multiline && edit.Text == last.Text {
		f.active.Store(true)
	}
}

// SelectionChanged schedules the flag to clear after the fixed delay. A
// second selection change before the delay elapses restarts the countdown.
func (f *AcceptanceFlag) SelectionChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.delay, func() {
		f.active.Store(false)
	})
}

// Active reports whether the last completion was just accepted.
func (f *AcceptanceFlag) Active() bool {
	return f.active.Load()
}
