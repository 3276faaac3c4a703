package track

import "log"

// SessionSink receives the delta of every closed interaction session for
// durable aggregation. Failures are logged, never surfaced to the editor.
type SessionSink interface {
	SessionClosed(delta SessionDelta) error
}

// Engine wires the recorder, interaction store, dedup window, acceptance
// flag, and context registry behind entry points that mirror the editor's
// notifications. All entry points execute synchronously on the editor's
// single notification callback; the engine is the one logical writer of its
// state.
type Engine struct {
	Store    *InteractionStore
	Window   *DedupWindow
	Flag     *AcceptanceFlag
	Registry *Registry
	Provider *Provider

	recorder *Recorder
	sessions SessionSink
	logf     func(format string, args ...any)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSessionSink attaches a durable aggregation sink for closed sessions.
func WithSessionSink(s SessionSink) Option {
	return func(e *Engine) { e.sessions = s }
}

// WithLogf overrides the warning logger (used by tests).
func WithLogf(logf func(string, ...any)) Option {
	return func(e *Engine) { e.logf = logf }
}

// NewEngine creates an engine that hands feedback records to sink.
func NewEngine(sink Sink, opts ...Option) *Engine {
	e := &Engine{
		Store:    NewInteractionStore(),
		Window:   NewDedupWindow(DedupCapacity),
		Flag:     NewAcceptanceFlag(),
		Registry: NewRegistry(),
		Provider: NewProvider(),
		logf:     log.Printf,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recorder = NewRecorder(e.Window, sink, e, e.logf)
	return e
}

// DocumentOpened switches the open session to path and counts a visit.
// Closing the previous session is done here, explicitly, because
// StartSession refuses to close implicitly.
func (e *Engine) DocumentOpened(path string) {
	e.ensureSession(path)
	e.Store.IncrementVisits()
}

// DocumentClosed ends the session for path if it is the open one.
// Accumulated counters for the path survive; only Forget discards them.
func (e *Engine) DocumentClosed(path string) {
	if open, ok := e.Store.OpenPath(); !ok || open != path {
		return
	}
	e.closeSession()
}

// DocumentChanged handles one edit event: feedback classification against
// the last issued completion, the coarse acceptance flag, and stroke
// accounting. Exactly one stroke accounting pass happens per event.
func (e *Engine) DocumentChanged(path, insertedText string, line, character int) {
	edit := Edit{Path: path, Text: insertedText, Pos: Position{Line: line, Character: character}}
	last, known := e.Provider.Last()

	e.Flag.Observe(edit, last, known)
	e.recorder.Observe(edit, last, known)
}

// SelectionChanged schedules the acceptance flag reset.
func (e *Engine) SelectionChanged() {
	e.Flag.SelectionChanged()
}

// CompletionIssued registers a newly generated completion for path.
func (e *Engine) CompletionIssued(path, text string) (CompletionRecord, error) {
	return e.Provider.Issue(path, text)
}

// CompletionAborted discards the in-flight completion with the given id.
func (e *Engine) CompletionAborted(id string) {
	e.Provider.Abort(id)
}

// Forget drops all in-memory interaction state for a path the editor will no
// longer track.
func (e *Engine) Forget(path string) {
	e.Store.Delete(path)
}

// RecordStroke implements StrokeCounter. Stroke accounting follows the
// edited document: if the edit landed outside the open session's file, the
// engine switches the session first so the stroke lands on the right path.
func (e *Engine) RecordStroke(path string, pos Position) {
	e.ensureSession(path)
	e.Store.IncrementStrokes(pos.Line, pos.Character)
}

// ensureSession makes path the open session, closing any other open session
// first.
func (e *Engine) ensureSession(path string) {
	if open, ok := e.Store.OpenPath(); ok {
		if open == path {
			return
		}
		e.closeSession()
	}
	if err := e.Store.StartSession(path); err != nil {
		// Impossible by construction: the open session was just closed.
		e.logf("tacit: start session for %s: %v", path, err)
	}
}

// closeSession ends the open session and forwards its delta to the session
// sink, if any.
func (e *Engine) closeSession() {
	delta, ok := e.Store.EndSession()
	if !ok || e.sessions == nil {
		return
	}
	if err := e.sessions.SessionClosed(delta); err != nil {
		e.logf("tacit: persisting session for %s: %v", delta.Path, err)
	}
}
