package track

import "log"

// Edit is one editor edit event: the document it changed, the text the edit
// inserted (empty for deletions), and where the edit started.
type Edit struct {
	Path string
	Text string
	Pos  Position
}

// StrokeCounter receives stroke accounting for every edit event, independent
// of the feedback outcome. Implemented by the engine, which owns session
// switching.
type StrokeCounter interface {
	RecordStroke(path string, pos Position)
}

// Recorder classifies edit events against the most recently issued
// completion and emits at most one FeedbackRecord per completion id.
type Recorder struct {
	window  *DedupWindow
	sink    Sink
	strokes StrokeCounter
	logf    func(format string, args ...any)
}

// NewRecorder creates a Recorder. logf defaults to log.Printf when nil.
func NewRecorder(window *DedupWindow, sink Sink, strokes StrokeCounter, logf func(string, ...any)) *Recorder {
	if logf == nil {
		logf = log.Printf
	}
	return &Recorder{
		window:  window,
		sink:    sink,
		strokes: strokes,
		logf:    logf,
	}
}

// Observe handles one edit event. last is a read-only copy of the provider's
// current completion; known is false when no completion has been issued (or
// the current one was aborted).
//
// Observe never returns an error and never panics out: the caller is the
// editor's synchronous edit-notification path, and a failure there must not
// block further editing. Persistence failures are retried once with the same
// record, then dropped with a logged warning.
func (r *Recorder) Observe(edit Edit, last CompletionRecord, known bool) {
	defer func() {
		if v := recover(); v != nil {
			r.logf("tacit: recovered while recording feedback: %v", v)
		}
	}()

	// Stroke accounting happens exactly once per edit event, whatever the
	// feedback branch below decides.
	defer r.strokes.RecordStroke(edit.Path, edit.Pos)

	if !known || last.ID == "" {
		// Feedback is only ever tied to a known completion identifier.
		return
	}
	if edit.Path != last.Path {
		// Edit landed in a different file than the completion targeted.
		return
	}
	if r.window.Contains(last.ID) {
		// Already recorded for this completion.
		return
	}

	accepted := edit.Text == last.Text

	rec := FeedbackRecord{
		CompletionID: last.ID,
		Path:         last.Path,
		Accepted:     accepted,
		Multiline:    last.Multiline,
	}
	if !accepted {
		// May be the empty string: a deletion / no-insert edit.
		userText := edit.Text
		rec.UserText = &userText
	}

	r.append(rec)

	// Mark recorded regardless of persistence outcome so a flaky sink can
	// never cause a duplicate record for the same completion.
	r.window.Insert(last.ID)
}

// append hands the record to the sink with a single bounded retry.
func (r *Recorder) append(rec FeedbackRecord) {
	err := r.sink.Append(rec)
	if err == nil {
		return
	}
	if err = r.sink.Append(rec); err == nil {
		return
	}
	r.logf("tacit: dropping feedback for completion %s after retry: %v", rec.CompletionID, err)
}
