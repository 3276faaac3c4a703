package track

import (
	"fmt"
	"testing"
)

// memorySink collects appended records and can be made to fail.
type memorySink struct {
	records  []FeedbackRecord
	failures int // number of Append calls to fail before succeeding
	calls    int
}

func (m *memorySink) Append(rec FeedbackRecord) error {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return fmt.Errorf("sink unavailable")
	}
	m.records = append(m.records, rec)
	return nil
}

// strokeLog records stroke forwarding.
type strokeLog struct {
	strokes []Edit
}

func (s *strokeLog) RecordStroke(path string, pos Position) {
	s.strokes = append(s.strokes, Edit{Path: path, Pos: pos})
}

func newTestRecorder(sink Sink) (*Recorder, *strokeLog) {
	strokes := &strokeLog{}
	logf := func(string, ...any) {}
	return NewRecorder(NewDedupWindow(DedupCapacity), sink, strokes, logf), strokes
}

func completion(id, path, text string) CompletionRecord {
	return CompletionRecord{ID: id, Path: path, Text: text}
}

func TestRecorder_AcceptedExactMatch(t *testing.T) {
	sink := &memorySink{}
	r, strokes := newTestRecorder(sink)

	last := completion("c1", "/src/a.ts", "return x + y")
	r.Observe(Edit{Path: "/src/a.ts", Text: "return x + y", Pos: Position{Line: 4, Character: 0}}, last, true)

	if len(sink.records) != 1 {
		t.Fatalf("records = %d, want 1", len(sink.records))
	}
	rec := sink.records[0]
	if rec.CompletionID != "c1" {
		t.Errorf("CompletionID = %q, want c1", rec.CompletionID)
	}
	if !rec.Accepted {
		t.Error("Accepted = false, want true for exact text match")
	}
	if rec.UserText != nil {
		t.Errorf("UserText = %v, want nil on acceptance", *rec.UserText)
	}
	if len(strokes.strokes) != 1 {
		t.Errorf("strokes = %d, want 1", len(strokes.strokes))
	}
}

func TestRecorder_RejectedCarriesUserText(t *testing.T) {
	sink := &memorySink{}
	r, _ := newTestRecorder(sink)

	last := completion("c1", "a.go", "suggested")
	r.Observe(Edit{Path: "a.go", Text: "typed instead"}, last, true)

	if len(sink.records) != 1 {
		t.Fatalf("records = %d, want 1", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Accepted {
		t.Error("Accepted = true, want false")
	}
	if rec.UserText == nil || *rec.UserText != "typed instead" {
		t.Errorf("UserText = %v, want %q", rec.UserText, "typed instead")
	}
}

func TestRecorder_EmptyEditIsRejection(t *testing.T) {
	sink := &memorySink{}
	r, _ := newTestRecorder(sink)

	// A deletion inserts no text; that is still feedback, with empty UserText.
	last := completion("c1", "a.go", "suggested")
	r.Observe(Edit{Path: "a.go", Text: ""}, last, true)

	if len(sink.records) != 1 {
		t.Fatalf("records = %d, want 1", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Accepted {
		t.Error("Accepted = true, want false")
	}
	if rec.UserText == nil || *rec.UserText != "" {
		t.Errorf("UserText = %v, want empty string pointer", rec.UserText)
	}
}

func TestRecorder_ExactlyOncePerCompletion(t *testing.T) {
	sink := &memorySink{}
	r, strokes := newTestRecorder(sink)

	last := completion("c1", "a.go", "return x + y")

	// First event records; every subsequent event referencing c1 does not,
	// whatever its text.
	r.Observe(Edit{Path: "a.go", Text: "return x + y"}, last, true)
	r.Observe(Edit{Path: "a.go", Text: "something else"}, last, true)
	r.Observe(Edit{Path: "a.go", Text: "return x + y"}, last, true)

	if len(sink.records) != 1 {
		t.Fatalf("records = %d, want exactly 1", len(sink.records))
	}
	// Stroke accounting still happened on every event.
	if len(strokes.strokes) != 3 {
		t.Errorf("strokes = %d, want 3", len(strokes.strokes))
	}
}

func TestRecorder_ExactlyOnceUnderEvictionPressure(t *testing.T) {
	sink := &memorySink{}
	r, _ := newTestRecorder(sink)

	// Record c1 once.
	c1 := completion("c1", "a.go", "text")
	r.Observe(Edit{Path: "a.go", Text: "text"}, c1, true)

	// Push DedupCapacity-1 other completions through: c1 stays within the
	// window, so replays of c1 are still suppressed.
	for i := 0; i < DedupCapacity-1; i++ {
		c := completion(fmt.Sprintf("other-%d", i), "a.go", "x")
		r.Observe(Edit{Path: "a.go", Text: "x"}, c, true)
	}
	r.Observe(Edit{Path: "a.go", Text: "text"}, c1, true)

	count := 0
	for _, rec := range sink.records {
		if rec.CompletionID == "c1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("c1 records = %d, want exactly 1", count)
	}
}

func TestRecorder_DifferentFileSkipsFeedback(t *testing.T) {
	sink := &memorySink{}
	r, strokes := newTestRecorder(sink)

	// Completion c2 targets /src/a.ts; the user edits /src/b.ts instead.
	last := completion("c2", "/src/a.ts", "text")
	r.Observe(Edit{Path: "/src/b.ts", Text: "whatever", Pos: Position{Line: 1}}, last, true)

	if len(sink.records) != 0 {
		t.Errorf("records = %d, want 0 for cross-file edit", len(sink.records))
	}
	// Stroke accounting for /src/b.ts still proceeds.
	if len(strokes.strokes) != 1 || strokes.strokes[0].Path != "/src/b.ts" {
		t.Errorf("strokes = %+v, want one stroke for /src/b.ts", strokes.strokes)
	}

	// The completion remains recordable by a later same-file edit.
	r.Observe(Edit{Path: "/src/a.ts", Text: "text"}, last, true)
	if len(sink.records) != 1 {
		t.Errorf("records = %d, want 1 after same-file edit", len(sink.records))
	}
}

func TestRecorder_NoCompletionNoFeedback(t *testing.T) {
	sink := &memorySink{}
	r, strokes := newTestRecorder(sink)

	r.Observe(Edit{Path: "a.go", Text: "typing"}, CompletionRecord{}, false)
	r.Observe(Edit{Path: "a.go", Text: "more typing"}, CompletionRecord{}, false)

	if len(sink.records) != 0 {
		t.Errorf("records = %d, want 0 with no completion issued", len(sink.records))
	}
	if len(strokes.strokes) != 2 {
		t.Errorf("strokes = %d, want 2", len(strokes.strokes))
	}
}

func TestRecorder_RetriesOnceThenDrops(t *testing.T) {
	t.Run("first attempt fails, retry succeeds", func(t *testing.T) {
		sink := &memorySink{failures: 1}
		r, _ := newTestRecorder(sink)

		last := completion("c1", "a.go", "text")
		r.Observe(Edit{Path: "a.go", Text: "text"}, last, true)

		if sink.calls != 2 {
			t.Errorf("Append calls = %d, want 2", sink.calls)
		}
		if len(sink.records) != 1 {
			t.Errorf("records = %d, want 1", len(sink.records))
		}
	})

	t.Run("both attempts fail, record dropped silently", func(t *testing.T) {
		sink := &memorySink{failures: 2}
		var warned bool
		strokes := &strokeLog{}
		r := NewRecorder(NewDedupWindow(DedupCapacity), sink, strokes, func(string, ...any) { warned = true })

		last := completion("c1", "a.go", "text")
		r.Observe(Edit{Path: "a.go", Text: "text"}, last, true)

		if sink.calls != 2 {
			t.Errorf("Append calls = %d, want 2 (single bounded retry)", sink.calls)
		}
		if len(sink.records) != 0 {
			t.Errorf("records = %d, want 0", len(sink.records))
		}
		if !warned {
			t.Error("drop should be logged")
		}

		// Even a dropped record counts as handled: no replay for the same id.
		r.Observe(Edit{Path: "a.go", Text: "text"}, last, true)
		if sink.calls != 2 {
			t.Errorf("Append calls = %d, want 2 (no re-record after drop)", sink.calls)
		}
	})
}

// panicSink panics on Append; the recorder must contain it.
type panicSink struct{}

func (panicSink) Append(FeedbackRecord) error { panic("sink exploded") }

func TestRecorder_NeverPanicsToCaller(t *testing.T) {
	strokes := &strokeLog{}
	r := NewRecorder(NewDedupWindow(DedupCapacity), panicSink{}, strokes, func(string, ...any) {})

	last := completion("c1", "a.go", "text")

	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("Observe panicked to caller: %v", v)
		}
	}()
	r.Observe(Edit{Path: "a.go", Text: "text"}, last, true)
}
