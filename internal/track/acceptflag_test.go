package track

import (
	"testing"
	"time"
)

func multilineCompletion(id, path string) CompletionRecord {
	return CompletionRecord{ID: id, Path: path, Text: "a\nb\nc", Multiline: true}
}

func TestAcceptanceFlag_SetOnMultilineAcceptance(t *testing.T) {
	f := NewAcceptanceFlag()

	last := multilineCompletion("c1", "a.go")
	f.Observe(Edit{Path: "a.go", Text: "a\nb\nc"}, last, true)

	if !f.Active() {
		t.Error("Active() = false after multiline acceptance")
	}
}

func TestAcceptanceFlag_SingleLineAcceptanceDoesNotFire(t *testing.T) {
	f := NewAcceptanceFlag()

	last := CompletionRecord{ID: "c1", Path: "a.go", Text: "return x", Multiline: false}
	f.Observe(Edit{Path: "a.go", Text: "return x"}, last, true)

	if f.Active() {
		t.Error("Active() = true for single-line completion")
	}
}

func TestAcceptanceFlag_MismatchDoesNotFire(t *testing.T) {
	f := NewAcceptanceFlag()

	last := multilineCompletion("c1", "a.go")
	f.Observe(Edit{Path: "a.go", Text: "different"}, last, true)

	if f.Active() {
		t.Error("Active() = true for non-matching edit")
	}

	f.Observe(Edit{Path: "b.go", Text: "a\nb\nc"}, last, true)
	if f.Active() {
		t.Error("Active() = true for cross-file edit")
	}
}

func TestAcceptanceFlag_NoCompletionDoesNotFire(t *testing.T) {
	f := NewAcceptanceFlag()

	f.Observe(Edit{Path: "a.go", Text: "a\nb\nc"}, CompletionRecord{}, false)

	if f.Active() {
		t.Error("Active() = true with no completion known")
	}
}

func TestAcceptanceFlag_SelectionChangeResetsAfterDelay(t *testing.T) {
	f := &AcceptanceFlag{delay: 5 * time.Millisecond}

	last := multilineCompletion("c1", "a.go")
	f.Observe(Edit{Path: "a.go", Text: "a\nb\nc"}, last, true)
	if !f.Active() {
		t.Fatal("Active() = false after acceptance")
	}

	f.SelectionChanged()

	// Still raised immediately after the change.
	if !f.Active() {
		t.Error("Active() = false immediately after selection change")
	}

	// Cleared once the delay elapses.
	deadline := time.Now().Add(500 * time.Millisecond)
	for f.Active() {
		if time.Now().After(deadline) {
			t.Fatal("flag never cleared after selection change delay")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAcceptanceFlag_RepeatSelectionChangeRestartsTimer(t *testing.T) {
	f := &AcceptanceFlag{delay: 20 * time.Millisecond}

	last := multilineCompletion("c1", "a.go")
	f.Observe(Edit{Path: "a.go", Text: "a\nb\nc"}, last, true)

	f.SelectionChanged()
	time.Sleep(10 * time.Millisecond)
	f.SelectionChanged() // restart countdown before it fires

	if !f.Active() {
		t.Error("Active() = false before the restarted delay elapsed")
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for f.Active() {
		if time.Now().After(deadline) {
			t.Fatal("flag never cleared")
		}
		time.Sleep(time.Millisecond)
	}
}
