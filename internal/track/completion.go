// Package track implements the in-memory core of Tacit: completion feedback
// recording, per-file interaction accounting, and the pinned context
// registry. Everything here runs on the editor's synchronous edit
// notification path, so the package does no I/O and keeps allocation to a
// minimum; durable persistence happens behind the narrow Sink interfaces.
package track

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// CompletionRecord identifies one AI-generated suggestion.
// Records are immutable after creation; the provider supersedes (never
// mutates) the current record when the next completion is issued.
type CompletionRecord struct {
	// ID is a ULID that uniquely identifies this completion
	ID string `json:"id"`

	// Path is the file the completion was generated for
	Path string `json:"path"`

	// Text is the suggested insertion
	Text string `json:"text"`

	// Multiline is true when the suggestion spans more than two lines
	// (line-break count > 1), derived at construction
	Multiline bool `json:"multiline"`
}

// NewID generates a new ULID.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustNewID generates a new ULID, panicking on entropy failure. For fixtures
// and other places where the error path is not worth threading.
func MustNewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Provider owns the "last issued completion" state shared between the
// external completion source and the feedback recorder. The recorder only
// ever sees a read-only copy of the current record.
type Provider struct {
	mu      sync.Mutex
	current CompletionRecord
	known   bool
}

// NewProvider creates an empty Provider. No completion is known until the
// first Issue call.
func NewProvider() *Provider {
	return &Provider{}
}

// Issue records a newly generated completion and returns its record.
// The previous record is superseded.
func (p *Provider) Issue(path, text string) (CompletionRecord, error) {
	id, err := NewID()
	if err != nil {
		return CompletionRecord{}, err
	}

	rec := CompletionRecord{
		ID:        id,
		Path:      path,
		Text:      text,
		Multiline: strings.Count(text, "\n") > 1,
	}

	p.mu.Lock()
	p.current = rec
	p.known = true
	p.mu.Unlock()

	return rec, nil
}

// Abort discards the current completion if (and only if) id matches it.
// An aborted completion must never be compared for acceptance, but aborting
// a stale id must not discard a different, already-issued suggestion.
func (p *Provider) Abort(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.known && p.current.ID == id {
		p.current = CompletionRecord{}
		p.known = false
	}
}

// Last returns a copy of the most recently issued completion.
// The second return value is false when no completion is known.
func (p *Provider) Last() (CompletionRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.known
}

// FeedbackRecord is the durable outcome of the user's reaction to one
// completion. At most one record is ever produced per CompletionID.
type FeedbackRecord struct {
	// CompletionID references the completion this feedback is about
	CompletionID string `json:"completion_id"`

	// Path is the file the completion was generated for
	Path string `json:"path"`

	// Accepted is true when the edited text exactly equals the suggestion
	Accepted bool `json:"accepted"`

	// UserText is the text the user typed in place of the suggestion.
	// Present only when Accepted is false; may be the empty string for a
	// deletion / no-insert edit.
	UserText *string `json:"user_text,omitempty"`

	// Multiline mirrors the completion record's multiline derivation
	Multiline bool `json:"multiline"`
}

// Sink receives feedback records for durable persistence.
// Implementations must treat the log as append-only; the core never reads it
// back for deduplication.
type Sink interface {
	Append(rec FeedbackRecord) error
}
