package track

import (
	"sort"
	"time"

	"github.com/tacit-sh/tacit/internal/errors"
)

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// PathStats is the accumulated interaction state for one file. Counters are
// monotonically non-decreasing until Delete removes the path entirely;
// closing and reopening sessions never resets them.
type PathStats struct {
	Path           string    `json:"path"`
	Visits         int64     `json:"visits"`
	Strokes        int64     `json:"strokes"`
	SessionSeconds float64   `json:"session_seconds"`
	LastStroke     Position  `json:"last_stroke"`
	LastActive     time.Time `json:"last_active"`
}

// SessionDelta describes what one open-to-close session contributed.
// It is handed to the persistence layer when the session ends.
type SessionDelta struct {
	Path       string
	Visits     int64
	Strokes    int64
	Seconds    float64
	LastStroke Position
	Started    time.Time
	Ended      time.Time
}

// InteractionStore tracks per-file interaction counters and the single open
// session. Pure in-memory state, no I/O; there is exactly one logical writer
// (the editor's edit-notification callback), so no lock is taken.
type InteractionStore struct {
	stats map[string]*PathStats

	openPath string // "" when no session is open
	start    time.Time

	// per-session deltas, reset on StartSession
	visits  int64
	strokes int64
	last    Position

	now func() time.Time // injectable clock for tests
}

// NewInteractionStore creates an empty store. No session exists before the
// first StartSession call.
func NewInteractionStore() *InteractionStore {
	return &InteractionStore{
		stats: make(map[string]*PathStats),
		now:   time.Now,
	}
}

// StartSession opens a session for path. If a session is already open the
// caller must close it first; closing is the caller's explicit
// responsibility, never implicit inside StartSession.
func (s *InteractionStore) StartSession(path string) error {
	if s.openPath != "" {
		return errors.NewSessionOpen(s.openPath)
	}

	if _, ok := s.stats[path]; !ok {
		s.stats[path] = &PathStats{Path: path}
	}

	s.openPath = path
	s.start = s.now()
	s.visits = 0
	s.strokes = 0
	s.last = Position{}
	return nil
}

// EndSession closes the currently open session and returns its delta.
// No-op (ok=false) when no session is open. The session's duration is
// finalized into the path aggregate; the aggregate itself persists until
// Delete.
func (s *InteractionStore) EndSession() (SessionDelta, bool) {
	if s.openPath == "" {
		return SessionDelta{}, false
	}

	end := s.now()
	seconds := end.Sub(s.start).Seconds()

	st := s.stats[s.openPath]
	st.SessionSeconds += seconds
	st.LastActive = end

	delta := SessionDelta{
		Path:       s.openPath,
		Visits:     s.visits,
		Strokes:    s.strokes,
		Seconds:    seconds,
		LastStroke: s.last,
		Started:    s.start,
		Ended:      end,
	}

	s.openPath = ""
	return delta, true
}

// IncrementVisits increments the visit counter of the open session's path.
// No-op when no session is open.
func (s *InteractionStore) IncrementVisits() {
	if s.openPath == "" {
		return
	}
	s.stats[s.openPath].Visits++
	s.visits++
}

// IncrementStrokes increments the stroke counter of the open session's path
// and records the stroke position. No-op when no session is open.
func (s *InteractionStore) IncrementStrokes(line, character int) {
	if s.openPath == "" {
		return
	}
	pos := Position{Line: line, Character: character}
	st := s.stats[s.openPath]
	st.Strokes++
	st.LastStroke = pos
	st.LastActive = s.now()
	s.strokes++
	s.last = pos
}

// Delete removes all accumulated state for path. If path has the open
// session, the session is discarded with it.
func (s *InteractionStore) Delete(path string) {
	delete(s.stats, path)
	if s.openPath == path {
		s.openPath = ""
	}
}

// OpenPath returns the path of the open session, or ok=false when none.
func (s *InteractionStore) OpenPath() (string, bool) {
	return s.openPath, s.openPath != ""
}

// Get returns a copy of the accumulated stats for path.
func (s *InteractionStore) Get(path string) (PathStats, bool) {
	st, ok := s.stats[path]
	if !ok {
		return PathStats{}, false
	}
	return *st, true
}

// Snapshot returns copies of all path aggregates, ordered by path. The open
// session's accrued-but-unfinalized duration is included so rankers see
// current dwell.
func (s *InteractionStore) Snapshot() []PathStats {
	out := make([]PathStats, 0, len(s.stats))
	for _, st := range s.stats {
		cp := *st
		if st.Path == s.openPath {
			cp.SessionSeconds += s.now().Sub(s.start).Seconds()
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
