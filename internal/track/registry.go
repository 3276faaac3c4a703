package track

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tacit-sh/tacit/internal/errors"
)

// ItemKind distinguishes context item variants.
type ItemKind string

const (
	ItemFile      ItemKind = "file"
	ItemSelection ItemKind = "selection"
)

// SelectionRange is a zero-based half-open text range within a document.
type SelectionRange struct {
	StartLine      int `json:"start_line"`
	StartCharacter int `json:"start_character"`
	EndLine        int `json:"end_line"`
	EndCharacter   int `json:"end_character"`
}

// ContextItem is a user-pinned file or text selection supplied as extra
// input to a future AI request.
type ContextItem struct {
	// ID is the workspace-relative path for file items and a fresh ULID for
	// selection items
	ID string `json:"id"`

	Kind ItemKind `json:"kind"`

	// Name is a human-readable label: the base name for files, or
	// "base.go:12-40" (1-based lines) for selections
	Name string `json:"name"`

	Path string `json:"path"`

	// Content is the captured text; selection items only
	Content string `json:"content,omitempty"`

	// Range is the captured selection range; selection items only
	Range *SelectionRange `json:"range,omitempty"`
}

// Registry is an ordered collection of context items, deduplicated by id.
type Registry struct {
	items []ContextItem
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// AddFile pins a whole file. The item's id is its workspace-relative path,
// so adding the same file twice collapses to one entry (replace in place,
// preserving its position).
func (r *Registry) AddFile(path string) (ContextItem, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ContextItem{}, errors.NewInvalidRequest("path must not be empty")
	}

	item := ContextItem{
		ID:   path,
		Kind: ItemFile,
		Name: filepath.Base(path),
		Path: path,
	}

	if i, ok := r.index[item.ID]; ok {
		r.items[i] = item
		return item, nil
	}

	r.index[item.ID] = len(r.items)
	r.items = append(r.items, item)
	return item, nil
}

// AddSelection pins a captured text selection. Each call mints a fresh id,
// so repeated selections from the same file each appear as distinct entries
// even when the ranges overlap. An empty content is reported as a
// no-selection condition, never a crash.
func (r *Registry) AddSelection(path, content string, rng SelectionRange) (ContextItem, error) {
	if strings.TrimSpace(path) == "" {
		return ContextItem{}, errors.NewInvalidRequest("path must not be empty")
	}
	if content == "" {
		return ContextItem{}, errors.NewNoSelection()
	}

	id, err := NewID()
	if err != nil {
		return ContextItem{}, errors.NewInternal(err)
	}

	item := ContextItem{
		ID:      id,
		Kind:    ItemSelection,
		Name:    fmt.Sprintf("%s:%d-%d", filepath.Base(path), rng.StartLine+1, rng.EndLine+1),
		Path:    path,
		Content: content,
		Range:   &rng,
	}

	r.index[item.ID] = len(r.items)
	r.items = append(r.items, item)
	return item, nil
}

// Remove deletes the item with the given id.
func (r *Registry) Remove(id string) error {
	i, ok := r.index[id]
	if !ok {
		return errors.NewNotFound(id)
	}

	r.items = append(r.items[:i], r.items[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.items); j++ {
		r.index[r.items[j].ID] = j
	}
	return nil
}

// List returns all items in insertion order.
func (r *Registry) List() []ContextItem {
	out := make([]ContextItem, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of pinned items.
func (r *Registry) Len() int {
	return len(r.items)
}
