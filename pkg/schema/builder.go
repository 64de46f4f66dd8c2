package schema

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// State is the builder's input state.
type State int

const (
	// StateIdle means no field name is pending.
	StateIdle State = iota
	// StateStaged means a non-empty field name is pending.
	StateStaged
)

func (s State) String() string {
	if s == StateStaged {
		return "staged"
	}
	return "idle"
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIDGenerator overrides how field identities are minted.
func WithIDGenerator(fn func() string) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// Builder assembles an ordered field list. It is purely local and not safe
// for concurrent use; callers guard it (see workflow.Workflow).
type Builder struct {
	pendingName string
	pendingType FieldType
	fields      []Field
	newID       func() string
}

// NewBuilder returns an idle builder with the default type selected.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{
		pendingType: DefaultType(),
		newID:       uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Stage sets the pending field name.
func (b *Builder) Stage(name string) {
	b.pendingName = name
}

// Select sets the pending type. Unknown tags leave the selection unchanged.
func (b *Builder) Select(t FieldType) error {
	if !t.Known() {
		return ErrUnknownType
	}
	b.pendingType = t
	return nil
}

// Pending returns the staged name and selected type.
func (b *Builder) Pending() (string, FieldType) {
	return b.pendingName, b.pendingType
}

// State reports whether a name is staged.
func (b *Builder) State() State {
	if strings.TrimSpace(b.pendingName) == "" {
		return StateIdle
	}
	return StateStaged
}

// Add appends the staged field and clears the pending name. A blank or
// whitespace-only name makes it a no-op returning false; any other name is
// stored exactly as staged.
func (b *Builder) Add() (Field, bool) {
	if strings.TrimSpace(b.pendingName) == "" {
		return Field{}, false
	}
	field := Field{
		ID:   b.newID(),
		Name: b.pendingName,
		Type: b.pendingType,
	}
	b.fields = append(b.fields, field)
	b.pendingName = ""
	return field, true
}

// Remove deletes the entry with the given identity, preserving the order of
// the rest.
func (b *Builder) Remove(id string) bool {
	for i, f := range b.fields {
		if f.ID != id {
			continue
		}
		b.fields = slices.Delete(b.fields, i, i+1)
		return true
	}
	return false
}

// Fields returns a copy of the ordered sequence.
func (b *Builder) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// Len returns the number of fields.
func (b *Builder) Len() int {
	return len(b.fields)
}

// Clear empties the sequence. The pending input is kept.
func (b *Builder) Clear() {
	b.fields = nil
}
