package memory

import (
	"time"
)

// Type classifies what an entry holds. It is fixed at creation.
type Type string

const (
	TypeNote     Type = "note"
	TypePuzzle   Type = "puzzle"
	TypeFeedback Type = "feedback"
)

// Valid reports whether t is one of the known entry types.
func (t Type) Valid() bool {
	switch t {
	case TypeNote, TypePuzzle, TypeFeedback:
		return true
	}
	return false
}

// Status is the lifecycle state of a puzzle.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Valid reports whether s is a known puzzle status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Entry is the fully parsed in-memory representation of one entry file.
// Title, Status, ClosedAt and Blocks are only meaningful for puzzles.
type Entry struct {
	ID       string `validate:"required,memid"`
	Type     Type   `validate:"required,oneof=note puzzle feedback"`
	Content  string
	Created  time.Time `validate:"required"`
	ClosedAt *time.Time
	Title    string   `validate:"required_if=Type puzzle"`
	Status   Status   `validate:"required_if=Type puzzle,omitempty,oneof=open closed"`
	Blocks   BlockSet `validate:"omitempty,dive,memid"`
}

// IsPuzzle reports whether the entry is a puzzle.
func (e *Entry) IsPuzzle() bool {
	return e.Type == TypePuzzle
}

// IsOpen reports whether the entry is a puzzle that has not been closed.
func (e *Entry) IsOpen() bool {
	return e.Type == TypePuzzle && e.Status == StatusOpen
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.ClosedAt != nil {
		t := *e.ClosedAt
		c.ClosedAt = &t
	}
	c.Blocks = e.Blocks.Clone()
	return &c
}

// ContentBytes is the UTF-8 byte length counted against the note budget.
func (e *Entry) ContentBytes() int {
	return len(e.Content)
}
