package memory

import "errors"

var (
	// ErrNotFound is returned when no entry file exists for an id.
	ErrNotFound = errors.New("memory: entry not found")

	// ErrWrongType is returned when an operation is applied to an entry of another type.
	ErrWrongType = errors.New("memory: wrong entry type")

	// ErrMalformedEntry is returned when an entry file cannot be decoded.
	ErrMalformedEntry = errors.New("memory: malformed entry")

	// ErrHardLimitExceeded is returned when a note write would push the
	// aggregate note content past HardLimitBytes. Nothing is written.
	ErrHardLimitExceeded = errors.New("memory: note content hard limit exceeded")

	// ErrInvalidID is returned when an id argument does not match the identifier format.
	ErrInvalidID = errors.New("memory: invalid id")

	// ErrInvalidEntry is returned when an entry violates the model invariants.
	ErrInvalidEntry = errors.New("memory: invalid entry")
)

func wrongType(id string, got, want Type) error {
	return &WrongTypeError{ID: id, Got: got, Want: []Type{want}}
}

// WrongTypeError carries the offending entry and the types the operation accepts.
type WrongTypeError struct {
	ID   string
	Got  Type
	Want []Type
}

func (e *WrongTypeError) Error() string {
	want := ""
	for i, t := range e.Want {
		if i > 0 {
			want += " or "
		}
		want += string(t)
	}
	return "memory: entry " + e.ID + " is a " + string(e.Got) + ", not a " + want
}

// Is makes errors.Is(err, ErrWrongType) hold for WrongTypeError values.
func (e *WrongTypeError) Is(target error) bool {
	return target == ErrWrongType
}
