package memory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// entryValidate is the validator instance for entries.
// Initialized in init() with the memid rule.
var entryValidate *validator.Validate

func init() {
	entryValidate = validator.New()
	if err := entryValidate.RegisterValidation("memid", validateMemID); err != nil {
		panic(fmt.Sprintf("memory: register memid validator: %v", err))
	}
}

func validateMemID(fl validator.FieldLevel) bool {
	return ValidID(fl.Field().String())
}

// Validate checks the entry against the model invariants: field formats via
// struct tags, then the rules that span fields.
func (e *Entry) Validate() error {
	if err := entryValidate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidEntry, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if e.Type != TypePuzzle {
		if e.Title != "" || e.Status != "" || e.ClosedAt != nil || len(e.Blocks) > 0 {
			return fmt.Errorf("%w: %s %s carries puzzle-only fields", ErrInvalidEntry, e.Type, e.ID)
		}
		return nil
	}

	switch {
	case e.Status == StatusClosed && e.ClosedAt == nil:
		return fmt.Errorf("%w: closed puzzle %s has no closedAt", ErrInvalidEntry, e.ID)
	case e.Status == StatusOpen && e.ClosedAt != nil:
		return fmt.Errorf("%w: open puzzle %s has closedAt set", ErrInvalidEntry, e.ID)
	case e.Blocks.Contains(e.ID):
		return fmt.Errorf("%w: puzzle %s blocks itself", ErrInvalidEntry, e.ID)
	}
	return nil
}
