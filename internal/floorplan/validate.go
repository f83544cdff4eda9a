package floorplan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrNotFound is returned when an edit targets an unknown floor or wall.
type ErrNotFound struct {
	error
}

func NewErrNotFound(kind, id string) *ErrNotFound {
	return &ErrNotFound{fmt.Errorf("%s %s not found", kind, id)}
}

// ErrInvalidLayout carries every problem found in a layout.
type ErrInvalidLayout struct {
	Problems []string
}

func (e *ErrInvalidLayout) Error() string {
	return "invalid layout: " + strings.Join(e.Problems, "; ")
}

// Validate checks field constraints plus the room invariants: one wall per
// orientation and every wall pointing back at its room.
func Validate(l Layout) error {
	var problems []string

	if err := validate.Struct(l); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate layout: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
	}

	for _, f := range l.Floors {
		for _, r := range f.Rooms {
			seen := make(map[Orientation]bool, len(Orientations))
			for _, w := range r.Walls {
				if w.RoomID != r.ID {
					problems = append(problems, fmt.Sprintf("wall %s belongs to room %q, not %q", w.ID, w.RoomID, r.ID))
				}
				if seen[w.Orientation] {
					problems = append(problems, fmt.Sprintf("room %s has more than one %s wall", r.ID, w.Orientation))
				}
				seen[w.Orientation] = true
			}
			for _, o := range Orientations {
				if !seen[o] {
					problems = append(problems, fmt.Sprintf("room %s has no %s wall", r.ID, o))
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ErrInvalidLayout{Problems: problems}
	}
	return nil
}
