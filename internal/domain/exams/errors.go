package exams

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CycleError reports a composition that would make a panel reference itself,
// directly or through one of its candidate components.
type CycleError struct {
	ParentID    uuid.UUID
	ComponentID uuid.UUID
	Direct      bool
}

func (e *CycleError) Error() string {
	if e.Direct {
		return fmt.Sprintf("exam %s cannot be a component of itself", e.ParentID)
	}
	return fmt.Sprintf("component %s already contains exam %s", e.ComponentID, e.ParentID)
}

// ErrExamLocked is returned when has_components cannot be changed because the
// exam already has saved components or is referenced as one.
var ErrExamLocked = errors.New("exams: exam composition is locked")
