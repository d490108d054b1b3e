package workspace

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is matched by every *OutOfRangeError.
var ErrOutOfRange = errors.New("workspace out of range")

// OutOfRangeError reports a workspace id outside [0, Count).
type OutOfRangeError struct {
	ID    int
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("workspace %d out of range (have %d, valid ids 0-%d)", e.ID, e.Count, e.Count-1)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
