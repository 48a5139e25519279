package state

import (
	"errors"
	"fmt"
)

// CapacityError is raised before any network call when a hard ceiling would
// be exceeded.
type CapacityError struct {
	What  string
	Limit int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("%s limit reached (max %d)", e.What, e.Limit)
}

func IsCapacity(err error) bool {
	var ce CapacityError
	return errors.As(err, &ce)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
