// Package slots maps task priorities onto the three capacity-limited day
// lanes and back. The allocation is a greedy downgrade chain: a task never
// overflows a lane and always terminates in the additional lane.
package slots

import (
	"fmt"
	"strings"

	"stride-cli/internal/model"
)

type Slot string

const (
	MostImportant Slot = "most_important"
	Secondary     Slot = "secondary"
	Additional    Slot = "additional"
)

// Capacity returns the hard ceiling for a lane.
func Capacity(s Slot) int {
	switch s {
	case MostImportant:
		return 1
	case Secondary:
		return 2
	default:
		return 7
	}
}

// Counts holds the current occupancy of each lane for one day.
type Counts struct {
	MostImportant int
	Secondary     int
	Additional    int
}

func (c Counts) of(s Slot) int {
	switch s {
	case MostImportant:
		return c.MostImportant
	case Secondary:
		return c.Secondary
	default:
		return c.Additional
	}
}

// HasRoom reports whether the lane can take one more task.
func (c Counts) HasRoom(s Slot) bool {
	return c.of(s) < Capacity(s)
}

// PriorityToSlot places a task by priority, downgrading when lanes are full:
// A prefers most_important, then secondary, then additional; B prefers
// secondary, then additional; C always lands in additional.
func PriorityToSlot(p model.Priority, counts Counts) Slot {
	switch p {
	case model.PriorityA:
		if counts.HasRoom(MostImportant) {
			return MostImportant
		}
		if counts.HasRoom(Secondary) {
			return Secondary
		}
		return Additional
	case model.PriorityB:
		if counts.HasRoom(Secondary) {
			return Secondary
		}
		return Additional
	default:
		return Additional
	}
}

// SlotToPriority is the inverse mapping, used when a lane is chosen directly
// and priority must follow the lane.
func SlotToPriority(s Slot) model.Priority {
	switch s {
	case MostImportant:
		return model.PriorityA
	case Secondary:
		return model.PriorityB
	default:
		return model.PriorityC
	}
}

// CapacityError is raised client-side before any network call when a move
// would overflow a lane.
type CapacityError struct {
	Slot     Slot
	Capacity int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("lane %s is full (capacity %d)", e.Slot, e.Capacity)
}

// PlanChange validates a direct move into target and returns the priority
// that must be applied together with the lane membership. The caller applies
// both atomically.
func PlanChange(target Slot, counts Counts) (model.Priority, error) {
	if !counts.HasRoom(target) {
		return "", CapacityError{Slot: target, Capacity: Capacity(target)}
	}
	return SlotToPriority(target), nil
}

func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case MostImportant:
		return MostImportant, nil
	case Secondary:
		return Secondary, nil
	case Additional:
		return Additional, nil
	default:
		return "", fmt.Errorf("invalid lane: %q (expected most_important|secondary|additional)", s)
	}
}

// All lists the lanes in display order.
func All() []Slot {
	return []Slot{MostImportant, Secondary, Additional}
}
