package model

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// ValidateStartDate requires a well-formed Monday date.
func ValidateStartDate(s string) error {
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	if t.Weekday() != time.Monday {
		return fmt.Errorf("start date %s is a %s; plans must start on a Monday", s, t.Weekday())
	}
	return nil
}

// EndDate derives the last day of the plan (start + 83 days).
func (p Plan) EndDate() (string, error) {
	t, err := ParseDate(p.StartDate)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, PlanDays-1).Format(dateLayout), nil
}

// ContainsDate reports whether date falls inside the plan's 84-day window.
func (p Plan) ContainsDate(date string) (bool, error) {
	start, err := ParseDate(p.StartDate)
	if err != nil {
		return false, err
	}
	d, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	end := start.AddDate(0, 0, PlanDays-1)
	return !d.Before(start) && !d.After(end), nil
}

// ValidateProgress requires 0..100 in steps of 5.
func ValidateProgress(p int) error {
	if p < 0 || p > 100 || p%5 != 0 {
		return fmt.Errorf("progress must be 0..100 in steps of 5, got %d", p)
	}
	return nil
}

func ValidateWeekNumber(w int) error {
	if w < 1 || w > PlanWeeks {
		return fmt.Errorf("week number must be 1..%d, got %d", PlanWeeks, w)
	}
	return nil
}

func ValidateDueDay(d int) error {
	if d < 1 || d > 7 {
		return fmt.Errorf("due day must be 1..7, got %d", d)
	}
	return nil
}

func ParsePlanStatus(s string) (PlanStatus, error) {
	switch PlanStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PlanReady:
		return PlanReady, nil
	case PlanActive:
		return PlanActive, nil
	case PlanCompleted:
		return PlanCompleted, nil
	case PlanArchived:
		return PlanArchived, nil
	default:
		return "", fmt.Errorf("invalid plan status: %q (expected ready|active|completed|archived)", s)
	}
}

func ParseCategory(s string) (GoalCategory, error) {
	switch GoalCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryHealth:
		return CategoryHealth, nil
	case CategoryCareer:
		return CategoryCareer, nil
	case CategoryFinance:
		return CategoryFinance, nil
	case CategoryRelationships:
		return CategoryRelationships, nil
	case CategoryLearning:
		return CategoryLearning, nil
	case CategoryPersonal:
		return CategoryPersonal, nil
	default:
		return "", fmt.Errorf("invalid goal category: %q", s)
	}
}

func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityA:
		return PriorityA, nil
	case PriorityB:
		return PriorityB, nil
	case PriorityC:
		return PriorityC, nil
	default:
		return "", fmt.Errorf("invalid priority: %q (expected A|B|C)", s)
	}
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToLower(strings.TrimSpace(s))) {
	case TaskTodo:
		return TaskTodo, nil
	case TaskInProgress:
		return TaskInProgress, nil
	case TaskCompleted:
		return TaskCompleted, nil
	case TaskCancelled:
		return TaskCancelled, nil
	case TaskPostponed:
		return TaskPostponed, nil
	default:
		return "", fmt.Errorf("invalid task status: %q", s)
	}
}
