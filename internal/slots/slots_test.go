package slots

import (
	"errors"
	"testing"

	"stride-cli/internal/model"
)

func TestPriorityToSlotDowngradeChain(t *testing.T) {
	cases := []struct {
		name   string
		pri    model.Priority
		counts Counts
		want   Slot
	}{
		{"A empty day", model.PriorityA, Counts{}, MostImportant},
		{"A most_important occupied", model.PriorityA, Counts{MostImportant: 1}, Secondary},
		{"A first two lanes full", model.PriorityA, Counts{MostImportant: 1, Secondary: 2}, Additional},
		{"B empty day", model.PriorityB, Counts{}, Secondary},
		{"B secondary full", model.PriorityB, Counts{Secondary: 2}, Additional},
		{"B ignores most_important room", model.PriorityB, Counts{MostImportant: 0, Secondary: 2}, Additional},
		{"C always additional", model.PriorityC, Counts{}, Additional},
		{"C even when others empty", model.PriorityC, Counts{Additional: 6}, Additional},
	}
	for _, tc := range cases {
		if got := PriorityToSlot(tc.pri, tc.counts); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSlotToPriority(t *testing.T) {
	cases := []struct {
		slot Slot
		want model.Priority
	}{
		{MostImportant, model.PriorityA},
		{Secondary, model.PriorityB},
		{Additional, model.PriorityC},
	}
	for _, tc := range cases {
		if got := SlotToPriority(tc.slot); got != tc.want {
			t.Fatalf("SlotToPriority(%s): expected %s, got %s", tc.slot, tc.want, got)
		}
	}
}

func TestCapacities(t *testing.T) {
	if Capacity(MostImportant) != 1 || Capacity(Secondary) != 2 || Capacity(Additional) != 7 {
		t.Fatalf("unexpected capacities: %d/%d/%d",
			Capacity(MostImportant), Capacity(Secondary), Capacity(Additional))
	}
}

func TestPlanChange(t *testing.T) {
	pri, err := PlanChange(Secondary, Counts{Secondary: 1})
	if err != nil {
		t.Fatalf("PlanChange into non-full lane: %v", err)
	}
	if pri != model.PriorityB {
		t.Fatalf("PlanChange(secondary): expected priority B, got %s", pri)
	}

	_, err = PlanChange(MostImportant, Counts{MostImportant: 1})
	var capErr CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("PlanChange into full lane: expected CapacityError, got %v", err)
	}
	if capErr.Slot != MostImportant || capErr.Capacity != 1 {
		t.Fatalf("unexpected CapacityError: %+v", capErr)
	}
}

func TestParseSlot(t *testing.T) {
	if s, err := ParseSlot(" MOST_IMPORTANT "); err != nil || s != MostImportant {
		t.Fatalf("ParseSlot: got %q, %v", s, err)
	}
	if _, err := ParseSlot("primary"); err == nil {
		t.Fatalf("ParseSlot(primary): expected error")
	}
}
