package model

import "testing"

func TestValidateStartDate(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2026-01-05", false}, // Monday
		{"2026-01-06", true},  // Tuesday
		{"2026-01-04", true},  // Sunday
		{"not-a-date", true},
		{"", true},
	}
	for _, tc := range cases {
		err := ValidateStartDate(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("ValidateStartDate(%q): expected error", tc.in)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("ValidateStartDate(%q): unexpected error: %v", tc.in, err)
		}
	}
}

func TestPlanEndDate(t *testing.T) {
	p := Plan{StartDate: "2026-01-05"}
	end, err := p.EndDate()
	if err != nil {
		t.Fatalf("EndDate: %v", err)
	}
	// 84 days inclusive of the start Monday ends on a Sunday.
	if end != "2026-03-29" {
		t.Fatalf("EndDate: expected 2026-03-29, got %s", end)
	}
}

func TestPlanContainsDate(t *testing.T) {
	p := Plan{StartDate: "2026-01-05"}
	cases := []struct {
		date string
		want bool
	}{
		{"2026-01-05", true},
		{"2026-03-29", true},
		{"2026-01-04", false},
		{"2026-03-30", false},
	}
	for _, tc := range cases {
		got, err := p.ContainsDate(tc.date)
		if err != nil {
			t.Fatalf("ContainsDate(%q): %v", tc.date, err)
		}
		if got != tc.want {
			t.Fatalf("ContainsDate(%q): expected %v, got %v", tc.date, tc.want, got)
		}
	}
}

func TestValidateProgress(t *testing.T) {
	for _, p := range []int{0, 5, 50, 100} {
		if err := ValidateProgress(p); err != nil {
			t.Fatalf("ValidateProgress(%d): unexpected error: %v", p, err)
		}
	}
	for _, p := range []int{-5, 3, 101, 99} {
		if err := ValidateProgress(p); err == nil {
			t.Fatalf("ValidateProgress(%d): expected error", p)
		}
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"A", PriorityA, false},
		{"a", PriorityA, false},
		{" b ", PriorityB, false},
		{"C", PriorityC, false},
		{"D", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("ParsePriority(%q): expected error", tc.in)
		}
		if !tc.wantErr && (err != nil || got != tc.want) {
			t.Fatalf("ParsePriority(%q): got %q, %v", tc.in, got, err)
		}
	}
}

func TestTaskClosed(t *testing.T) {
	if !(Task{Status: TaskCompleted}).Closed() {
		t.Fatalf("completed task should be closed")
	}
	if !(Task{Status: TaskCancelled}).Closed() {
		t.Fatalf("cancelled task should be closed")
	}
	for _, st := range []TaskStatus{TaskTodo, TaskInProgress, TaskPostponed} {
		if (Task{Status: st}).Closed() {
			t.Fatalf("%s task should not be closed", st)
		}
	}
}
