package position

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for w := 1; w <= 9999; w++ {
		for _, d := range []int{1, 2, 50, 98, 99} {
			got := Decode(Encode(w, d))
			if got.WeekOrder != w || got.DayRank != d {
				t.Fatalf("Decode(Encode(%d,%d)) = %+v", w, d, got)
			}
		}
	}
}

func TestEncodeDecodeExamples(t *testing.T) {
	if got := Encode(3, 5); got != 305 {
		t.Fatalf("Encode(3,5): expected 305, got %d", got)
	}
	if got := Decode(305); got.WeekOrder != 3 || got.DayRank != 5 {
		t.Fatalf("Decode(305): expected {3 5}, got %+v", got)
	}
}

func TestUpdateDayRank(t *testing.T) {
	if got := UpdateDayRank(305, 7); got != 307 {
		t.Fatalf("UpdateDayRank(305,7): expected 307, got %d", got)
	}
	if got := UpdateDayRank(1201, 99); got != 1299 {
		t.Fatalf("UpdateDayRank(1201,99): expected 1299, got %d", got)
	}
}

func TestUpdateWeekOrderResetsDayRank(t *testing.T) {
	if got := UpdateWeekOrder(305, 7); got != 701 {
		t.Fatalf("UpdateWeekOrder(305,7): expected 701, got %d", got)
	}
}

func TestRegenerateForWeekViewPreservesDayRank(t *testing.T) {
	in := []int{905, 112, 407}
	got := RegenerateForWeekView(in)
	want := []int{105, 212, 307}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RegenerateForWeekView: expected %v, got %v", want, got)
		}
	}
}

func TestRegenerateForDayViewUsesFirstWeekOrder(t *testing.T) {
	in := []int{503, 912, 101, 207}
	got := RegenerateForDayView(in)
	for i, p := range got {
		d := Decode(p)
		if d.WeekOrder != 5 {
			t.Fatalf("item %d: expected weekOrder 5 (from first item), got %d", i, d.WeekOrder)
		}
		if d.DayRank != i+1 {
			t.Fatalf("item %d: expected dayRank %d, got %d", i, i+1, d.DayRank)
		}
	}
	if RegenerateForDayView(nil) != nil {
		t.Fatalf("RegenerateForDayView(nil): expected nil")
	}
}

func TestNeedsNormalize(t *testing.T) {
	if NeedsNormalize([]int{105, 999_999}) {
		t.Fatalf("below threshold should not need normalize")
	}
	if !NeedsNormalize([]int{105, 1_000_001}) {
		t.Fatalf("above threshold should need normalize")
	}
}

func TestNormalizePreserveWeekBlocks(t *testing.T) {
	// Two blocks (week 40 and week 7) with gappy ranks.
	in := []int{4005, 4002, 701, 4099}
	got := Normalize(in, true)
	want := []int{202, 201, 101, 203}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize(preserve): expected %v, got %v", want, got)
		}
	}
}

func TestNormalizeFlatten(t *testing.T) {
	in := []int{4005, 701, 4002}
	got := Normalize(in, false)
	want := []int{301, 101, 201}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize(flatten): expected %v, got %v", want, got)
		}
	}
}
