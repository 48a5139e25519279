package sched

import (
	"testing"
	"time"
)

func TestScheduleCoalescesToLastCallback(t *testing.T) {
	clock := NewFakeClock()
	s := NewWithClock(clock)
	k := Key{EntityID: "task-1", Field: "priority"}

	var got []string
	s.Schedule(k, time.Second, func() { got = append(got, "first") })
	clock.Advance(200 * time.Millisecond)
	s.Schedule(k, time.Second, func() { got = append(got, "second") })
	clock.Advance(200 * time.Millisecond)
	s.Schedule(k, time.Second, func() { got = append(got, "third") })

	// Not yet: the window restarted with every edit.
	clock.Advance(900 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired too early: %v", got)
	}

	clock.Advance(200 * time.Millisecond)
	if len(got) != 1 || got[0] != "third" {
		t.Fatalf("expected exactly the last callback, got %v", got)
	}
}

func TestIndependentKeys(t *testing.T) {
	clock := NewFakeClock()
	s := NewWithClock(clock)

	fired := map[string]int{}
	s.Schedule(Key{"task-1", "title"}, 500*time.Millisecond, func() { fired["title"]++ })
	s.Schedule(Key{"task-1", "priority"}, time.Second, func() { fired["priority"]++ })

	clock.Advance(600 * time.Millisecond)
	if fired["title"] != 1 || fired["priority"] != 0 {
		t.Fatalf("expected only title fired: %v", fired)
	}
	clock.Advance(500 * time.Millisecond)
	if fired["priority"] != 1 {
		t.Fatalf("expected priority fired: %v", fired)
	}
}

func TestCancel(t *testing.T) {
	clock := NewFakeClock()
	s := NewWithClock(clock)
	k := Key{"task-1", "title"}

	fired := false
	s.Schedule(k, time.Second, func() { fired = true })
	if !s.Pending(k) {
		t.Fatalf("expected pending")
	}
	if !s.Cancel(k) {
		t.Fatalf("expected cancel to find the timer")
	}
	clock.Advance(2 * time.Second)
	if fired {
		t.Fatalf("cancelled timer fired")
	}
	if s.Cancel(k) {
		t.Fatalf("second cancel should be a no-op")
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	clock := NewFakeClock()
	s := NewWithClock(clock)
	k := Key{"task-1", "description"}

	fired := false
	s.Schedule(k, time.Second, func() { fired = true })
	if !s.Flush(k) {
		t.Fatalf("expected flush to run")
	}
	if !fired {
		t.Fatalf("flush did not run the callback")
	}
	clock.Advance(2 * time.Second)
	if s.Pending(k) {
		t.Fatalf("flushed key still pending")
	}
}

func TestStopDropsEverything(t *testing.T) {
	clock := NewFakeClock()
	s := NewWithClock(clock)

	fired := 0
	s.Schedule(Key{"a", "f"}, time.Second, func() { fired++ })
	s.Schedule(Key{"b", "f"}, time.Second, func() { fired++ })
	s.Stop()

	clock.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatalf("timers fired after Stop: %d", fired)
	}

	// Scheduling after Stop is ignored.
	s.Schedule(Key{"c", "f"}, time.Second, func() { fired++ })
	clock.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatalf("schedule after Stop fired: %d", fired)
	}
}
