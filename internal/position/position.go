// Package position implements the dual-context ordering key shared by the
// week view and the day view.
//
// A single integer encodes two independent orderings: a coarse "week block"
// order (position / 100) and a fine "day rank" (position % 100). Each view can
// reorder tasks without corrupting the other view's ordering, and one
// ORDER BY position remains meaningful for both.
package position

import "sort"

const (
	// MaxDayRank is the day-rank budget per week block. Encode does NOT
	// validate this bound: a dayRank >= 100 silently bleeds into the week
	// order. Callers must keep day-scoped item counts under 100 (note that
	// the 100-ad-hoc-tasks-per-week ceiling already sits one above this;
	// the daily lane capacities keep any single day far below it).
	MaxDayRank = 99

	// DefaultDayRank is assigned when a week-view reorder resets the fine
	// ordering.
	DefaultDayRank = 1

	// OverflowThreshold is the position value above which callers should
	// renormalize via Normalize.
	OverflowThreshold = 1_000_000
)

type Decoded struct {
	WeekOrder int
	DayRank   int
}

// Encode packs a week order (>= 1) and a day rank (1..99) into one position.
func Encode(weekOrder, dayRank int) int {
	return weekOrder*100 + dayRank
}

// Decode is the exact inverse of Encode for dayRank in [1,99].
func Decode(position int) Decoded {
	return Decoded{WeekOrder: position / 100, DayRank: position % 100}
}

// UpdateDayRank keeps the week order and replaces only the day rank.
// Used by day-view reordering.
func UpdateDayRank(position, newDayRank int) int {
	return Encode(Decode(position).WeekOrder, newDayRank)
}

// UpdateWeekOrder replaces the week order and resets the day rank to the
// default. Used by week-view reordering.
func UpdateWeekOrder(position, newWeekOrder int) int {
	return Encode(newWeekOrder, DefaultDayRank)
}

// RegenerateForWeekView reindexes week orders to 1..N following the given
// array order, preserving each position's existing day rank.
func RegenerateForWeekView(positions []int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = Encode(i+1, Decode(p).DayRank)
	}
	return out
}

// RegenerateForDayView reindexes day ranks to 1..N following the given array
// order. All items are assumed to share one day/slot context: every output
// position carries the week order of the first input position.
func RegenerateForDayView(positions []int) []int {
	if len(positions) == 0 {
		return nil
	}
	week := Decode(positions[0]).WeekOrder
	out := make([]int, len(positions))
	for i := range positions {
		out[i] = Encode(week, i+1)
	}
	return out
}

// NeedsNormalize reports whether any position has grown past the overflow
// threshold.
func NeedsNormalize(positions []int) bool {
	for _, p := range positions {
		if p > OverflowThreshold {
			return true
		}
	}
	return false
}

// Normalize compacts positions back into a dense range.
//
// With preserveWeekBlocks, items are grouped by their current week order;
// groups get sequential week orders 1..K (ascending by old week order) and
// each group's members get sequential day ranks 1..n (stable, ascending by
// old day rank). Without it, everything is flattened into one sequential
// run of week blocks (ordered by old position) with the default day rank.
//
// The returned slice is index-aligned with the input.
func Normalize(positions []int, preserveWeekBlocks bool) []int {
	out := make([]int, len(positions))
	if len(positions) == 0 {
		return out
	}

	idxs := make([]int, len(positions))
	for i := range idxs {
		idxs[i] = i
	}

	if !preserveWeekBlocks {
		sort.SliceStable(idxs, func(a, b int) bool {
			return positions[idxs[a]] < positions[idxs[b]]
		})
		for seq, i := range idxs {
			out[i] = Encode(seq+1, DefaultDayRank)
		}
		return out
	}

	sort.SliceStable(idxs, func(a, b int) bool {
		da, db := Decode(positions[idxs[a]]), Decode(positions[idxs[b]])
		if da.WeekOrder != db.WeekOrder {
			return da.WeekOrder < db.WeekOrder
		}
		return da.DayRank < db.DayRank
	})

	week := 0
	prevOldWeek := -1
	rank := 0
	for _, i := range idxs {
		d := Decode(positions[i])
		if d.WeekOrder != prevOldWeek {
			week++
			rank = 0
			prevOldWeek = d.WeekOrder
		}
		rank++
		out[i] = Encode(week, rank)
	}
	return out
}
