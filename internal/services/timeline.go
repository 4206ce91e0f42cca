package services

import "slices"

// timeline is the ascending, duplicate-free set of instants (unix millis)
// at which free capacity may change.
type timeline struct {
	points []int64
}

func newTimeline(seed ...int64) *timeline {
	tl := &timeline{points: make([]int64, 0, len(seed)*2+2)}
	for _, p := range seed {
		tl.insert(p)
	}
	return tl
}

// insert adds p unless it is already present.
func (tl *timeline) insert(p int64) {
	i, found := slices.BinarySearch(tl.points, p)
	if found {
		return
	}
	tl.points = slices.Insert(tl.points, i, p)
}

// from returns the instants at or after floor, in order.
// The returned slice aliases the timeline and must not be kept across inserts.
func (tl *timeline) from(floor int64) []int64 {
	i, _ := slices.BinarySearch(tl.points, floor)
	return tl.points[i:]
}

// last returns the latest known instant, or fallback for an empty timeline.
func (tl *timeline) last(fallback int64) int64 {
	if len(tl.points) == 0 {
		return fallback
	}
	return tl.points[len(tl.points)-1]
}
