package services

import (
	"slices"

	"walkin-queue-service/internal/domain"
)

type departure struct {
	at   int64
	size int
}

// provisional is a projected admission for a queued party, active on [assign, exit).
type provisional struct {
	assign int64
	exit   int64
	size   int
}

// occupancy answers "how many heads are inside at t" for one estimation run.
// Initial occupants leave at their known departure; provisional admissions
// are appended as the assigner commits them and are never revised.
type occupancy struct {
	initial    int
	departures []departure
	admitted   []provisional
}

func newOccupancy(occupants []domain.Occupant) *occupancy {
	o := &occupancy{departures: make([]departure, 0, len(occupants))}
	for _, oc := range occupants {
		o.initial += oc.Size
		o.departures = append(o.departures, departure{at: oc.ExitAt.UnixMilli(), size: oc.Size})
	}
	slices.SortStableFunc(o.departures, func(a, b departure) int {
		switch {
		case a.at < b.at:
			return -1
		case a.at > b.at:
			return 1
		}
		return 0
	})
	return o
}

// at returns the occupied headcount at instant t.
func (o *occupancy) at(t int64) int {
	freed := 0
	for _, d := range o.departures {
		if d.at > t {
			break
		}
		freed += d.size
	}

	occupied := max(0, o.initial-freed)

	for _, p := range o.admitted {
		if p.assign <= t && p.exit > t {
			occupied += p.size
		}
	}

	return occupied
}

func (o *occupancy) admit(p provisional) {
	o.admitted = append(o.admitted, p)
}
