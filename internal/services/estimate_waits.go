package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"walkin-queue-service/internal/domain"
)

// ErrInvalidInput marks caller precondition violations (non-positive sizes or
// capacity, missing or duplicate party ids).
var ErrInvalidInput = errors.New("invalid input")

const msPerMinute = int64(time.Minute / time.Millisecond)

// EstimateInput is one consistent snapshot of the venue.
// Queue must be in arrival order. Now is read once by the caller and used
// for the whole run.
type EstimateInput struct {
	Queue     []domain.Party
	Occupants []domain.Occupant
	Capacity  int
	Courses   []domain.Course
	Now       time.Time
}

// EstimateWaits predicts, in whole minutes from Now, when each queued party
// will be admitted. The result is keyed by party id.
func EstimateWaits(in EstimateInput) (map[string]int, error) {
	plan, err := PlanAdmissions(in)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(plan))
	for _, a := range plan {
		out[a.PartyID] = a.WaitMinutes
	}
	return out, nil
}

// PlanAdmissions simulates admissions for the queue in arrival order.
//
// Each party takes the earliest known instant, at or after every earlier
// party's instant, at which free capacity covers its size. The party's
// projected stay (AssumedStay) is then booked so later parties see both the
// seats it takes and the moment it frees them. When no known instant fits,
// the latest known instant is used and the admission is marked Approximate.
//
// It is a single forward pass: projections are never revised, inputs are not
// modified and identical inputs give identical output.
func PlanAdmissions(in EstimateInput) ([]domain.Admission, error) {
	// An empty queue has nothing to place, whatever the rest of the snapshot holds.
	if len(in.Queue) == 0 {
		return []domain.Admission{}, nil
	}

	if err := validateInput(in); err != nil {
		return nil, fmt.Errorf("plan admissions: %w", err)
	}

	now := in.Now.UnixMilli()
	stay := AssumedStay(in.Courses).Milliseconds()

	seed := make([]int64, 0, 1+len(in.Occupants))
	seed = append(seed, now)
	for _, oc := range in.Occupants {
		seed = append(seed, oc.ExitAt.UnixMilli())
	}
	tl := newTimeline(seed...)
	occ := newOccupancy(in.Occupants)

	// Nobody may be admitted before a party that arrived earlier.
	floor := now

	plan := make([]domain.Admission, 0, len(in.Queue))
	for _, party := range in.Queue {
		assign, ok := firstFit(tl, occ, floor, in.Capacity, party.Size)
		if !ok {
			assign = max(tl.last(now), floor, now)
		}

		exit := assign + stay
		occ.admit(provisional{assign: assign, exit: exit, size: party.Size})
		tl.insert(assign)
		tl.insert(exit)

		floor = max(floor, assign)

		plan = append(plan, domain.Admission{
			PartyID:     party.ID,
			Size:        party.Size,
			AssignedAt:  time.UnixMilli(assign).In(in.Now.Location()),
			DepartAt:    time.UnixMilli(exit).In(in.Now.Location()),
			WaitMinutes: waitMinutes(assign, now),
			Approximate: !ok,
		})
	}

	return plan, nil
}

// firstFit scans the timeline from floor and returns the first instant with
// enough free capacity for size.
func firstFit(tl *timeline, occ *occupancy, floor int64, capacity, size int) (int64, bool) {
	for _, t := range tl.from(floor) {
		if capacity-occ.at(t) >= size {
			return t, true
		}
	}
	return 0, false
}

// AssumedStay is how long a queued party is expected to stay once admitted:
// the mean course length rounded to whole minutes (half up), or
// DefaultCourseMinutes without courses, plus the turnover buffer.
func AssumedStay(courses []domain.Course) time.Duration {
	minutes := domain.DefaultCourseMinutes
	if len(courses) > 0 {
		sum := 0
		for _, c := range courses {
			sum += c.Minutes
		}
		minutes = int(math.Floor(float64(sum)/float64(len(courses)) + 0.5))
	}

	return time.Duration(minutes)*time.Minute + domain.TurnoverBuffer
}

// waitMinutes rounds the distance from now up to whole minutes.
func waitMinutes(assign, now int64) int {
	d := assign - now
	if d <= 0 {
		return 0
	}
	return int((d + msPerMinute - 1) / msPerMinute)
}

func validateInput(in EstimateInput) error {
	if in.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidInput, in.Capacity)
	}

	seen := make(map[string]struct{}, len(in.Queue))
	for i, p := range in.Queue {
		if p.ID == "" {
			return fmt.Errorf("%w: party at position %d has empty id", ErrInvalidInput, i+1)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: duplicate party id %q", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Size <= 0 {
			return fmt.Errorf("%w: party %q size must be positive, got %d", ErrInvalidInput, p.ID, p.Size)
		}
	}

	for _, oc := range in.Occupants {
		if oc.Size <= 0 {
			return fmt.Errorf("%w: occupant %q size must be positive, got %d", ErrInvalidInput, oc.ID, oc.Size)
		}
	}

	return nil
}
