package services

import (
	"testing"
	"time"

	"walkin-queue-service/internal/domain"
)

func TestOccupancyInitialDepartures(t *testing.T) {
	occ := newOccupancy([]domain.Occupant{
		{ID: "a", Size: 2, ExitAt: after(20 * time.Minute)},
		{ID: "b", Size: 3, ExitAt: after(10 * time.Minute)},
	})

	ms := func(d time.Duration) int64 { return after(d).UnixMilli() }

	tests := []struct {
		at   int64
		want int
	}{
		{ms(0), 5},
		{ms(10*time.Minute) - 1, 5},
		{ms(10 * time.Minute), 2},
		{ms(20 * time.Minute), 0},
		{ms(time.Hour), 0},
	}

	for _, tt := range tests {
		if got := occ.at(tt.at); got != tt.want {
			t.Errorf("at(%d) = %d, want %d", tt.at, got, tt.want)
		}
	}
}

func TestOccupancyProvisionalIsHalfOpen(t *testing.T) {
	occ := newOccupancy(nil)
	occ.admit(provisional{assign: 100, exit: 200, size: 4})
	occ.admit(provisional{assign: 150, exit: 300, size: 1})

	tests := []struct {
		at   int64
		want int
	}{
		{99, 0},
		{100, 4},
		{150, 5},
		{199, 5},
		{200, 1},
		{300, 0},
	}

	for _, tt := range tests {
		if got := occ.at(tt.at); got != tt.want {
			t.Errorf("at(%d) = %d, want %d", tt.at, got, tt.want)
		}
	}
}
