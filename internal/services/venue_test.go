package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"walkin-queue-service/internal/adapters/repositories"
	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/ports"
)

func TestAdmitPartyFixesExitFromCourse(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryVenueStore(domain.DefaultCourses(), 10)

	p, err := JoinQueue(ctx, store, 3, "  by the window ", testNow)
	if err != nil {
		t.Fatalf("join queue: %v", err)
	}
	if !strings.HasPrefix(p.ID, "q_") || p.Note != "by the window" {
		t.Fatalf("party = %+v", p)
	}

	enter := testNow.Add(4 * time.Minute)
	o, err := AdmitParty(ctx, store, p.ID, "c60", enter)
	if err != nil {
		t.Fatalf("admit party: %v", err)
	}

	if !strings.HasPrefix(o.ID, "in_") || o.Size != 3 || o.CourseID != "c60" {
		t.Fatalf("occupant = %+v", o)
	}
	if !o.ExitAt.Equal(enter.Add(67 * time.Minute)) {
		t.Fatalf("exit = %v, want %v", o.ExitAt, enter.Add(67*time.Minute))
	}

	h, err := CheckoutOccupant(ctx, store, o.ID, enter.Add(time.Hour))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !strings.HasPrefix(h.ID, "h_") || h.Size != 3 {
		t.Fatalf("history entry = %+v", h)
	}
}

func TestAdmitPartyUnknownCourse(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryVenueStore(domain.DefaultCourses(), 10)

	p, err := JoinQueue(ctx, store, 2, "", testNow)
	if err != nil {
		t.Fatalf("join queue: %v", err)
	}

	_, err = AdmitParty(ctx, store, p.ID, "c90", testNow)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	snap, _ := store.Snapshot(ctx)
	if len(snap.Queue) != 1 {
		t.Fatalf("party should stay queued, queue = %+v", snap.Queue)
	}
}

func TestPreviewWaitDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryVenueStore(nil, 4)

	if _, err := JoinQueue(ctx, store, 4, "", testNow); err != nil {
		t.Fatalf("join queue: %v", err)
	}

	a, err := PreviewWait(ctx, store, 2, testNow)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if a.WaitMinutes != 37 || a.Approximate {
		t.Fatalf("preview = %+v, want wait 37", a)
	}

	snap, _ := store.Snapshot(ctx)
	if len(snap.Queue) != 1 {
		t.Fatalf("preview persisted a party: %+v", snap.Queue)
	}

	if _, err := PreviewWait(ctx, store, 0, testNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestVenueOperationsRejectInvalidInput(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryVenueStore(nil, 4)

	if _, err := JoinQueue(ctx, store, 0, "", testNow); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("join queue: err = %v, want ErrInvalidInput", err)
	}
	if err := UpdateCapacity(ctx, store, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("update capacity: err = %v, want ErrInvalidInput", err)
	}
	if err := LeaveQueue(ctx, store, "q_missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("leave queue: err = %v, want ErrNotFound", err)
	}
}

func TestUpdatePartyChangesLaterEstimates(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryVenueStore(nil, 4)

	first, err := JoinQueue(ctx, store, 2, "", testNow)
	if err != nil {
		t.Fatalf("join queue: %v", err)
	}
	second, err := JoinQueue(ctx, store, 2, "", testNow)
	if err != nil {
		t.Fatalf("join queue: %v", err)
	}

	view, err := QueueEstimates(ctx, store, testNow)
	if err != nil {
		t.Fatalf("queue estimates: %v", err)
	}
	if got := view.Admissions[second.ID].WaitMinutes; got != 0 {
		t.Fatalf("wait before update = %d, want 0", got)
	}

	size, note := 3, " now three "
	p, err := UpdateParty(ctx, store, first.ID, &size, &note)
	if err != nil {
		t.Fatalf("update party: %v", err)
	}
	if p.Size != 3 || p.Note != "now three" {
		t.Fatalf("updated party = %+v", p)
	}

	view, err = QueueEstimates(ctx, store, testNow)
	if err != nil {
		t.Fatalf("queue estimates: %v", err)
	}
	if got := view.Admissions[second.ID].WaitMinutes; got != 37 {
		t.Fatalf("wait after update = %d, want 37", got)
	}

	// Note-only update leaves the size alone.
	note = "window"
	p, err = UpdateParty(ctx, store, first.ID, nil, &note)
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if p.Size != 3 || p.Note != "window" {
		t.Fatalf("updated party = %+v", p)
	}
}

func TestUpdatePartyRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryVenueStore(nil, 4)

	p, err := JoinQueue(ctx, store, 2, "", testNow)
	if err != nil {
		t.Fatalf("join queue: %v", err)
	}

	zero := 0
	if _, err := UpdateParty(ctx, store, p.ID, &zero, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero size: err = %v, want ErrInvalidInput", err)
	}
	if _, err := UpdateParty(ctx, store, p.ID, nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty update: err = %v, want ErrInvalidInput", err)
	}

	size := 3
	if _, err := UpdateParty(ctx, store, "q_missing", &size, nil); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("missing party: err = %v, want ErrNotFound", err)
	}
}
