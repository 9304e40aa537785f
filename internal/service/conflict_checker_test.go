package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/repository"
)

func TestConflictChecker_OverlapReportsAllDays(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	checker := NewConflictChecker(store, zap.NewNop())
	ctx := context.Background()

	mon := testDay(t, "2026-03-02")
	wed := testDay(t, "2026-03-04")
	fri := testDay(t, "2026-03-06")
	sun := testDay(t, "2026-03-08")

	// Alice holds Mon-Fri
	require.NoError(t, store.PutMany(ctx, expandReservation(t, "desk-1", mon, fri, domain.StatusAssigned, 100, "Alice")))

	// Wed-Sun overlaps on Wed/Thu/Fri only
	conflicts, err := checker.Check(ctx, "desk-1", wed, sun, nil)
	require.NoError(t, err)
	require.Len(t, conflicts, 3)
	require.Equal(t, wed, conflicts[0].Day)
	require.Equal(t, testDay(t, "2026-03-05"), conflicts[1].Day)
	require.Equal(t, fri, conflicts[2].Day)
	for _, c := range conflicts {
		require.Equal(t, "Alice", c.OccupantName)
		require.Equal(t, domain.StatusAssigned, c.Status)
	}
}

func TestConflictChecker_ReadOnlyAndRepeatable(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	checker := NewConflictChecker(store, zap.NewNop())
	ctx := context.Background()

	mon := testDay(t, "2026-03-02")
	fri := testDay(t, "2026-03-06")

	require.NoError(t, store.PutMany(ctx, expandReservation(t, "desk-1", mon, fri, domain.StatusBooked, 80, "Bob")))
	before := store.Len()

	first, err := checker.Check(ctx, "desk-1", mon, fri, nil)
	require.NoError(t, err)
	second, err := checker.Check(ctx, "desk-1", mon, fri, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, before, store.Len())
}

func TestConflictChecker_OtherDeskDoesNotConflict(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	checker := NewConflictChecker(store, zap.NewNop())
	ctx := context.Background()

	mon := testDay(t, "2026-03-02")
	fri := testDay(t, "2026-03-06")

	require.NoError(t, store.PutMany(ctx, expandReservation(t, "desk-2", mon, fri, domain.StatusAssigned, 100, "Alice")))

	conflicts, err := checker.Check(ctx, "desk-1", mon, fri, nil)
	require.NoError(t, err)
	require.Empty(t, conflicts)
}

func TestConflictChecker_ExcludesOwnReservationOnEdit(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	checker := NewConflictChecker(store, zap.NewNop())
	ctx := context.Background()

	mon := testDay(t, "2026-03-02")
	wed := testDay(t, "2026-03-04")
	fri := testDay(t, "2026-03-06")
	sun := testDay(t, "2026-03-08")

	require.NoError(t, store.PutMany(ctx, expandReservation(t, "desk-1", mon, fri, domain.StatusAssigned, 100, "Alice")))

	// extending own reservation must not conflict with itself
	own := &domain.Reservation{DeskID: "desk-1", RangeStart: mon, RangeEnd: fri}
	conflicts, err := checker.Check(ctx, "desk-1", wed, sun, own)
	require.NoError(t, err)
	require.Empty(t, conflicts)

	// the exclusion is per desk: a reservation on another desk excludes nothing
	otherDesk := &domain.Reservation{DeskID: "desk-2", RangeStart: mon, RangeEnd: fri}
	conflicts, err = checker.Check(ctx, "desk-1", wed, sun, otherDesk)
	require.NoError(t, err)
	require.Len(t, conflicts, 3)
}
