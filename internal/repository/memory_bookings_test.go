package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDateKey(s)
	require.NoError(t, err)
	return d
}

func TestMemoryBookingStore_GetMissReturnsNil(t *testing.T) {
	store := NewMemoryBookingStore()

	rec, err := store.Get(context.Background(), "desk-1", mustDay(t, "2026-03-02"))
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestMemoryBookingStore_PutNormalizesAndUpserts(t *testing.T) {
	store := NewMemoryBookingStore()
	ctx := context.Background()

	// non-midnight timestamp lands on the same day record
	noisy := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, domain.BookingRecord{
		DeskID:     "desk-1",
		Day:        noisy,
		RangeStart: noisy,
		RangeEnd:   noisy,
		Status:     domain.StatusBooked,
		Price:      20,
	}))

	rec, err := store.Get(ctx, "desk-1", mustDay(t, "2026-03-02"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, mustDay(t, "2026-03-02"), rec.Day)
	require.Equal(t, "desk-1_2026-03-02", rec.ID)

	// same desk+day overwrites in place
	require.NoError(t, store.Put(ctx, domain.BookingRecord{
		DeskID:     "desk-1",
		Day:        mustDay(t, "2026-03-02"),
		RangeStart: mustDay(t, "2026-03-02"),
		RangeEnd:   mustDay(t, "2026-03-02"),
		Status:     domain.StatusAssigned,
		Price:      35,
	}))
	require.Equal(t, 1, store.Len())

	rec, err = store.Get(ctx, "desk-1", mustDay(t, "2026-03-02"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusAssigned, rec.Status)
	require.InDelta(t, 35, rec.Price, 1e-9)
}

func TestMemoryBookingStore_GetAllRangeAndOrder(t *testing.T) {
	store := NewMemoryBookingStore()
	ctx := context.Background()

	days := []string{"2026-03-02", "2026-03-03", "2026-03-04"}
	for _, d := range days {
		for _, desk := range []string{"desk-2", "desk-1"} {
			require.NoError(t, store.Put(ctx, domain.BookingRecord{
				DeskID:     desk,
				Day:        mustDay(t, d),
				RangeStart: mustDay(t, d),
				RangeEnd:   mustDay(t, d),
				Status:     domain.StatusBooked,
			}))
		}
	}

	// bounded range
	out, err := store.GetAll(ctx, mustDay(t, "2026-03-03"), mustDay(t, "2026-03-04"))
	require.NoError(t, err)
	require.Len(t, out, 4)
	require.Equal(t, "desk-1", out[0].DeskID)
	require.Equal(t, mustDay(t, "2026-03-03"), out[0].Day)
	require.Equal(t, "desk-2", out[1].DeskID)
	require.Equal(t, mustDay(t, "2026-03-04"), out[2].Day)

	// zero bounds mean unbounded
	out, err = store.GetAll(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, out, 6)
}

func TestMemoryBookingStore_DeleteAndDeleteMany(t *testing.T) {
	store := NewMemoryBookingStore()
	ctx := context.Background()

	for _, d := range []string{"2026-03-02", "2026-03-03", "2026-03-04"} {
		require.NoError(t, store.Put(ctx, domain.BookingRecord{
			DeskID:     "desk-1",
			Day:        mustDay(t, d),
			RangeStart: mustDay(t, d),
			RangeEnd:   mustDay(t, d),
			Status:     domain.StatusBooked,
		}))
	}

	require.NoError(t, store.Delete(ctx, "desk-1", mustDay(t, "2026-03-02")))
	require.Equal(t, 2, store.Len())

	// deleting an absent key is not an error
	require.NoError(t, store.Delete(ctx, "desk-1", mustDay(t, "2026-03-02")))

	require.NoError(t, store.DeleteMany(ctx, []RecordKey{
		{DeskID: "desk-1", Day: mustDay(t, "2026-03-03")},
		{DeskID: "desk-1", Day: mustDay(t, "2026-03-04")},
	}))
	require.Equal(t, 0, store.Len())
}
