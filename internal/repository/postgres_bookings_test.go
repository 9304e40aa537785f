package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresBookingStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresBookingStore(db), mock
}

func bookingRows(records ...domain.BookingRecord) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"record_id", "desk_id", "day", "range_start", "range_end",
		"status", "occupant_name", "title", "price", "currency", "created_at",
	})
	for _, rec := range records {
		rows.AddRow(rec.ID, rec.DeskID, rec.Day, rec.RangeStart, rec.RangeEnd,
			string(rec.Status), rec.OccupantName, rec.Title, rec.Price, string(rec.Currency), rec.CreatedAt)
	}
	return rows
}

func TestPostgresBookingStore_GetMissReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)
	day := mustDay(t, "2026-03-02")

	mock.ExpectQuery("SELECT .+ FROM booking_records WHERE desk_id").
		WithArgs("desk-1", day).
		WillReturnError(sql.ErrNoRows)

	rec, err := store.Get(context.Background(), "desk-1", day)
	require.NoError(t, err)
	require.Nil(t, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_GetHit(t *testing.T) {
	store, mock := newMockStore(t)
	day := mustDay(t, "2026-03-02")
	created := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

	want := domain.BookingRecord{
		ID:           "desk-1_2026-03-02",
		DeskID:       "desk-1",
		Day:          day,
		RangeStart:   day,
		RangeEnd:     mustDay(t, "2026-03-06"),
		Status:       domain.StatusAssigned,
		OccupantName: "Alice",
		Title:        "Q1 contract",
		Price:        100,
		Currency:     domain.CurrencyEUR,
		CreatedAt:    created,
	}
	mock.ExpectQuery("SELECT .+ FROM booking_records WHERE desk_id").
		WithArgs("desk-1", day).
		WillReturnRows(bookingRows(want))

	rec, err := store.Get(context.Background(), "desk-1", day)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, want, *rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_GetAllBounded(t *testing.T) {
	store, mock := newMockStore(t)
	start := mustDay(t, "2026-03-02")
	end := mustDay(t, "2026-03-06")

	mock.ExpectQuery("SELECT .+ FROM booking_records WHERE day >= .+ AND day <= .+ ORDER BY day, desk_id").
		WithArgs(start, end).
		WillReturnRows(bookingRows())

	out, err := store.GetAll(context.Background(), start, end)
	require.NoError(t, err)
	require.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_GetAllUnbounded(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM booking_records ORDER BY day, desk_id").
		WillReturnRows(bookingRows())

	_, err := store.GetAll(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_PutUpserts(t *testing.T) {
	store, mock := newMockStore(t)
	day := mustDay(t, "2026-03-02")

	mock.ExpectExec(`(?s)INSERT INTO booking_records.+ON CONFLICT \(desk_id, day\)`).
		WithArgs("desk-1_2026-03-02", "desk-1", day, day, day, "booked", "Bob", "", 20.0, "USD", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), domain.BookingRecord{
		DeskID:       "desk-1",
		Day:          day,
		RangeStart:   day,
		RangeEnd:     day,
		Status:       domain.StatusBooked,
		OccupantName: "Bob",
		Price:        20,
		Currency:     domain.CurrencyUSD,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_PutManyCommits(t *testing.T) {
	store, mock := newMockStore(t)
	mon := mustDay(t, "2026-03-02")
	tue := mustDay(t, "2026-03-03")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.PutMany(context.Background(), []domain.BookingRecord{
		{DeskID: "desk-1", Day: mon, RangeStart: mon, RangeEnd: tue, Status: domain.StatusBooked, CreatedAt: time.Now()},
		{DeskID: "desk-1", Day: tue, RangeStart: mon, RangeEnd: tue, Status: domain.StatusBooked, CreatedAt: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_PutManyRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mon := mustDay(t, "2026-03-02")
	tue := mustDay(t, "2026-03-03")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_records").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.PutMany(context.Background(), []domain.BookingRecord{
		{DeskID: "desk-1", Day: mon, RangeStart: mon, RangeEnd: tue, Status: domain.StatusBooked, CreatedAt: time.Now()},
		{DeskID: "desk-1", Day: tue, RangeStart: mon, RangeEnd: tue, Status: domain.StatusBooked, CreatedAt: time.Now()},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_PutManyEmptyIsNoop(t *testing.T) {
	store, mock := newMockStore(t)

	require.NoError(t, store.PutMany(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookingStore_DeleteManyRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mon := mustDay(t, "2026-03-02")
	tue := mustDay(t, "2026-03-03")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM booking_records").WithArgs("desk-1", mon).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM booking_records").WithArgs("desk-1", tue).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.DeleteMany(context.Background(), []RecordKey{
		{DeskID: "desk-1", Day: mon},
		{DeskID: "desk-1", Day: tue},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
