package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProrationCents(t *testing.T) {
	cases := []struct {
		name       string
		priceCents uint32
		days       int
		want       uint32
	}{
		{"full month", 30000, 30, 30000},
		{"single day", 30000, 1, 1000},
		{"ten days", 45000, 10, 15000},
		{"truncates fractions", 1000, 1, 33}, // 1000/30 = 33.33
		{"zero days", 30000, 0, 0},
		{"negative days", 30000, -3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ProrationCents(tc.priceCents, tc.days))
		})
	}
}

func TestStayDays(t *testing.T) {
	assert.Equal(t, 1, StayDays(day("2026-09-01"), day("2026-09-02")))
	assert.Equal(t, 30, StayDays(day("2026-09-01"), day("2026-10-01")))
	assert.Equal(t, 0, StayDays(day("2026-09-01"), day("2026-09-01")))
}

func TestValidateWindow(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		afterToday bool
		wantErr    bool
	}{
		{"one day ok", "2099-01-01", "2099-01-02", false, false},
		{"thirty days ok", "2099-01-01", "2099-01-31", false, false},
		{"end equals start", "2099-01-01", "2099-01-01", false, true},
		{"end before start", "2099-01-05", "2099-01-01", false, true},
		{"over thirty days", "2099-01-01", "2099-02-05", false, true},
		{"future start with afterToday", "2099-01-01", "2099-01-10", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWindow(day(tc.start), day(tc.end), tc.afterToday)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWindowRejectsPastStartForCards(t *testing.T) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	err := ValidateWindow(yesterday, yesterday.AddDate(0, 0, 5), true)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	// Cash bookings may start in the past (move-in already happened).
	err = ValidateWindow(yesterday, yesterday.AddDate(0, 0, 5), false)
	assert.NoError(t, err)
}

func TestSweepExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE bookings SET status = 'EXPIRED'").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewBookingRepo(db)
	n, err := repo.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByUserAndRoomTxNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(uint64(7), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewBookingRepo(db)
	_, err = repo.FindActiveByUserAndRoomTx(context.Background(), tx, 7, 9)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSetStatusTxMissingBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewBookingRepo(db)
	err = repo.SetStatusTx(context.Background(), tx, 42, "CANCELLED")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
