package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeBedTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms SET beds = beds - 1").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewRoomRepo(db)
	err = repo.TakeBedTx(context.Background(), tx, 5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTakeBedTxFullRoom(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	// The beds > 0 guard matches no rows when the room is full.
	mock.ExpectExec("UPDATE rooms SET beds = beds - 1").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewRoomRepo(db)
	err = repo.TakeBedTx(context.Background(), tx, 5)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestReturnBedTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms SET beds = beds \\+ 1").
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewRoomRepo(db)
	err = repo.ReturnBedTx(context.Background(), tx, 8)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
