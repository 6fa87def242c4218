package handler

import (
	"bytes"
	"database/sql"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hassanskary/unistay/internal/config"
	"github.com/Hassanskary/unistay/internal/repository"
)

var homeCols = []string{"id", "owner_id", "title", "description", "city", "gender", "home_type",
	"floor", "distance_m", "contract_photo", "status", "created_at", "updated_at"}

func homeRow(contract string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(homeCols).
		AddRow(3, 7, "Dorm near campus", "two rooms", "Cairo", "MALE", "APARTMENT",
			2, 500, contract, "APPROVED", now, now)
}

func newOwnerTestHandler(t *testing.T, db *sql.DB) (*OwnerHandler, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{UploadDir: dir}
	return NewOwnerHandler(cfg, repository.NewHomeRepo(db), repository.NewRoomRepo(db),
		repository.NewFacilityRepo(db)), dir
}

func writeUpload(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
}

func ownerContext(method, target string, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set(echo.HeaderContentType, contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set("user_id", uint64(7))
	return c, rec
}

func TestDeleteHomeRemovesAllFiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h, dir := newOwnerTestHandler(t, db)
	writeUpload(t, dir, "contracts/abc.pdf")
	writeUpload(t, dir, "rooms/r1.jpg")
	writeUpload(t, dir, "photos/p1.jpg")

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnRows(homeRow("contracts/abc.pdf"))
	mock.ExpectQuery("FROM rooms WHERE home_id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "home_id", "number", "beds", "price_cents",
			"is_completed", "photo", "created_at", "updated_at"}).
			AddRow(11, 3, "A1", 2, 150000, true, "rooms/r1.jpg", now, now))
	mock.ExpectQuery("FROM home_photos WHERE home_id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "home_id", "path", "position"}).
			AddRow(21, 3, "photos/p1.jpg", 1))
	// ownership and live-booking checks inside the row delete
	mock.ExpectQuery("SELECT (.+) FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnRows(homeRow("contracts/abc.pdf"))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectExec("DELETE FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := ownerContext(http.MethodDelete, "/v1/owner/homes/3", nil, "")
	require.NoError(t, h.DeleteHome(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, rel := range []string{"contracts/abc.pdf", "rooms/r1.jpg", "photos/p1.jpg"} {
		_, statErr := os.Stat(filepath.Join(dir, rel))
		assert.True(t, os.IsNotExist(statErr), rel)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHomeKeepsFilesOnActiveBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h, dir := newOwnerTestHandler(t, db)
	writeUpload(t, dir, "contracts/abc.pdf")

	mock.ExpectQuery("SELECT (.+) FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnRows(homeRow("contracts/abc.pdf"))
	mock.ExpectQuery("FROM rooms WHERE home_id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "home_id", "number", "beds", "price_cents",
			"is_completed", "photo", "created_at", "updated_at"}))
	mock.ExpectQuery("FROM home_photos WHERE home_id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "home_id", "path", "position"}))
	mock.ExpectQuery("SELECT (.+) FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnRows(homeRow("contracts/abc.pdf"))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(2))

	c, rec := ownerContext(http.MethodDelete, "/v1/owner/homes/3", nil, "")
	require.NoError(t, h.DeleteHome(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	_, statErr := os.Stat(filepath.Join(dir, "contracts", "abc.pdf"))
	assert.NoError(t, statErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateHomeReplacesContractFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h, dir := newOwnerTestHandler(t, db)
	writeUpload(t, dir, "contracts/old.pdf")

	// previous contract lookup, then ownership check inside Update
	mock.ExpectQuery("SELECT (.+) FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnRows(homeRow("contracts/old.pdf"))
	mock.ExpectQuery("SELECT (.+) FROM homes WHERE id=").
		WithArgs(uint64(3)).WillReturnRows(homeRow("contracts/old.pdf"))
	mock.ExpectExec("UPDATE homes SET (.+)contract_photo=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("title", "Dorm near campus"))
	require.NoError(t, w.WriteField("city", "Cairo"))
	require.NoError(t, w.WriteField("gender", "MALE"))
	require.NoError(t, w.WriteField("home_type", "APARTMENT"))
	require.NoError(t, w.WriteField("floor", "2"))
	require.NoError(t, w.WriteField("distance_m", "500"))
	fw, err := w.CreateFormFile("contract", "scan.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	c, rec := ownerContext(http.MethodPut, "/v1/owner/homes/3", &body, w.FormDataContentType())
	require.NoError(t, h.UpdateHome(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, statErr := os.Stat(filepath.Join(dir, "contracts", "old.pdf"))
	assert.True(t, os.IsNotExist(statErr))
	entries, err := os.ReadDir(filepath.Join(dir, "contracts"))
	require.NoError(t, err)
	require.Len(t, entries, 1) // only the replacement scan remains
	assert.NoError(t, mock.ExpectationsWereMet())
}
