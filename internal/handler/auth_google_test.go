package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hassanskary/unistay/internal/config"
	"github.com/Hassanskary/unistay/internal/repository"
	"github.com/Hassanskary/unistay/internal/utils"
)

var userCols = []string{"id", "name", "email", "password_hash", "phone", "role",
	"social_provider", "is_active", "created_at", "updated_at"}

func newGoogleTestHandler(db *sql.DB) *AuthHandler {
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		GoogleClientID: "client-id.apps.googleusercontent.com",
	}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	h.verifyGoogle = func(_ context.Context, _, _ string) (utils.GoogleIdentity, error) {
		return utils.GoogleIdentity{Email: "sara@uni.edu", Name: "Sara"}, nil
	}
	return h
}

func googleContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	body := bytes.NewBufferString(`{"id_token":"opaque"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/google", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGoogleRejectsPasswordAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("sara@uni.edu").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(9, "Sara", "sara@uni.edu", "$2a$10$localhash", nil, "USER", nil, true, now, now))

	h := newGoogleTestHandler(db)
	c, rec := googleContext(t)
	require.NoError(t, h.Google(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered with a password")
	// No token pair is issued for the hijack attempt.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGoogleSignsInLinkedAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("sara@uni.edu").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(9, "Sara", "sara@uni.edu", "", nil, "USER", "GOOGLE", true, now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := newGoogleTestHandler(db)
	c, rec := googleContext(t)
	require.NoError(t, h.Google(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGoogleProvisionsNewAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs("sara@uni.edu").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Sara", "sara@uni.edu", "USER", "GOOGLE").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := newGoogleTestHandler(db)
	c, rec := googleContext(t)
	require.NoError(t, h.Google(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":42`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
