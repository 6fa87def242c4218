package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithRole(t *testing.T, role any, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	err := RequireRole(allowed...)(next)(c)
	require.NoError(t, err)
	return rec
}

func TestRequireRoleAllows(t *testing.T) {
	rec := runWithRole(t, "OWNER", "OWNER", "ADMIN")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequireRoleDenies(t *testing.T) {
	rec := runWithRole(t, "USER", "ADMIN")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMissingRole(t *testing.T) {
	rec := runWithRole(t, nil, "USER")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWrongType(t *testing.T) {
	rec := runWithRole(t, 42, "USER")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
