package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserID(t *testing.T) {
	cases := []struct {
		name string
		val  any
		want uint64
		ok   bool
	}{
		{"uint64", uint64(12), 12, true},
		{"float64 from jwt claim", float64(34), 34, true},
		{"int", int(5), 5, true},
		{"string", "77", 77, true},
		{"garbage string", "abc", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testContext("/")
			if tc.val != nil {
				c.Set("user_id", tc.val)
			}
			got, err := getUserID(c)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	c := testContext("/")
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.SetParamValues("0")
	_, err = pathID(c, "id")
	assert.Error(t, err)

	c.SetParamValues("nope")
	_, err = pathID(c, "id")
	assert.Error(t, err)
}

func TestPageParams(t *testing.T) {
	page, size := pageParams(testContext("/?page=3&page_size=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	page, size = pageParams(testContext("/"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = pageParams(testContext("/?page=-2&page_size=1000"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
}
