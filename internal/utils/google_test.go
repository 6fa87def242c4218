package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailLocalPart(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"ahmed@uni.edu", "ahmed"},
		{"first.last@gmail.com", "first.last"},
		{"no-at-sign", "no-at-sign"},
		{"@leading", "@leading"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, emailLocalPart(tc.email), tc.email)
	}
}
