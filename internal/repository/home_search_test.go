package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func searchRows() []HomeSearchRow {
	return []HomeSearchRow{
		{ID: 1, Title: "Sunny Apartment", City: "Cairo"},
		{ID: 2, Title: "Villa Garden", City: "Giza"},
		{ID: 3, Title: "Student House Near Campus", City: "Alexandria"},
	}
}

func ids(rows []HomeSearchRow) []uint64 {
	out := make([]uint64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestRankByDistanceSubstring(t *testing.T) {
	got := RankByDistance(searchRows(), "apartment")
	assert.Equal(t, []uint64{1}, ids(got))
}

func TestRankByDistanceCityMatch(t *testing.T) {
	got := RankByDistance(searchRows(), "giza")
	assert.Equal(t, []uint64{2}, ids(got))
}

func TestRankByDistanceToleratesTypos(t *testing.T) {
	// One substitution away from "villa".
	got := RankByDistance(searchRows(), "vila")
	assert.Contains(t, ids(got), uint64(2))
}

func TestRankByDistanceExactBeatsFuzzy(t *testing.T) {
	rows := []HomeSearchRow{
		{ID: 10, Title: "Cairo Flats"},  // substring match, distance 0
		{ID: 11, Title: "Cairn Lodge"},  // distance 1 from "cairo"
		{ID: 12, Title: "Plaza Towers"}, // far away, dropped
	}
	got := RankByDistance(rows, "cairo")
	assert.Equal(t, []uint64{10, 11}, ids(got))
}

func TestRankByDistanceDropsFarMatches(t *testing.T) {
	got := RankByDistance(searchRows(), "zzzzzzzz")
	assert.Empty(t, got)
}
