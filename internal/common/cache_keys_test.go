package common

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyatlas/airports/internal/models/dtos"
)

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "airport:42", AirportIDKey(42))
	assert.Equal(t, "airport:iata:JFK", AirportIATAKey("jfk"))
	assert.Equal(t, "airport:icao:KJFK", AirportICAOKey("kJfK"))
	assert.Equal(t, "airports:country:Peru:50:100", CountryKey("Peru", 50, 100))
	assert.Equal(t, "airports:stats", StatsKey())
	assert.Equal(t, "main-airport:city:new york", MainAirportCityKey("New York"))
}

func TestSearchKey_CanonicalJSON(t *testing.T) {
	q := dtos.NewSearchQuery()
	assert.Equal(t, `airports:search:{"limit":50,"offset":0}`, SearchKey(q))

	q.ICAO = "egll"
	q.Search = "london"
	q.Offset = 10
	assert.Equal(t, `airports:search:{"search":"london","icao":"EGLL","limit":50,"offset":10}`, SearchKey(q))

	// code case does not split the cache
	upper := q
	upper.ICAO = "EGLL"
	assert.Equal(t, SearchKey(q), SearchKey(upper))

	// distinct filters never collide
	other := q
	other.City, other.Search = "london", ""
	assert.NotEqual(t, SearchKey(q), SearchKey(other))
}

func TestKeyFamily(t *testing.T) {
	tests := map[string]string{
		AirportIDKey(1):                  "airport_id",
		AirportIATAKey("jfk"):            "airport_iata",
		AirportICAOKey("kjfk"):           "airport_icao",
		SearchKey(dtos.NewSearchQuery()): "search",
		CountryKey("Peru", 1, 0):         "country",
		StatsKey():                       "stats",
		MainAirportCityKey("Paris"):      "main_airport",
		"unrelated":                      "other",
	}
	for key, want := range tests {
		assert.Equal(t, want, KeyFamily(key), key)
	}
}
