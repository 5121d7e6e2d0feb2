package common

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"skyatlas/airports/internal/constants"
	"skyatlas/airports/internal/models/dtos"
)

func AirportIDKey(id int64) string {
	return string(constants.CachePrefixAirportByID) + strconv.FormatInt(id, 10)
}

func AirportIATAKey(code string) string {
	return string(constants.CachePrefixAirportByIATA) + strings.ToUpper(code)
}

func AirportICAOKey(code string) string {
	return string(constants.CachePrefixAirportByICAO) + strings.ToUpper(code)
}

// SearchKey encodes q (defaults applied, codes uppercased) as canonical JSON:
// fixed field order, empty filters omitted.
func SearchKey(q dtos.SearchQuery) string {
	data, err := json.Marshal(q.Normalized())
	if err != nil {
		// a struct of strings and ints cannot fail to encode
		panic(err)
	}
	return string(constants.CachePrefixSearch) + string(data)
}

func CountryKey(country string, limit, offset int) string {
	return string(constants.CachePrefixCountry) + country + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}

func StatsKey() string {
	return string(constants.CachePrefixStats)
}

func MainAirportCityKey(city string) string {
	return string(constants.CachePrefixMainAirport) + strings.ToLower(city)
}

// KeyFamily labels a key for metrics without leaking its parameters.
func KeyFamily(key string) string {
	switch {
	case strings.HasPrefix(key, string(constants.CachePrefixAirportByIATA)):
		return "airport_iata"
	case strings.HasPrefix(key, string(constants.CachePrefixAirportByICAO)):
		return "airport_icao"
	case strings.HasPrefix(key, string(constants.CachePrefixAirportByID)):
		return "airport_id"
	case strings.HasPrefix(key, string(constants.CachePrefixSearch)):
		return "search"
	case strings.HasPrefix(key, string(constants.CachePrefixCountry)):
		return "country"
	case key == string(constants.CachePrefixStats):
		return "stats"
	case strings.HasPrefix(key, string(constants.CachePrefixMainAirport)):
		return "main_airport"
	default:
		return "other"
	}
}
