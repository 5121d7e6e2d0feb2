package dtos

import (
	"strings"

	"skyatlas/airports/internal/models/gorm"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 1000
)

// AirportResponse is the wire shape of a catalog entry. Absent codes
// serialize as JSON null.
type AirportResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	IATA      *string `json:"iata"`
	ICAO      *string `json:"icao"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  int     `json:"altitude"`
	Timezone  float64 `json:"timezone"`
	DST       string  `json:"dst"`
	TZ        string  `json:"tz"`
	Type      string  `json:"type"`
	Source    string  `json:"source"`
}

// SearchQuery carries the structured filters for /airports/search.
// Empty string filters are treated as absent.
type SearchQuery struct {
	Search  string `json:"search,omitempty" validate:"max=255"`
	Country string `json:"country,omitempty" validate:"max=255"`
	City    string `json:"city,omitempty" validate:"max=255"`
	IATA    string `json:"iata,omitempty" validate:"max=255"`
	ICAO    string `json:"icao,omitempty" validate:"max=255"`
	Limit   int    `json:"limit" validate:"min=1,max=1000"`
	Offset  int    `json:"offset" validate:"min=0"`
}

// NewSearchQuery returns a query with default pagination applied.
func NewSearchQuery() SearchQuery {
	return SearchQuery{Limit: DefaultSearchLimit}
}

// Normalized returns a copy with exact-match codes uppercased. The result
// drives both the SQL predicates and the cache key.
func (q SearchQuery) Normalized() SearchQuery {
	q.IATA = strings.ToUpper(q.IATA)
	q.ICAO = strings.ToUpper(q.ICAO)
	return q
}

type SearchResponse struct {
	Airports []AirportResponse `json:"airports"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type CountryCount struct {
	Country string `json:"country" db:"country"`
	Count   int64  `json:"count" db:"count"`
}

type StatsResponse struct {
	Total        int64          `json:"total"`
	WithIATA     int64          `json:"withIata"`
	WithICAO     int64          `json:"withIcao"`
	TopCountries []CountryCount `json:"topCountries"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	Imported *int   `json:"imported,omitempty"`
}

// ErrorResponse mirrors the error envelope clients of the original API expect.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func ToAirportResponse(a gorm.Airport) AirportResponse {
	return AirportResponse{
		ID:        a.ID,
		Name:      a.Name,
		City:      a.City,
		Country:   a.Country,
		IATA:      a.IATA,
		ICAO:      a.ICAO,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Altitude:  a.Altitude,
		Timezone:  a.Timezone,
		DST:       a.DST,
		TZ:        a.TZ,
		Type:      a.Type,
		Source:    a.Source,
	}
}

func ToAirportResponses(airports []gorm.Airport) []AirportResponse {
	out := make([]AirportResponse, 0, len(airports))
	for _, a := range airports {
		out = append(out, ToAirportResponse(a))
	}
	return out
}
