package constants

import "time"

type (
	CachePrefix string
)

const (
	CachePrefixAirportByID   CachePrefix = "airport:"
	CachePrefixAirportByIATA CachePrefix = "airport:iata:"
	CachePrefixAirportByICAO CachePrefix = "airport:icao:"
	CachePrefixSearch        CachePrefix = "airports:search:"
	CachePrefixCountry       CachePrefix = "airports:country:"
	CachePrefixStats         CachePrefix = "airports:stats"
	CachePrefixMainAirport   CachePrefix = "main-airport:city:"
)

// Response cache TTLs per query family.
const (
	TTLEntity      = 600 * time.Second
	TTLSearch      = 300 * time.Second
	TTLStats       = 3600 * time.Second
	TTLMainAirport = 3600 * time.Second
)

// TopCountriesLimit is the number of countries reported by /airports/stats.
const TopCountriesLimit = 10

const (
	HeaderAPIKey        = "x-api-key"
	QueryAPIKey         = "apiKey"
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

// RoleAdmin is the role claim an admin bearer token must carry.
const RoleAdmin = "admin"
