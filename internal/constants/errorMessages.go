package constants

const (
	MsgAPIKeyRequired    = "API key is required"
	MsgInvalidAPIKey     = "Invalid API key"
	MsgAdminRequired     = "Admin credentials required"
	MsgInvalidAdminToken = "Invalid admin token"

	MsgAirportIDNotFound   = "Airport with ID %d not found"
	MsgAirportIATANotFound = "Airport with IATA code %s not found"
	MsgAirportICAONotFound = "Airport with ICAO code %s not found"
	MsgMainAirportNotFound = "No main airport found for city: %s"

	MsgNumericIDExpected = "Validation failed (numeric string is expected)"
	MsgRouteNotFound     = "Cannot %s %s"
	MsgMethodNotAllowed  = "Method %s not allowed on %s"

	MsgImportSucceeded = "Airport data imported successfully and cache cleared"
	MsgImportFailed    = "Failed to import airport data"
	MsgCacheCleared    = "Cache cleared successfully"
	MsgInternalError   = "Internal server error"
)
