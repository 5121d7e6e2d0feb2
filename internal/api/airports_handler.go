package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/constants"
	"skyatlas/airports/internal/models/dtos"
)

// SearchAirports handles GET /airports/search
func (h *Handlers) SearchAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseSearchQuery(r.URL.Query())
		if err != nil {
			respondFailure(w, r, err)
			return
		}

		res, err := h.deps.Services.Airports.Search(r.Context(), q)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, res)
	}
}

// SearchMainAirports handles GET /airports/search/main
func (h *Handlers) SearchMainAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseSearchQuery(r.URL.Query())
		if err != nil {
			respondFailure(w, r, err)
			return
		}

		res, err := h.deps.Services.Airports.SearchMain(r.Context(), q)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, res)
	}
}

// MainAirportForCity handles GET /airports/main-airport/{city}
func (h *Handlers) MainAirportForCity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city := chi.URLParam(r, "city")

		airport, err := h.deps.Services.Airports.MainForCity(r.Context(), city)
		respondAirport(w, r, airport, err, fmt.Sprintf(constants.MsgMainAirportNotFound, city))
	}
}

// AirportStats handles GET /airports/stats
func (h *Handlers) AirportStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.deps.Services.Airports.Stats(r.Context())
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, stats)
	}
}

// AirportByID handles GET /airports/id/{id}
func (h *Handlers) AirportByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, constants.MsgNumericIDExpected)
			return
		}

		airport, err := h.deps.Services.Airports.ByID(r.Context(), id)
		respondAirport(w, r, airport, err, fmt.Sprintf(constants.MsgAirportIDNotFound, id))
	}
}

// AirportByIATA handles GET /airports/iata/{iata}
func (h *Handlers) AirportByIATA() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "iata")

		airport, err := h.deps.Services.Airports.ByIATA(r.Context(), code)
		respondAirport(w, r, airport, err, fmt.Sprintf(constants.MsgAirportIATANotFound, code))
	}
}

// AirportByICAO handles GET /airports/icao/{icao}
func (h *Handlers) AirportByICAO() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "icao")

		airport, err := h.deps.Services.Airports.ByICAO(r.Context(), code)
		respondAirport(w, r, airport, err, fmt.Sprintf(constants.MsgAirportICAONotFound, code))
	}
}

// AirportsByCountry handles GET /airports/country/{country}
func (h *Handlers) AirportsByCountry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := parsePage(r.URL.Query())
		if err != nil {
			respondFailure(w, r, err)
			return
		}

		res, err := h.deps.Services.Airports.ByCountry(r.Context(), chi.URLParam(r, "country"), limit, offset)
		if err != nil {
			respondFailure(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, res)
	}
}

func respondAirport(w http.ResponseWriter, r *http.Request, airport *dtos.AirportResponse, err error, notFound string) {
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if airport == nil {
		common.RespondError(w, http.StatusNotFound, notFound)
		return
	}
	common.RespondJSON(w, http.StatusOK, airport)
}
