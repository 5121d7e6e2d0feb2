package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/models/dtos"
)

// DefaultSelectorParallelism bounds how many city groups are resolved at once.
const DefaultSelectorParallelism = 4

// MainAirportAdvisor picks the primary airport among same-city candidates.
// Implementations may be slow or fail; the selector never trusts the answer
// blindly.
type MainAirportAdvisor interface {
	ChooseIndex(ctx context.Context, candidates []dtos.AirportResponse) (int, error)
}

// MainAirportSelector collapses airports to one per (city, country).
type MainAirportSelector struct {
	advisor     MainAirportAdvisor
	callTimeout time.Duration
	parallelism int
}

// NewMainAirportSelector builds a selector. A nil advisor always yields the
// first candidate of each group.
func NewMainAirportSelector(advisor MainAirportAdvisor, callTimeout time.Duration, parallelism int) *MainAirportSelector {
	if parallelism <= 0 {
		parallelism = DefaultSelectorParallelism
	}
	return &MainAirportSelector{
		advisor:     advisor,
		callTimeout: callTimeout,
		parallelism: parallelism,
	}
}

// Select returns one airport per (lower(city), lower(country)) group, in the
// order each group first appears in airports.
func (s *MainAirportSelector) Select(ctx context.Context, airports []dtos.AirportResponse) []dtos.AirportResponse {
	groups := groupByCity(airports)
	picked := make([]dtos.AirportResponse, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, group := range groups {
		if len(group) == 1 {
			picked[i] = group[0]
			continue
		}
		g.Go(func() error {
			picked[i] = s.chooseMain(gctx, group)
			return nil
		})
	}
	_ = g.Wait()

	return picked
}

// MainForCity narrows candidates to those whose city contains city or is
// contained by it (case-insensitive), then picks one. Returns nil when none
// match.
func (s *MainAirportSelector) MainForCity(ctx context.Context, city string, candidates []dtos.AirportResponse) *dtos.AirportResponse {
	needle := strings.ToLower(city)

	matched := make([]dtos.AirportResponse, 0, len(candidates))
	for _, c := range candidates {
		hay := strings.ToLower(c.City)
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			matched = append(matched, c)
		}
	}

	switch len(matched) {
	case 0:
		return nil
	case 1:
		return &matched[0]
	}
	main := s.chooseMain(ctx, matched)
	return &main
}

func (s *MainAirportSelector) chooseMain(ctx context.Context, group []dtos.AirportResponse) dtos.AirportResponse {
	if s.advisor == nil {
		return group[0]
	}

	callCtx := ctx
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	idx, err := s.advisor.ChooseIndex(callCtx, group)
	if err != nil {
		logging.Warn("Main airport advisor failed, using first candidate",
			"city", group[0].City, "candidates", len(group), "error", err.Error())
		return group[0]
	}
	if idx < 0 || idx >= len(group) {
		logging.Warn("Main airport advisor returned out-of-range index, using first candidate",
			"city", group[0].City, "index", idx, "candidates", len(group))
		return group[0]
	}

	logging.Debug("Main airport selected", "city", group[0].City, "airport", group[idx].Name)
	return group[idx]
}

func groupByCity(airports []dtos.AirportResponse) [][]dtos.AirportResponse {
	index := make(map[string]int)
	var groups [][]dtos.AirportResponse

	for _, a := range airports {
		key := strings.ToLower(a.City) + "\x00" + strings.ToLower(a.Country)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], a)
	}
	return groups
}
