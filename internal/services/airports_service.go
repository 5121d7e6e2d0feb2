package services

import (
	"context"
	"errors"
	"fmt"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/constants"
	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/models/dtos"
	"skyatlas/airports/internal/models/gorm"
)

// ErrImportFailed wraps every catalog import failure surfaced to callers.
var ErrImportFailed = errors.New("catalog import failed")

// AirportStore is the read side of the catalog.
type AirportStore interface {
	FindByID(ctx context.Context, id int64) (*gorm.Airport, error)
	FindByIATA(ctx context.Context, iata string) (*gorm.Airport, error)
	FindByICAO(ctx context.Context, icao string) (*gorm.Airport, error)
	Search(ctx context.Context, q dtos.SearchQuery) ([]gorm.Airport, int64, error)
	FindByCityLike(ctx context.Context, city string) ([]gorm.Airport, error)
	CatalogStats(ctx context.Context, k int) (*dtos.StatsResponse, error)
}

// CatalogImporter reloads the catalog from its upstream source.
type CatalogImporter interface {
	Import(ctx context.Context) (int, error)
}

// AirportsService answers catalog queries through the response cache.
type AirportsService struct {
	store    AirportStore
	cache    common.CacheInterface
	selector *MainAirportSelector
	importer CatalogImporter
	metrics  *metrics.MetricsRegistry
}

func NewAirportsService(
	store AirportStore,
	cache common.CacheInterface,
	selector *MainAirportSelector,
	importer CatalogImporter,
	metricsReg *metrics.MetricsRegistry,
) *AirportsService {
	if selector == nil {
		selector = NewMainAirportSelector(nil, 0, 0)
	}
	if metricsReg == nil {
		metricsReg = metrics.NewNopRegistry()
	}
	return &AirportsService{
		store:    store,
		cache:    cache,
		selector: selector,
		importer: importer,
		metrics:  metricsReg,
	}
}

// Search returns one page of matches and the total match count.
func (svc *AirportsService) Search(ctx context.Context, q dtos.SearchQuery) (*dtos.SearchResponse, error) {
	q = q.Normalized()
	return common.GetOrLoad(ctx, svc.cache, svc.metrics, common.SearchKey(q), constants.TTLSearch,
		func(ctx context.Context) (*dtos.SearchResponse, error) {
			return svc.searchStore(ctx, q)
		})
}

// SearchMain runs Search and keeps one airport per city. Total is the
// length of the filtered page, not the store-wide match count.
func (svc *AirportsService) SearchMain(ctx context.Context, q dtos.SearchQuery) (*dtos.SearchResponse, error) {
	page, err := svc.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	filtered := svc.selector.Select(ctx, page.Airports)
	return &dtos.SearchResponse{
		Airports: filtered,
		Total:    int64(len(filtered)),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}, nil
}

// MainForCity returns the primary airport for city, or nil if no airport's
// city matches.
func (svc *AirportsService) MainForCity(ctx context.Context, city string) (*dtos.AirportResponse, error) {
	return common.GetOrLoad(ctx, svc.cache, svc.metrics, common.MainAirportCityKey(city), constants.TTLMainAirport,
		func(ctx context.Context) (*dtos.AirportResponse, error) {
			candidates, err := svc.store.FindByCityLike(ctx, city)
			if err != nil {
				return nil, err
			}
			return svc.selector.MainForCity(ctx, city, dtos.ToAirportResponses(candidates)), nil
		})
}

func (svc *AirportsService) Stats(ctx context.Context) (*dtos.StatsResponse, error) {
	return common.GetOrLoad(ctx, svc.cache, svc.metrics, common.StatsKey(), constants.TTLStats,
		func(ctx context.Context) (*dtos.StatsResponse, error) {
			return svc.store.CatalogStats(ctx, constants.TopCountriesLimit)
		})
}

func (svc *AirportsService) ByID(ctx context.Context, id int64) (*dtos.AirportResponse, error) {
	return svc.lookup(ctx, common.AirportIDKey(id), func(ctx context.Context) (*gorm.Airport, error) {
		return svc.store.FindByID(ctx, id)
	})
}

func (svc *AirportsService) ByIATA(ctx context.Context, code string) (*dtos.AirportResponse, error) {
	return svc.lookup(ctx, common.AirportIATAKey(code), func(ctx context.Context) (*gorm.Airport, error) {
		return svc.store.FindByIATA(ctx, code)
	})
}

func (svc *AirportsService) ByICAO(ctx context.Context, code string) (*dtos.AirportResponse, error) {
	return svc.lookup(ctx, common.AirportICAOKey(code), func(ctx context.Context) (*gorm.Airport, error) {
		return svc.store.FindByICAO(ctx, code)
	})
}

// ByCountry pages through airports whose country contains country.
func (svc *AirportsService) ByCountry(ctx context.Context, country string, limit, offset int) (*dtos.SearchResponse, error) {
	q := dtos.SearchQuery{Country: country, Limit: limit, Offset: offset}
	return common.GetOrLoad(ctx, svc.cache, svc.metrics, common.CountryKey(country, limit, offset), constants.TTLSearch,
		func(ctx context.Context) (*dtos.SearchResponse, error) {
			return svc.searchStore(ctx, q)
		})
}

// ImportCatalog reloads the catalog and then empties the response cache.
// The cache is left alone when the import fails.
func (svc *AirportsService) ImportCatalog(ctx context.Context) (int, error) {
	if svc.importer == nil {
		return 0, fmt.Errorf("%w: no importer configured", ErrImportFailed)
	}

	n, err := svc.importer.Import(ctx)
	if err != nil {
		logging.Error("Airport import failed", "error", err.Error())
		return 0, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}

	svc.FlushCache(ctx)
	return n, nil
}

// FlushCache drops every cached response. Backend errors are logged only.
func (svc *AirportsService) FlushCache(ctx context.Context) {
	if err := svc.cache.InvalidateAll(context.WithoutCancel(ctx)); err != nil {
		logging.Error("Failed to invalidate response cache", "backend", svc.cache.Name(), "error", err.Error())
		return
	}
	logging.Info("Response cache invalidated", "backend", svc.cache.Name())
}

func (svc *AirportsService) searchStore(ctx context.Context, q dtos.SearchQuery) (*dtos.SearchResponse, error) {
	airports, total, err := svc.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &dtos.SearchResponse{
		Airports: dtos.ToAirportResponses(airports),
		Total:    total,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}, nil
}

func (svc *AirportsService) lookup(ctx context.Context, key string, find func(ctx context.Context) (*gorm.Airport, error)) (*dtos.AirportResponse, error) {
	return common.GetOrLoad(ctx, svc.cache, svc.metrics, key, constants.TTLEntity,
		func(ctx context.Context) (*dtos.AirportResponse, error) {
			a, err := find(ctx)
			if err != nil || a == nil {
				return nil, err
			}
			resp := dtos.ToAirportResponse(*a)
			return &resp, nil
		})
}
