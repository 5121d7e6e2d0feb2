package api

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	gormlib "gorm.io/gorm"

	"skyatlas/airports/internal/common"
	"skyatlas/airports/internal/config"
	"skyatlas/airports/internal/db/repositories"
	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/services"
)

type Repositories struct {
	Airports *repositories.AirportRepository
}

type Services struct {
	Cache       common.CacheInterface
	Importer    *common.AirportLoaderService
	Selector    *services.MainAirportSelector
	Airports    *services.AirportsService
	AdminTokens *common.AdminTokenSigner
}

type Dependencies struct {
	Config   *config.Config
	Repo     *Repositories
	Services *Services
	DB       *sqlx.DB
	Metrics  *metrics.MetricsRegistry
	Gatherer prometheus.Gatherer
	UpSince  time.Time
}

// InitDependencies wires the store, cache, advisor and services for cfg.
// The schema must already exist on gdb.
func InitDependencies(ctx context.Context, cfg *config.Config, gdb *gormlib.DB, metricsReg *metrics.MetricsRegistry, gatherer prometheus.Gatherer) (*Dependencies, error) {
	airportRepo, err := repositories.NewAirportRepository(gdb, metricsReg)
	if err != nil {
		return nil, err
	}

	cache := common.NewResponseCache(ctx, cfg.Cache, cfg.Redis)
	importer := common.NewAirportLoaderService(airportRepo, cfg.Airports.DataURL, nil, cfg.Server.ImportTimeout, metricsReg)

	// a nil *OpenAIAdvisor must not become a non-nil interface
	var advisor services.MainAirportAdvisor
	if openAI := common.NewOpenAIAdvisor(cfg.LLM, metricsReg); openAI != nil {
		advisor = openAI
	}
	selector := services.NewMainAirportSelector(advisor, cfg.LLM.Timeout, cfg.LLM.MaxConcurrency)

	var signer *common.AdminTokenSigner
	if cfg.Auth.AdminTokenSecret != "" {
		signer = common.NewAdminTokenSigner([]byte(cfg.Auth.AdminTokenSecret))
	}

	return &Dependencies{
		Config: cfg,
		Repo:   &Repositories{Airports: airportRepo},
		Services: &Services{
			Cache:       cache,
			Importer:    importer,
			Selector:    selector,
			Airports:    services.NewAirportsService(airportRepo, cache, selector, importer, metricsReg),
			AdminTokens: signer,
		},
		DB:       airportRepo.SQLX(),
		Metrics:  metricsReg,
		Gatherer: gatherer,
		UpSince:  time.Now(),
	}, nil
}

// Close releases the cache backend.
func (d *Dependencies) Close() error {
	return d.Services.Cache.Close()
}
