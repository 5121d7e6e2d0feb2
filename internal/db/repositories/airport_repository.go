package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"skyatlas/airports/internal/db"
	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/models/dtos"
	"skyatlas/airports/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// MaxCityCandidates caps FindByCityLike so a one-letter city term cannot
// pull the whole catalog into the selector.
const MaxCityCandidates = dtos.MaxSearchLimit

// likeClause is appended to every case-insensitive substring predicate.
const likeClause = ` LIKE ? ESCAPE '\'`

// AirportRepository handles airport table operations
type AirportRepository struct {
	db      *gormlib.DB
	sqlx    *sqlx.DB
	metrics *metrics.MetricsRegistry
}

// NewAirportRepository creates a new airport repository
func NewAirportRepository(gdb *gormlib.DB, metricsReg *metrics.MetricsRegistry) (*AirportRepository, error) {
	sx, err := db.WrapSQLX(gdb)
	if err != nil {
		return nil, err
	}
	if metricsReg == nil {
		metricsReg = metrics.NewNopRegistry()
	}
	return &AirportRepository{db: gdb, sqlx: sx, metrics: metricsReg}, nil
}

// SQLX exposes the shared pool, e.g. for health checks.
func (r *AirportRepository) SQLX() *sqlx.DB {
	return r.sqlx
}

// FindByID finds an airport by primary key. Returns (nil, nil) when absent.
func (r *AirportRepository) FindByID(ctx context.Context, id int64) (*gorm.Airport, error) {
	var airport gorm.Airport
	err := r.observe("find_by_id", func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).Take(&airport).Error
	})
	return firstOrNil(&airport, err)
}

// FindByIATA finds an airport by IATA code (case-insensitive)
func (r *AirportRepository) FindByIATA(ctx context.Context, iata string) (*gorm.Airport, error) {
	var airport gorm.Airport
	err := r.observe("find_by_iata", func() error {
		return r.db.WithContext(ctx).
			Where("iata = ?", strings.ToUpper(iata)).
			Order("id ASC").
			Take(&airport).Error
	})
	return firstOrNil(&airport, err)
}

// FindByICAO finds an airport by ICAO code (case-insensitive)
func (r *AirportRepository) FindByICAO(ctx context.Context, icao string) (*gorm.Airport, error) {
	var airport gorm.Airport
	err := r.observe("find_by_icao", func() error {
		return r.db.WithContext(ctx).
			Where("icao = ?", strings.ToUpper(icao)).
			Order("id ASC").
			Take(&airport).Error
	})
	return firstOrNil(&airport, err)
}

// Search returns one page of airports matching q ordered by name, plus the
// unpaginated match count. Both queries read the same catalog generation.
func (r *AirportRepository) Search(ctx context.Context, q dtos.SearchQuery) ([]gorm.Airport, int64, error) {
	q = q.Normalized()
	airports := []gorm.Airport{}
	var total int64

	err := r.observe("search", func() error {
		return r.readTx(ctx, func(tx *gormlib.DB) error {
			if err := applyFilters(tx.Model(&gorm.Airport{}), q).Count(&total).Error; err != nil {
				return fmt.Errorf("count: %w", err)
			}
			if total == 0 || int64(q.Offset) >= total {
				return nil
			}
			return applyFilters(tx, q).
				Scopes(byName).
				Limit(q.Limit).
				Offset(q.Offset).
				Find(&airports).Error
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return airports, total, nil
}

// FindByCityLike returns airports whose city contains city (case-insensitive),
// ordered by name.
func (r *AirportRepository) FindByCityLike(ctx context.Context, city string) ([]gorm.Airport, error) {
	airports := []gorm.Airport{}
	err := r.observe("find_by_city_like", func() error {
		return r.db.WithContext(ctx).
			Where("city_fold"+likeClause, likePattern(city)).
			Scopes(byName).
			Limit(MaxCityCandidates).
			Find(&airports).Error
	})
	if err != nil {
		return nil, err
	}
	return airports, nil
}

// Count returns total number of airports
func (r *AirportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.observe("count", func() error {
		return r.db.WithContext(ctx).Model(&gorm.Airport{}).Count(&count).Error
	})
	return count, err
}

func applyFilters(tx *gormlib.DB, q dtos.SearchQuery) *gormlib.DB {
	if q.Search != "" {
		p := likePattern(q.Search)
		tx = tx.Where(
			"(name_fold"+likeClause+
				" OR city_fold"+likeClause+
				" OR country_fold"+likeClause+
				" OR LOWER(iata)"+likeClause+
				" OR LOWER(icao)"+likeClause+")",
			p, p, p, p, p,
		)
	}
	if q.Country != "" {
		tx = tx.Where("country_fold"+likeClause, likePattern(q.Country))
	}
	if q.City != "" {
		tx = tx.Where("city_fold"+likeClause, likePattern(q.City))
	}
	if q.IATA != "" {
		tx = tx.Where("iata = ?", q.IATA)
	}
	if q.ICAO != "" {
		tx = tx.Where("icao = ?", q.ICAO)
	}
	return tx
}

func byName(tx *gormlib.DB) *gormlib.DB {
	return tx.Order("name ASC").Order("id ASC")
}

// likePattern folds term the way Airport.Fold folds the stored columns and
// escapes LIKE metacharacters so user input is always matched literally.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(term)) + "%"
}

// readTx runs fn in a read-only transaction. Postgres gets REPEATABLE READ so
// multi-statement reads share a snapshot; SQLite in WAL mode already does.
func (r *AirportRepository) readTx(ctx context.Context, fn func(tx *gormlib.DB) error) error {
	var opts []*sql.TxOptions
	if r.dialect() == db.DialectPostgres {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return r.db.WithContext(ctx).Transaction(fn, opts...)
}

func (r *AirportRepository) dialect() string {
	return r.db.Dialector.Name()
}

func (r *AirportRepository) observe(queryType string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil && !errors.Is(err, gormlib.ErrRecordNotFound) {
		outcome = "error"
	}
	r.metrics.DBQueriesTotal.WithLabelValues(queryType, outcome).Inc()
	return err
}

func firstOrNil(airport *gorm.Airport, err error) (*gorm.Airport, error) {
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return airport, nil
}
