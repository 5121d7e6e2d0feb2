package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"skyatlas/airports/internal/db"
	"skyatlas/airports/internal/models/dtos"
)

const (
	countAllQuery  = `SELECT COUNT(*) FROM airports`
	countIATAQuery = `SELECT COUNT(*) FROM airports WHERE iata IS NOT NULL`
	countICAOQuery = `SELECT COUNT(*) FROM airports WHERE icao IS NOT NULL`

	topCountriesQuery = `
		SELECT country, COUNT(*) AS count
		FROM airports
		GROUP BY country
		ORDER BY count DESC, country ASC
		LIMIT ?`
)

func (r *AirportRepository) CountTotal(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "count_total", countAllQuery)
}

func (r *AirportRepository) CountWithIATA(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "count_with_iata", countIATAQuery)
}

func (r *AirportRepository) CountWithICAO(ctx context.Context) (int64, error) {
	return r.scalar(ctx, "count_with_icao", countICAOQuery)
}

// TopCountries returns the k countries with the most airports, largest first.
func (r *AirportRepository) TopCountries(ctx context.Context, k int) ([]dtos.CountryCount, error) {
	out := []dtos.CountryCount{}
	err := r.observe("top_countries", func() error {
		return r.sqlx.SelectContext(ctx, &out, r.sqlx.Rebind(topCountriesQuery), k)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AirportRepository) scalar(ctx context.Context, queryType, query string) (int64, error) {
	var n int64
	err := r.observe(queryType, func() error {
		return r.sqlx.GetContext(ctx, &n, query)
	})
	return n, err
}

// CatalogStats computes the counts and the top k countries from one snapshot,
// so a catalog swap committing mid-way cannot mix two generations.
func (r *AirportRepository) CatalogStats(ctx context.Context, k int) (*dtos.StatsResponse, error) {
	stats := &dtos.StatsResponse{TopCountries: []dtos.CountryCount{}}

	err := r.observe("catalog_stats", func() error {
		var opts *sql.TxOptions
		if r.dialect() == db.DialectPostgres {
			opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
		}
		tx, err := r.sqlx.BeginTxx(ctx, opts)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		counts := []struct {
			dst   *int64
			query string
		}{
			{&stats.Total, countAllQuery},
			{&stats.WithIATA, countIATAQuery},
			{&stats.WithICAO, countICAOQuery},
		}
		for _, c := range counts {
			if err := tx.GetContext(ctx, c.dst, c.query); err != nil {
				return fmt.Errorf("%s: %w", c.query, err)
			}
		}
		if err := tx.SelectContext(ctx, &stats.TopCountries, tx.Rebind(topCountriesQuery), k); err != nil {
			return fmt.Errorf("top countries: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
