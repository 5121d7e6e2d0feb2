package repositories

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"skyatlas/airports/internal/db"
	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

const (
	liveTable   = "airports"
	shadowTable = "airports_shadow"

	// ReplaceBatchSize is the number of rows staged per INSERT.
	ReplaceBatchSize = 1000
)

var catalogIndexes = []struct {
	name    string
	columns string
}{
	{"idx_airports_name_id", "name, id"},
	{"idx_airports_iata", "iata"},
	{"idx_airports_icao", "icao"},
	{"idx_airports_city", "city"},
	{"idx_airports_country", "country"},
}

// EnsureSchema creates the airports table and its indexes if missing.
func (r *AirportRepository) EnsureSchema(ctx context.Context) error {
	tx := r.db.WithContext(ctx)
	if err := tx.AutoMigrate(&gorm.Airport{}); err != nil {
		return fmt.Errorf("failed to migrate airports: %w", err)
	}
	if err := backfillFolds(tx); err != nil {
		return err
	}
	return createIndexes(tx)
}

// backfillFolds fills the folded search columns of rows written before those
// columns existed.
func backfillFolds(tx *gormlib.DB) error {
	var stale []gorm.Airport
	fixed := 0
	write := tx.Session(&gormlib.Session{NewDB: true})
	err := tx.Where("name_fold = '' AND name <> ''").
		FindInBatches(&stale, ReplaceBatchSize, func(_ *gormlib.DB, _ int) error {
			for i := range stale {
				if err := write.Save(&stale[i]).Error; err != nil {
					return err
				}
			}
			fixed += len(stale)
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("failed to backfill folded columns: %w", err)
	}
	if fixed > 0 {
		logging.Info("Backfilled folded search columns", "airports", fixed)
	}
	return nil
}

// ReplaceAll swaps the whole catalog for airports. Rows are staged into a
// shadow table first; the live table is only touched by the final
// transaction, which drops it and renames the shadow into place. Readers see
// either the old catalog or the new one, never a mix or an empty table.
func (r *AirportRepository) ReplaceAll(ctx context.Context, airports []gorm.Airport) error {
	return r.observe("replace_all", func() error {
		tx := r.db.WithContext(ctx)

		// leftover from an interrupted import
		if err := tx.Migrator().DropTable(shadowTable); err != nil {
			return fmt.Errorf("failed to drop stale shadow table: %w", err)
		}
		if err := tx.Table(shadowTable).Migrator().CreateTable(&gorm.Airport{}); err != nil {
			return fmt.Errorf("failed to create shadow table: %w", err)
		}

		swapped := false
		defer func() {
			if swapped {
				return
			}
			// ctx may already be cancelled; cleanup must still run
			if err := r.db.Migrator().DropTable(shadowTable); err != nil {
				logging.Warn("Failed to drop shadow table", "error", err.Error())
			}
		}()

		for start := 0; start < len(airports); start += ReplaceBatchSize {
			end := min(start+ReplaceBatchSize, len(airports))
			if err := tx.Table(shadowTable).Create(airports[start:end]).Error; err != nil {
				return fmt.Errorf("failed to stage airports %d-%d: %w", start, end, err)
			}
			logging.Debug("Staged airports", "staged", end, "total", len(airports))
		}

		err := tx.Transaction(func(swap *gormlib.DB) error {
			stmts := []string{
				"DROP TABLE IF EXISTS " + pq.QuoteIdentifier(liveTable),
				fmt.Sprintf("ALTER TABLE %s RENAME TO %s", pq.QuoteIdentifier(shadowTable), pq.QuoteIdentifier(liveTable)),
			}
			if r.dialect() == db.DialectPostgres {
				// keep the primary key name free for the next shadow table
				stmts = append(stmts, fmt.Sprintf("ALTER INDEX %s RENAME TO %s",
					pq.QuoteIdentifier(shadowTable+"_pkey"), pq.QuoteIdentifier(liveTable+"_pkey")))
			}
			for _, stmt := range stmts {
				if err := swap.Exec(stmt).Error; err != nil {
					return fmt.Errorf("swap %q: %w", stmt, err)
				}
			}
			return createIndexes(swap)
		})
		if err != nil {
			return fmt.Errorf("failed to swap catalog: %w", err)
		}

		swapped = true
		logging.Info("Catalog replaced", "airports", len(airports))
		return nil
	})
}

func createIndexes(tx *gormlib.DB) error {
	for _, idx := range catalogIndexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			pq.QuoteIdentifier(idx.name), pq.QuoteIdentifier(liveTable), idx.columns)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
