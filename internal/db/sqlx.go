package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// WrapSQLX exposes the GORM connection pool through sqlx for hand-written
// aggregate queries. Both handles share the same *sql.DB.
func WrapSQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlx.NewDb(sqlDB, driverName(db.Dialector.Name())), nil
}

// driverName maps a GORM dialect to the database/sql driver name sqlx uses to
// pick its bindvar style.
func driverName(dialect string) string {
	switch dialect {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite3"
	}
}
