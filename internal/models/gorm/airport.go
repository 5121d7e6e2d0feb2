package gorm

import (
	"strings"

	gormlib "gorm.io/gorm"
)

// Airport is a row of the airport catalog. IDs come from the upstream feed and
// are stable across imports, so the primary key is never auto-generated.
//
// NameFold, CityFold and CountryFold hold the Unicode lower-case form of the
// matching column. Substring search runs against them so case folding is the
// same on every dialect; SQLite's LOWER() only folds ASCII.
type Airport struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string  `gorm:"column:name;type:text;not null"`
	City        string  `gorm:"column:city;type:text;not null"`
	Country     string  `gorm:"column:country;type:text;not null"`
	IATA        *string `gorm:"column:iata;type:text"`
	ICAO        *string `gorm:"column:icao;type:text"`
	Latitude    float64 `gorm:"column:latitude;type:double precision;not null"`
	Longitude   float64 `gorm:"column:longitude;type:double precision;not null"`
	Altitude    int     `gorm:"column:altitude;type:integer;not null"`
	Timezone    float64 `gorm:"column:timezone;type:double precision;not null"`
	DST         string  `gorm:"column:dst;type:text;not null"`
	TZ          string  `gorm:"column:tz;type:text;not null"`
	Type        string  `gorm:"column:type;type:text;not null"`
	Source      string  `gorm:"column:source;type:text;not null"`
	NameFold    string  `gorm:"column:name_fold;type:text;not null;default:''"`
	CityFold    string  `gorm:"column:city_fold;type:text;not null;default:''"`
	CountryFold string  `gorm:"column:country_fold;type:text;not null;default:''"`
}

// TableName specifies the table name for GORM
func (Airport) TableName() string {
	return "airports"
}

// BeforeSave keeps the folded columns in step with the displayed ones.
func (a *Airport) BeforeSave(*gormlib.DB) error {
	a.Fold()
	return nil
}

// Fold fills the folded search columns from Name, City and Country.
func (a *Airport) Fold() {
	a.NameFold = strings.ToLower(a.Name)
	a.CityFold = strings.ToLower(a.City)
	a.CountryFold = strings.ToLower(a.Country)
}
