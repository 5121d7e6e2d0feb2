package gorm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestAirport_CoordinatesAreDoublePrecision(t *testing.T) {
	s, err := schema.Parse(&Airport{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	for _, name := range []string{"latitude", "longitude", "timezone"} {
		f := s.LookUpField(name)
		require.NotNil(t, f, name)
		assert.Equal(t, schema.DataType("double precision"), f.DataType, name)
	}
}

func TestAirport_Fold(t *testing.T) {
	a := Airport{Name: "Örebro Airport", City: "ÖREBRO", Country: "Sweden"}
	require.NoError(t, a.BeforeSave(nil))

	assert.Equal(t, "örebro airport", a.NameFold)
	assert.Equal(t, "örebro", a.CityFold)
	assert.Equal(t, "sweden", a.CountryFold)
}
