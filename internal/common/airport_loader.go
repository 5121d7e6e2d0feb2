package common

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/models/gorm"
)

const (
	// minCSVFields is the column count of an OpenFlights airports.dat record.
	minCSVFields = 14

	// nullMarker is how the upstream feed spells an absent value.
	nullMarker = `\N`

	maxLineBytes = 1 << 20
)

var (
	// ErrUpstreamFetch marks failures to retrieve the source CSV.
	ErrUpstreamFetch = errors.New("upstream airport data fetch failed")
	// ErrEmptyCatalog is returned when the feed yields no usable records.
	ErrEmptyCatalog = errors.New("no valid airports found after parsing")
)

// CatalogWriter replaces the stored catalog wholesale.
type CatalogWriter interface {
	ReplaceAll(ctx context.Context, airports []gorm.Airport) error
}

// ParseStats summarises one pass over the feed.
type ParseStats struct {
	Lines      int
	Imported   int
	Skipped    int
	Duplicates int
}

// AirportLoaderService fetches the OpenFlights CSV and swaps it into the catalog.
type AirportLoaderService struct {
	repo    CatalogWriter
	dataURL string
	client  *http.Client
	timeout time.Duration
	metrics *metrics.MetricsRegistry
	group   singleflight.Group
}

// NewAirportLoaderService creates a loader. timeout bounds one whole import
// run; a nil client gets a default with the same timeout.
func NewAirportLoaderService(repo CatalogWriter, dataURL string, client *http.Client, timeout time.Duration, metricsReg *metrics.MetricsRegistry) *AirportLoaderService {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if metricsReg == nil {
		metricsReg = metrics.NewNopRegistry()
	}
	return &AirportLoaderService{
		repo:    repo,
		dataURL: dataURL,
		client:  client,
		timeout: timeout,
		metrics: metricsReg,
	}
}

// Import downloads the feed and replaces the catalog with it, returning the
// number of airports stored. Concurrent calls share one run. The run is
// detached from the caller's cancellation, so a dropped request neither
// aborts it nor fails the callers that joined it.
func (s *AirportLoaderService) Import(ctx context.Context) (int, error) {
	v, err, shared := s.group.Do("import", func() (interface{}, error) {
		runCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
			defer cancel()
		}
		return s.importOnce(runCtx)
	})
	if shared {
		logging.Info("Joined in-flight airport import")
	}
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *AirportLoaderService) importOnce(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		s.metrics.ImportDuration.Observe(time.Since(start).Seconds())
	}()

	logging.Info("Starting airport data import", "url", s.dataURL)

	body, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	airports, stats, err := LoadFromCSV(body)
	if err != nil {
		return 0, err
	}
	s.metrics.ImportRecords.WithLabelValues("skipped").Add(float64(stats.Skipped + stats.Duplicates))

	if len(airports) == 0 {
		return 0, ErrEmptyCatalog
	}

	logging.Info("Parsed airport feed",
		"lines", stats.Lines,
		"valid", stats.Imported,
		"skipped", stats.Skipped,
		"duplicates", stats.Duplicates,
	)

	if err := s.repo.ReplaceAll(ctx, airports); err != nil {
		return 0, fmt.Errorf("failed to store airports: %w", err)
	}

	s.metrics.ImportRecords.WithLabelValues("imported").Add(float64(len(airports)))
	logging.Info("Successfully imported airports", "count", len(airports), "duration", time.Since(start).String())
	return len(airports), nil
}

func (s *AirportLoaderService) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.dataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamFetch, resp.StatusCode)
	}
	return resp.Body, nil
}

// LoadFromCSV parses an OpenFlights airports.dat stream. Malformed lines are
// skipped rather than failing the whole feed; the first record wins when an
// id repeats.
func LoadFromCSV(r io.Reader) ([]gorm.Airport, ParseStats, error) {
	var stats ParseStats
	airports := make([]gorm.Airport, 0, 8192)
	seen := make(map[int64]struct{}, 8192)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		airport, ok := parseAirportRecord(parseCSVLine(line))
		if !ok {
			stats.Skipped++
			logging.Debug("Skipping malformed airport record", "line", stats.Lines)
			continue
		}
		if _, dup := seen[airport.ID]; dup {
			stats.Duplicates++
			logging.Warn("Skipping duplicate airport id", "id", airport.ID)
			continue
		}
		seen[airport.ID] = struct{}{}
		airports = append(airports, airport)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("%w: reading body: %v", ErrUpstreamFetch, err)
	}

	stats.Imported = len(airports)
	return airports, stats, nil
}

func parseAirportRecord(fields []string) (gorm.Airport, bool) {
	if len(fields) < minCSVFields {
		return gorm.Airport{}, false
	}

	id := parseInt(fields[0])
	name := cleanField(fields[1])
	// id 0 would collide on the primary key
	if id <= 0 || name == "" {
		return gorm.Airport{}, false
	}

	return gorm.Airport{
		ID:        id,
		Name:      name,
		City:      cleanField(fields[2]),
		Country:   cleanField(fields[3]),
		IATA:      optionalCode(fields[4]),
		ICAO:      optionalCode(fields[5]),
		Latitude:  parseFloat(fields[6]),
		Longitude: parseFloat(fields[7]),
		Altitude:  int(parseInt(fields[8])),
		Timezone:  parseFloat(fields[9]),
		DST:       cleanField(fields[10]),
		TZ:        cleanField(fields[11]),
		Type:      cleanField(fields[12]),
		Source:    cleanField(fields[13]),
	}, true
}

// parseCSVLine splits on commas outside double quotes. Quote characters
// toggle the quoted state and are dropped; there is no "" escape.
func parseCSVLine(line string) []string {
	fields := make([]string, 0, minCSVFields)
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, current.String())
}

func cleanField(field string) string {
	field = strings.TrimPrefix(field, `"`)
	field = strings.TrimSuffix(field, `"`)
	return strings.TrimSpace(field)
}

func optionalCode(field string) *string {
	code := cleanField(field)
	if code == "" || code == nullMarker {
		return nil
	}
	code = strings.ToUpper(code)
	return &code
}

// parseInt falls back to truncating a decimal, then to 0.
func parseInt(field string) int64 {
	field = strings.TrimSpace(field)
	if n, err := strconv.ParseInt(field, 10, 64); err == nil {
		return n
	}
	f := parseFloat(field)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int64(f)
}

func parseFloat(field string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
