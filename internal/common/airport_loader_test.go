package common

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/models/gorm"
)

const sampleFeed = `1,"Goroka Airport","Goroka","Papua New Guinea","GKA","AYGA",-6.081689834590001,145.391998291,5282,10,"U","Pacific/Port_Moresby","airport","OurAirports"
507,"London Heathrow Airport","London","United Kingdom","LHR","EGLL",51.4706,-0.461941,83,0,"E","Europe/London","airport","OurAirports"
5562,"Some Strip, Inc","Nowhere","Canada",\N,"cabc",45.1,-75.2,1000.7,-5,"A","America/Toronto","airport","User"

truncated,line,only
0,"Zero Id","X","Y",\N,\N,0,0,0,0,"U","\N","airport","User"
9,"","X","Y",\N,\N,0,0,0,0,"U","\N","airport","User"
507,"Duplicate Heathrow","London","United Kingdom","LHR","EGLL",51.4706,-0.461941,83,0,"E","Europe/London","airport","OurAirports"
`

type fakeCatalog struct {
	mu       sync.Mutex
	calls    int
	airports []gorm.Airport
	err      error
	delay    time.Duration
}

func (f *fakeCatalog) ReplaceAll(ctx context.Context, airports []gorm.Airport) error {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.airports = airports
	return nil
}

func feedServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseCSVLine_QuotedCommas(t *testing.T) {
	fields := parseCSVLine(`5562,"Some Strip, Inc","Nowhere"`)
	assert.Equal(t, []string{"5562", "Some Strip, Inc", "Nowhere"}, fields)

	assert.Equal(t, []string{"a", "", "b"}, parseCSVLine("a,,b"))
}

func TestLoadFromCSV(t *testing.T) {
	airports, stats, err := LoadFromCSV(strings.NewReader(sampleFeed))
	require.NoError(t, err)

	require.Len(t, airports, 3)
	assert.Equal(t, ParseStats{Lines: 7, Imported: 3, Skipped: 3, Duplicates: 1}, stats)

	goroka := airports[0]
	assert.Equal(t, int64(1), goroka.ID)
	assert.Equal(t, "Goroka Airport", goroka.Name)
	assert.Equal(t, "GKA", *goroka.IATA)
	assert.Equal(t, "AYGA", *goroka.ICAO)
	assert.InDelta(t, -6.0816898, goroka.Latitude, 1e-6)
	assert.Equal(t, 5282, goroka.Altitude)
	assert.Equal(t, float64(10), goroka.Timezone)
	assert.Equal(t, "Pacific/Port_Moresby", goroka.TZ)

	// first occurrence of a repeated id wins
	assert.Equal(t, "London Heathrow Airport", airports[1].Name)

	strip := airports[2]
	assert.Equal(t, "Some Strip, Inc", strip.Name)
	assert.Nil(t, strip.IATA)
	assert.Equal(t, "CABC", *strip.ICAO)
	assert.Equal(t, 1000, strip.Altitude)
	assert.Equal(t, float64(-5), strip.Timezone)
}

func TestParseAirportRecord_BadNumbersDefaultToZero(t *testing.T) {
	a, ok := parseAirportRecord(parseCSVLine(`42,"X","C","K","",\N,north,east,high,tz,"U","\N","airport","User"`))
	require.True(t, ok)
	assert.Nil(t, a.IATA)
	assert.Nil(t, a.ICAO)
	assert.Zero(t, a.Latitude)
	assert.Zero(t, a.Longitude)
	assert.Zero(t, a.Altitude)
	assert.Zero(t, a.Timezone)
}

func TestImport_ReplacesCatalog(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed, nil)
	repo := &fakeCatalog{}
	m := metrics.NewNopRegistry()
	loader := NewAirportLoaderService(repo, srv.URL, nil, 5*time.Second, m)

	n, err := loader.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, repo.airports, 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ImportRecords.WithLabelValues("imported")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ImportRecords.WithLabelValues("skipped")))
}

func TestImport_UpstreamErrorLeavesCatalogUntouched(t *testing.T) {
	srv := feedServer(t, http.StatusInternalServerError, "boom", nil)
	repo := &fakeCatalog{}
	loader := NewAirportLoaderService(repo, srv.URL, nil, 5*time.Second, nil)

	_, err := loader.Import(context.Background())
	require.ErrorIs(t, err, ErrUpstreamFetch)
	assert.Zero(t, repo.calls)
}

func TestImport_UnreachableUpstream(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed, nil)
	url := srv.URL
	srv.Close()

	loader := NewAirportLoaderService(&fakeCatalog{}, url, nil, time.Second, nil)
	_, err := loader.Import(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestImport_EmptyFeedIsAnError(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "\n\nnot,a,record\n", nil)
	repo := &fakeCatalog{}
	loader := NewAirportLoaderService(repo, srv.URL, nil, time.Second, nil)

	_, err := loader.Import(context.Background())
	require.ErrorIs(t, err, ErrEmptyCatalog)
	assert.Zero(t, repo.calls)
}

func TestImport_StoreFailurePropagates(t *testing.T) {
	srv := feedServer(t, http.StatusOK, sampleFeed, nil)
	boom := errors.New("disk full")
	loader := NewAirportLoaderService(&fakeCatalog{err: boom}, srv.URL, nil, time.Second, nil)

	_, err := loader.Import(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUpstreamFetch)
}

func TestImport_ConcurrentCallsShareOneRun(t *testing.T) {
	var hits int32
	srv := feedServer(t, http.StatusOK, sampleFeed, &hits)
	repo := &fakeCatalog{delay: 200 * time.Millisecond}
	loader := NewAirportLoaderService(repo, srv.URL, nil, 5*time.Second, nil)

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := loader.Import(context.Background())
			assert.NoError(t, err)
			results[i] = n
		}(i)
	}
	wg.Wait()

	for _, n := range results {
		assert.Equal(t, 3, n)
	}
	assert.Less(t, atomic.LoadInt32(&hits), int32(5))
}

func TestImport_CallerCancellationDoesNotAbortRun(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)

	repo := &fakeCatalog{}
	loader := NewAirportLoaderService(repo, srv.URL, nil, 5*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := loader.Import(ctx)
		done <- result{n, err}
	}()

	<-arrived
	cancel()
	close(release)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, 3, res.n)
	assert.Equal(t, 1, repo.calls)
}

func TestImport_RunIsBoundedByTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	repo := &fakeCatalog{}
	loader := NewAirportLoaderService(repo, srv.URL, nil, 100*time.Millisecond, nil)

	_, err := loader.Import(context.Background())
	require.ErrorIs(t, err, ErrUpstreamFetch)
	assert.Zero(t, repo.calls)
}
