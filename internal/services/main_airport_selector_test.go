package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyatlas/airports/internal/models/dtos"
)

type stubAdvisor struct {
	pick  func(candidates []dtos.AirportResponse) (int, error)
	calls int32
}

func (s *stubAdvisor) ChooseIndex(ctx context.Context, candidates []dtos.AirportResponse) (int, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.pick(candidates)
}

func fixedIndex(i int) *stubAdvisor {
	return &stubAdvisor{pick: func([]dtos.AirportResponse) (int, error) { return i, nil }}
}

func airport(id int64, name, city, country string) dtos.AirportResponse {
	return dtos.AirportResponse{ID: id, Name: name, City: city, Country: country}
}

func selectorInput() []dtos.AirportResponse {
	return []dtos.AirportResponse{
		airport(1, "Gatwick", "London", "United Kingdom"),
		airport(2, "JFK International", "New York", "United States"),
		airport(3, "Heathrow", "london", "united kingdom"),
		airport(4, "LaGuardia", "New York", "United States"),
		airport(5, "London International", "London", "Canada"),
	}
}

func ids(airports []dtos.AirportResponse) []int64 {
	out := make([]int64, 0, len(airports))
	for _, a := range airports {
		out = append(out, a.ID)
	}
	return out
}

func TestSelect_NoAdvisorPicksFirstPerGroup(t *testing.T) {
	s := NewMainAirportSelector(nil, time.Second, 2)

	got := s.Select(context.Background(), selectorInput())
	assert.Equal(t, []int64{1, 2, 5}, ids(got))

	// deterministic
	assert.Equal(t, got, s.Select(context.Background(), selectorInput()))
}

func TestSelect_AdvisorChoiceIsUsed(t *testing.T) {
	adv := fixedIndex(1)
	s := NewMainAirportSelector(adv, time.Second, 2)

	got := s.Select(context.Background(), selectorInput())
	assert.Equal(t, []int64{3, 4, 5}, ids(got))
	// singleton groups never reach the advisor
	assert.Equal(t, int32(2), atomic.LoadInt32(&adv.calls))
}

func TestSelect_AdvisorFailuresFallBack(t *testing.T) {
	cases := map[string]*stubAdvisor{
		"error":        {pick: func([]dtos.AirportResponse) (int, error) { return 0, errors.New("quota") }},
		"negative":     fixedIndex(-1),
		"out of range": fixedIndex(7),
	}
	for name, adv := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewMainAirportSelector(adv, time.Second, 2)
			got := s.Select(context.Background(), selectorInput())
			assert.Equal(t, []int64{1, 2, 5}, ids(got))
		})
	}
}

func TestSelect_SlowAdvisorIsCutOffPerCall(t *testing.T) {
	adv := &blockingAdvisor{}
	s := NewMainAirportSelector(adv, 20*time.Millisecond, 4)

	start := time.Now()
	got := s.Select(context.Background(), selectorInput())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []int64{1, 2, 5}, ids(got))
}

type blockingAdvisor struct{}

func (blockingAdvisor) ChooseIndex(ctx context.Context, _ []dtos.AirportResponse) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestSelect_BoundedParallelism(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0
	adv := &stubAdvisor{pick: func([]dtos.AirportResponse) (int, error) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return 0, nil
	}}

	var input []dtos.AirportResponse
	for i := 0; i < 20; i++ {
		city := string(rune('A' + i))
		input = append(input, airport(int64(2*i), "One", city, "K"), airport(int64(2*i+1), "Two", city, "K"))
	}

	s := NewMainAirportSelector(adv, time.Second, 3)
	got := s.Select(context.Background(), input)
	require.Len(t, got, 20)
	assert.LessOrEqual(t, peak, 3)
	// output keeps first-seen group order
	for i, a := range got {
		assert.Equal(t, int64(2*i), a.ID)
	}
}

func TestSelect_Empty(t *testing.T) {
	s := NewMainAirportSelector(fixedIndex(0), time.Second, 2)
	assert.Empty(t, s.Select(context.Background(), nil))
}

func TestSelector_MainForCity(t *testing.T) {
	candidates := []dtos.AirportResponse{
		airport(1, "JFK International", "New York", "United States"),
		airport(2, "LaGuardia", "New York", "United States"),
		airport(3, "York Airfield", "York", "United Kingdom"),
		airport(4, "Heathrow", "London", "United Kingdom"),
	}
	s := NewMainAirportSelector(nil, time.Second, 2)

	// "york" is contained in "new york" and "york"
	got := s.MainForCity(context.Background(), "york", candidates)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	// "new york city" contains "new york" but not the other way around
	got = s.MainForCity(context.Background(), "New York City", candidates)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)

	got = s.MainForCity(context.Background(), "LONDON", candidates)
	require.NotNil(t, got)
	assert.Equal(t, int64(4), got.ID)

	assert.Nil(t, s.MainForCity(context.Background(), "paris", candidates))
	assert.Nil(t, s.MainForCity(context.Background(), "paris", nil))
}

func TestMainForCity_AdvisorSeesWholeFilteredList(t *testing.T) {
	var seen int
	adv := &stubAdvisor{pick: func(c []dtos.AirportResponse) (int, error) {
		seen = len(c)
		return 2, nil
	}}
	candidates := []dtos.AirportResponse{
		airport(1, "JFK International", "New York", "United States"),
		airport(2, "LaGuardia", "New York", "United States"),
		airport(3, "York Airfield", "York", "United Kingdom"),
	}
	s := NewMainAirportSelector(adv, time.Second, 2)

	got := s.MainForCity(context.Background(), "york", candidates)
	require.NotNil(t, got)
	assert.Equal(t, 3, seen)
	assert.Equal(t, int64(3), got.ID)
}
