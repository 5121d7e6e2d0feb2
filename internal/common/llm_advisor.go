package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"skyatlas/airports/internal/config"
	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/models/dtos"
)

const (
	advisorBreakerName    = "openai-main-airport"
	advisorTripAfter      = 5
	advisorOpenTimeout    = 30 * time.Second
	advisorMaxTokens      = 10
	advisorTemperature    = 0.1
	advisorHalfOpenProbes = 1
)

// ErrUnparseableChoice is returned when the model reply is not an index.
var ErrUnparseableChoice = errors.New("advisor reply is not an integer index")

// OpenAIAdvisor asks a chat model which of several same-city airports is the
// primary one. It is safe for concurrent use.
type OpenAIAdvisor struct {
	client  *openai.Client
	model   string
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[int]
	metrics *metrics.MetricsRegistry
}

// NewOpenAIAdvisor returns nil when no API key is configured; callers treat a
// nil advisor as "always pick the first candidate".
func NewOpenAIAdvisor(cfg config.LLMConfig, metricsReg *metrics.MetricsRegistry) *OpenAIAdvisor {
	if !cfg.Enabled() {
		logging.Warn("OpenAI API key not configured, main-airport selection falls back to first candidate")
		return nil
	}
	if metricsReg == nil {
		metricsReg = metrics.NewNopRegistry()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	concurrency := max(cfg.MaxConcurrency, 1)

	return &OpenAIAdvisor{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), concurrency),
		cb: gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
			Name:        advisorBreakerName,
			MaxRequests: advisorHalfOpenProbes,
			Timeout:     advisorOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= advisorTripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
		metrics: metricsReg,
	}
}

// ChooseIndex returns the 0-based index of the main airport among candidates.
// The caller bounds the call with ctx and validates the range.
func (a *OpenAIAdvisor) ChooseIndex(ctx context.Context, candidates []dtos.AirportResponse) (int, error) {
	start := time.Now()
	idx, err := a.choose(ctx, candidates)
	a.metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case errors.Is(err, ErrUnparseableChoice):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	a.metrics.LLMRequestsTotal.WithLabelValues(outcome).Inc()
	return idx, err
}

func (a *OpenAIAdvisor) choose(ctx context.Context, candidates []dtos.AirportResponse) (int, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer a.sem.Release(1)

	if err := a.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	return a.cb.Execute(func() (int, error) {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: BuildMainAirportPrompt(candidates)},
			},
			MaxTokens:   advisorMaxTokens,
			Temperature: advisorTemperature,
		})
		if err != nil {
			return 0, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return 0, fmt.Errorf("%w: empty choices", ErrUnparseableChoice)
		}
		return ParseChoice(resp.Choices[0].Message.Content)
	})
}

// BuildMainAirportPrompt renders the candidate list. Output depends only on
// the candidates and their order.
func BuildMainAirportPrompt(candidates []dtos.AirportResponse) string {
	var b strings.Builder
	b.WriteString("You are an aviation expert. Given the following airports in the same city, ")
	b.WriteString("identify which one is the MAIN/PRIMARY commercial airport that most travelers would use.\n\n")
	b.WriteString("Consider these factors:\n")
	b.WriteString("1. International vs domestic airports\n")
	b.WriteString("2. Size and passenger volume (inferred from name)\n")
	b.WriteString("3. IATA code presence (airports with IATA codes are usually more significant)\n")
	b.WriteString("4. Airport type\n")
	b.WriteString("5. Common naming patterns (International, Central, Main, etc.)\n\n")
	b.WriteString("Airports:\n")
	for i, c := range candidates {
		iata := "No IATA"
		if c.IATA != nil && *c.IATA != "" {
			iata = *c.IATA
		}
		fmt.Fprintf(&b, "%d: %s (%s) - %s, %s - Type: %s\n", i, c.Name, iata, c.City, c.Country, c.Type)
	}
	b.WriteString("\nRespond with ONLY the index number (0, 1, 2, etc.) of the main airport. No explanation needed.")
	return b.String()
}

// ParseChoice reads a bare decimal index, tolerating surrounding whitespace
// and a trailing period.
func ParseChoice(reply string) (int, error) {
	s := strings.TrimSuffix(strings.TrimSpace(reply), ".")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableChoice, reply)
	}
	return n, nil
}
