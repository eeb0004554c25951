package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fairyhunter13/jobfit/internal/config"
	"github.com/fairyhunter13/jobfit/internal/domain"
)

type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedClient) Provider() string { return "fake" }

func (s *scriptedClient) Chat(_ domain.Context, _, _ string, _ int) (string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", nil
}

func TestGuard_CleansReply(t *testing.T) {
	next := &scriptedClient{replies: []string{"```\n**77**\n```"}}
	g := NewGuard(next, nil, nil)

	out, err := g.Chat(context.Background(), "sys", "user", 10)
	require.NoError(t, err)
	assert.Equal(t, "77", out)
	assert.Equal(t, "fake", g.Provider())
}

func TestGuard_OpensBreakerAfterFailures(t *testing.T) {
	boom := errors.New("boom")
	next := &scriptedClient{errs: []error{boom, boom, boom}}
	g := NewGuard(next, nil, NewCircuitBreaker("fake", 2, time.Hour))

	for i := 0; i < 2; i++ {
		_, err := g.Chat(context.Background(), "", "u", 10)
		assert.ErrorIs(t, err, boom)
	}
	_, err := g.Chat(context.Background(), "", "u", 10)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, next.calls, "open circuit must not reach the provider")
}

func TestGuard_CanceledDoesNotTripBreaker(t *testing.T) {
	next := &scriptedClient{errs: []error{context.Canceled, context.Canceled}}
	cb := NewCircuitBreaker("fake", 1, time.Hour)
	g := NewGuard(next, nil, cb)

	_, err := g.Chat(context.Background(), "", "u", 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestGuard_LimiterDeadlineIsRateLimited(t *testing.T) {
	next := &scriptedClient{replies: []string{"1", "2"}}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	g := NewGuard(next, limiter, nil)

	_, err := g.Chat(context.Background(), "", "u", 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Chat(ctx, "", "u", 10)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, next.calls)
}

func TestNew_DisabledReturnsNil(t *testing.T) {
	client, err := New(context.Background(), config.Config{FeatureAIFit: false, AIProvider: config.ProviderOpenAI, OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.Nil(t, client)

	client, err = New(context.Background(), config.Config{FeatureAIFit: true, AIProvider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.Nil(t, client, "missing key disables refinement")
}

func TestNew_OpenAIWrappedInGuard(t *testing.T) {
	client, err := New(context.Background(), config.Config{
		FeatureAIFit:       true,
		AIProvider:         config.ProviderOpenAI,
		OpenAIAPIKey:       "sk-test",
		OpenAIBaseURL:      "http://127.0.0.1:1",
		OpenAIModel:        "gpt-3.5-turbo",
		AITimeout:          time.Second,
		AIRatePerSec:       1,
		AIRateBurst:        1,
		AIBreakerThreshold: 3,
		AIBreakerCooldown:  time.Second,
	})
	require.NoError(t, err)
	require.IsType(t, &Guard{}, client)
	assert.Equal(t, "openai", client.Provider())
}

func TestGuard_Healthy(t *testing.T) {
	next := &scriptedClient{errs: []error{errors.New("boom")}}
	g := NewGuard(next, nil, NewCircuitBreaker("fake", 1, time.Hour))
	require.NoError(t, g.Healthy())

	_, _ = g.Chat(context.Background(), "", "u", 10)
	assert.ErrorIs(t, g.Healthy(), ErrCircuitOpen)
}

func TestGuard_CanceledProbeDoesNotWedgeBreaker(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("fake", 1, time.Millisecond)
	cb.now = func() time.Time { return now }
	next := &scriptedClient{
		errs:    []error{errors.New("boom"), context.Canceled},
		replies: []string{"", "", "81"},
	}
	g := NewGuard(next, nil, cb)

	_, err := g.Chat(context.Background(), "", "u", 10)
	require.Error(t, err)
	assert.ErrorIs(t, g.Healthy(), ErrCircuitOpen)

	now = now.Add(time.Second)
	_, err = g.Chat(context.Background(), "", "u", 10)
	assert.ErrorIs(t, err, context.Canceled)

	out, err := g.Chat(context.Background(), "", "u", 10)
	require.NoError(t, err)
	assert.Equal(t, "81", out)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.NoError(t, g.Healthy())
}

func TestGuard_LimiterTimeoutDuringRecoveryDoesNotWedgeBreaker(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("fake", 1, time.Millisecond)
	cb.now = func() time.Time { return now }
	next := &scriptedClient{errs: []error{errors.New("boom")}, replies: []string{"", "64"}}
	g := NewGuard(next, rate.NewLimiter(rate.Every(time.Hour), 1), cb)

	_, err := g.Chat(context.Background(), "", "u", 10)
	require.Error(t, err)
	now = now.Add(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Chat(ctx, "", "u", 10)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, CircuitOpen, cb.State())

	g.limiter = rate.NewLimiter(rate.Inf, 1)
	out, err := g.Chat(context.Background(), "", "u", 10)
	require.NoError(t, err)
	assert.Equal(t, "64", out)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestGuard_HealthyReportsHalfOpen(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("fake", 1, time.Second)
	cb.now = func() time.Time { return now }
	g := NewGuard(&scriptedClient{}, nil, cb)

	cb.RecordFailure()
	now = now.Add(2 * time.Second)
	require.True(t, cb.Allow())
	require.Equal(t, CircuitHalfOpen, cb.State())
	assert.ErrorIs(t, g.Healthy(), ErrCircuitOpen)
}
