package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"rag-chatbot/config"
	"rag-chatbot/internal/models"
)

// GuardedFactory wraps adapters from another factory with a shared
// per-provider circuit breaker and rate limiter
type GuardedFactory struct {
	next     Factory
	logger   *logrus.Logger
	mu       sync.Mutex
	breakers map[Provider]*gobreaker.CircuitBreaker
	limiters map[Provider]*rate.Limiter
	cfg      config.LLMConfig
}

// NewGuardedFactory creates a guarded factory around next
func NewGuardedFactory(next Factory, cfg config.LLMConfig, logger *logrus.Logger) *GuardedFactory {
	return &GuardedFactory{
		next:     next,
		logger:   logger,
		breakers: make(map[Provider]*gobreaker.CircuitBreaker),
		limiters: make(map[Provider]*rate.Limiter),
		cfg:      cfg,
	}
}

func (f *GuardedFactory) New(provider Provider, apiKey string) (Adapter, error) {
	inner, err := f.next.New(provider, apiKey)
	if err != nil {
		return nil, err
	}
	breaker, limiter := f.guards(provider)
	return &guardedAdapter{inner: inner, breaker: breaker, limiter: limiter}, nil
}

// BreakerStates reports the circuit breaker state of every provider.
// Providers that were never called are closed.
func (f *GuardedFactory) BreakerStates() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := make(map[string]string, len(Providers))
	for _, p := range Providers {
		state := gobreaker.StateClosed
		if breaker, ok := f.breakers[p]; ok {
			state = breaker.State()
		}
		states[p.String()] = state.String()
	}
	return states
}

func (f *GuardedFactory) guards(provider Provider) (*gobreaker.CircuitBreaker, *rate.Limiter) {
	f.mu.Lock()
	defer f.mu.Unlock()

	breaker, ok := f.breakers[provider]
	if !ok {
		threshold := f.cfg.BreakerThreshold
		if threshold == 0 {
			threshold = 5
		}
		breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        provider.String(),
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     f.cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// a bad key or quota belongs to one caller, not to the provider
			IsSuccessful: func(err error) bool {
				if err == nil || errors.Is(err, context.Canceled) {
					return true
				}
				kind := ClassifyError(provider, err).Kind
				return kind == models.KindAuth || kind == models.KindQuotaExceeded
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				f.logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
			},
		})
		f.breakers[provider] = breaker
	}

	limiter, ok := f.limiters[provider]
	if !ok {
		rpm := f.cfg.RequestsPerMin
		if rpm <= 0 {
			limiter = rate.NewLimiter(rate.Inf, 0)
		} else {
			burst := rpm / 10
			if burst < 1 {
				burst = 1
			}
			limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
		}
		f.limiters[provider] = limiter
	}

	return breaker, limiter
}

type guardedAdapter struct {
	inner   Adapter
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func (a *guardedAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// the limiter gives up early when the wait would outlive the deadline
		return "", context.DeadlineExceeded
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.inner.Generate(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
