package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider paces completion calls to at most rpm per minute by
// spacing them one interval apart. Waiting respects the caller's context.
type RateLimitedProvider struct {
	provider Provider
	interval time.Duration

	mu     sync.Mutex
	nextAt time.Time
}

func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	return &RateLimitedProvider{
		provider: provider,
		interval: time.Minute / time.Duration(rpm),
	}
}

func (r *RateLimitedProvider) Name() string { return r.provider.Name() }

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// wait claims the next send slot and sleeps until it arrives. Claiming under
// the lock keeps concurrent callers ordered without holding the lock while
// sleeping.
func (r *RateLimitedProvider) wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	slot := r.nextAt
	if slot.Before(now) {
		slot = now
	}
	r.nextAt = slot.Add(r.interval)
	r.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
