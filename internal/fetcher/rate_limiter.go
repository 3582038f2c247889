package fetcher

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает параллельность и частоту запросов для каждого хоста
type RateLimiter struct {
	maxConcurrent int
	rpm           int
	hosts         map[string]*hostLimiter
	mu            sync.Mutex
}

type hostLimiter struct {
	sem     chan struct{} // Semaphore for concurrency
	limiter *rate.Limiter
}

func NewRateLimiter(maxConcurrent, rpm int) *RateLimiter {
	return &RateLimiter{
		maxConcurrent: maxConcurrent,
		rpm:           rpm,
		hosts:         make(map[string]*hostLimiter),
	}
}

func (rl *RateLimiter) forHost(host string) *hostLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.hosts[host]
	if !exists {
		perSecond := rate.Limit(float64(rl.rpm) / 60)
		limiter = &hostLimiter{
			sem:     make(chan struct{}, rl.maxConcurrent),
			limiter: rate.NewLimiter(perSecond, rl.maxConcurrent),
		}
		rl.hosts[host] = limiter
	}
	return limiter
}

// Acquire занимает слот хоста и ждёт токен RPM. Слот освобождается вызовом release.
func (rl *RateLimiter) Acquire(ctx context.Context, host string) (release func(), err error) {
	limiter := rl.forHost(host)

	select {
	case limiter.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := limiter.limiter.Wait(ctx); err != nil {
		<-limiter.sem
		return nil, err
	}

	return func() { <-limiter.sem }, nil
}
