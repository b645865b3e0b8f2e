package rate

import (
	"context"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por key, en proceso. Rellena max tokens
// por window con ráfaga max. Las keys sin uso por más de 3 ventanas se
// descartan en el próximo Allow.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   xrate.Limit
	burst   int
	idle    time.Duration
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	lim  *xrate.Limiter
	seen time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		limit:   xrate.Every(window / time.Duration(max)),
		burst:   max,
		idle:    3 * window,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: xrate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, RetryAfter: delay}, nil
	}
	return Result{
		Allowed:   true,
		Remaining: int64(b.lim.TokensAt(now)),
	}, nil
}

// Len devuelve la cantidad de keys con bucket vivo.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < l.idle {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.idle {
			delete(l.buckets, k)
		}
	}
	l.swept = now
}
