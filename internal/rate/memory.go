package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante in-process (una sola réplica). Los contadores
// expiran solos con la ventana; go-cache limpia los vencidos.
type MemoryLimiter struct {
	c      *gocache.Cache
	mu     sync.Mutex
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	k, ttl := windowKey("", key, l.Now().UTC(), l.Window)

	// Add + IncrementInt64 no es atómico en go-cache: serializamos.
	l.mu.Lock()
	if err := l.c.Add(k, int64(1), ttl); err == nil {
		l.mu.Unlock()
		return result(1, l.Max, ttl, l.Window), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	l.mu.Unlock()
	if err != nil {
		return Result{}, err
	}
	return result(hits, l.Max, ttl, l.Window), nil
}
