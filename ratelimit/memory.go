package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter 는 프로세스 하나를 전제로 한 인메모리 고정 윈도우 제한기다.
// 애플리케이션이 재시작되면 카운터가 초기화된다.
type MemoryLimiter struct {
	mu sync.Mutex

	limit   int
	window  time.Duration
	windows map[string]*fixedWindow
	now     func() time.Time
}

type fixedWindow struct {
	start time.Time
	count int
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: map[string]*fixedWindow{},
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		l.sweep(now)
		w = &fixedWindow{start: now}
		l.windows[key] = w
	}
	resetAt := w.start.Add(l.window)

	if w.count >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: resetAt}, nil
	}
	w.count++
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - w.count, ResetAt: resetAt}, nil
}

// sweep 는 만료된 윈도우를 정리한다. 호출자는 mu 를 잡고 있어야 한다.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, k)
		}
	}
}
