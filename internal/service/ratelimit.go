package service

import (
	"log"
	"sync"
	"time"
)

// RateLimiter — счётчик с фиксированным окном на пользователя; ограничивает
// дорогую операцию генерации PDF
type RateLimiter struct {
	mu      sync.Mutex
	entries map[int64]*rateLimitEntry
	max     int
	window  time.Duration
}

type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		entries: make(map[int64]*rateLimitEntry),
		max:     maxRequests,
		window:  window,
	}
}

// Allow учитывает запрос; при отказе возвращает время до сброса окна
func (l *RateLimiter) Allow(userID int64) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[userID]

	if !ok || !now.Before(entry.resetTime) {
		l.entries[userID] = &rateLimitEntry{count: 1, resetTime: now.Add(l.window)}
		return true, 0
	}

	if entry.count < l.max {
		entry.count++
		return true, 0
	}

	return false, time.Until(entry.resetTime)
}

// Cleanup выбрасывает просроченные окна
func (l *RateLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	removed := 0
	for userID, entry := range l.entries {
		if !now.Before(entry.resetTime) {
			delete(l.entries, userID)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("Rate limiter cleanup removed %d expired entries", removed)
	}
}
