package resilience

import (
	"sync"
	"time"
)

// Bucket is a token bucket: it holds up to Burst tokens and refills at
// Rate tokens per second. Not safe for concurrent use on its own;
// KeyedLimiter guards its buckets.
type Bucket struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
}

// NewBucket returns a full bucket.
func NewBucket(rate float64, burst int, now time.Time) *Bucket {
	return &Bucket{rate: rate, burst: float64(burst), tokens: float64(burst), last: now}
}

// Take removes one token if available.
func (b *Bucket) Take(now time.Time) bool {
	b.refill(now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Full reports whether the bucket has refilled completely.
func (b *Bucket) Full(now time.Time) bool {
	b.refill(now)
	return b.tokens >= b.burst
}

func (b *Bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.burst, b.tokens+elapsed*b.rate)
		b.last = now
	}
}

// KeyedLimiter keeps one Bucket per key.
type KeyedLimiter struct {
	rate  float64
	burst int
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*Bucket
	lastSweep time.Time
}

// sweepEvery is how often full buckets are dropped.
const sweepEvery = 5 * time.Minute

// PerMinute allows n calls per key per minute, all of which may arrive at
// once. now may be nil.
func PerMinute(n int, now func() time.Time) *KeyedLimiter {
	if now == nil {
		now = time.Now
	}
	return &KeyedLimiter{
		rate:    float64(n) / 60,
		burst:   n,
		now:     now,
		buckets: make(map[string]*Bucket),
	}
}

// Allow takes a token from key's bucket.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > sweepEvery {
		l.sweep(now)
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = NewBucket(l.rate, l.burst, now)
		l.buckets[key] = b
	}
	return b.Take(now)
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep forgets keys whose bucket is full again; a new bucket would be
// identical. Caller holds mu.
func (l *KeyedLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if b.Full(now) {
			delete(l.buckets, key)
		}
	}
}
