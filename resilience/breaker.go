package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is a breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Execute while the breaker is open.
var ErrOpen = errors.New("resilience: circuit open")

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	Name string
	// MaxFailures consecutive failures open the breaker. Zero means 5.
	MaxFailures int
	// Cooldown is how long the breaker stays open before letting a probe
	// through. Zero means 30s.
	Cooldown time.Duration
	// Probes is the number of calls allowed while half-open; that many
	// successes close the breaker again. Zero means 1.
	Probes int
	// OnStateChange runs under the breaker's lock; keep it short.
	OnStateChange func(name string, from, to State)
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Breaker fails calls fast after a run of failures.
//
//	closed --MaxFailures--> open --Cooldown--> half-open --Probes ok--> closed
//	                                           half-open --any failure--> open
type Breaker struct {
	cfg BreakerConfig

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Breaker{cfg: cfg}
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(fn func() error) error {
	if !b.admit() {
		return ErrOpen
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateClosed:
		return true
	case StateHalfOpen:
		if b.inFlight < b.cfg.Probes {
			b.inFlight++
			return true
		}
	}
	return false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	if err != nil {
		b.failures++
		if state == StateHalfOpen || b.failures >= b.cfg.MaxFailures {
			b.openedAt = b.cfg.Now()
			b.transition(StateOpen)
		}
		return
	}

	switch state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.Probes {
			b.transition(StateClosed)
		}
	}
}

// current moves an open breaker to half-open once the cooldown passed.
// Caller holds mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.cfg.Now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.transition(StateHalfOpen)
	}
	return b.state
}

// transition resets the counters for the new state. Caller holds mu.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.inFlight = 0
	b.successes = 0
	if to == StateClosed {
		b.failures = 0
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}
