package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Sits in front of the Redis audit queue. While Redis is down an enqueue
// fails immediately instead of stalling the request that just committed a
// ledger change, and the audit cron switches to inline audits.
//
//	closed ──(FailureThreshold consecutive failures)──▶ open
//	open   ──(OpenTimeout elapsed)──────────────────────▶ half-open
//	half-open ──(SuccessThreshold successes)────────────▶ closed
//	half-open ──(any failure)───────────────────────────▶ open
//
// In half-open a single probe is in flight at a time; concurrent callers
// are rejected with ErrCircuitOpen until it returns.

type CBState string

const (
	CBClosed   CBState = "closed"
	CBOpen     CBState = "open"
	CBHalfOpen CBState = "half-open"
)

func (s CBState) String() string { return string(s) }

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig returns the settings used for the job queue breaker.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "job_queue",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      30 * time.Second,
	}
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State reports the current state, moving open to half-open once the
// timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// Execute runs fn unless the breaker is open. fn's error is returned as is
// and counted as a failure.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	switch cb.state {
	case CBOpen:
		return false
	case CBHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	wasProbe := cb.state == CBHalfOpen
	if wasProbe {
		cb.probing = false
	}

	if err != nil {
		cb.successes = 0
		cb.failures++
		if wasProbe || cb.failures >= cb.cfg.FailureThreshold {
			cb.openedAt = time.Now()
			cb.transition(CBOpen, err)
		}
		return
	}

	cb.failures = 0
	if wasProbe {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transition(CBClosed, nil)
		}
	}
}

// refresh must be called with mu held.
func (cb *CircuitBreaker) refresh() {
	if cb.state == CBOpen && time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transition(CBHalfOpen, nil)
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to CBState, cause error) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.successes = 0
	cb.probing = false
	if to == CBClosed {
		cb.failures = 0
	}

	ev := log.Info()
	if to == CBOpen {
		ev = log.Warn().Err(cause)
	}
	ev.Str("breaker", cb.cfg.Name).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("circuit breaker state change")
}
