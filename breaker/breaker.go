// Package breaker implements a three-state circuit breaker around remote
// dependencies. After a run of consecutive failures the circuit opens and
// calls fail fast for a cool-down window; a single trial call then probes
// whether the dependency has recovered.
//
// One Breaker is constructed per protected dependency and shared by its
// call sites; internal counters are mutex-guarded so sharing across
// goroutines is safe. The breaker is independent of the retry executor —
// composing the two is the caller's decision.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brevity-app/brevity-go/apperr"
	"github.com/brevity-app/brevity-go/metrics"
)

// State is the circuit's current mode.
type State int

const (
	// StateClosed passes calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls until the recovery timeout elapses.
	StateOpen
	// StateHalfOpen lets exactly one trial call through.
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

// ErrOpen marks rejections from an open circuit. Rejections surface as
// SERVER_ERROR-class apperr values wrapping this sentinel; detect them with
// IsOpen. Retrying an open-circuit rejection defeats the breaker, so
// integrators treat it as non-retryable.
var ErrOpen = errors.New("circuit breaker is open")

// IsOpen reports whether err is an open-circuit rejection.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

const (
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 60 * time.Second
)

// Breaker guards a single remote dependency. Counters are owned by the
// Breaker and mutated only inside Execute.
type Breaker struct {
	name string

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	trialInFlight bool

	failureThreshold int
	recoveryTimeout  time.Duration
	clock            Clock
	onStateChange    func(name string, from, to State)
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive-failure count that opens the
// circuit. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithRecoveryTimeout sets the cool-down window before a trial call is
// allowed. Default 60s.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.recoveryTimeout = d
		}
	}
}

// WithClock injects a clock, letting tests drive the recovery timeout.
func WithClock(c Clock) Option {
	return func(b *Breaker) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithOnStateChange registers a hook invoked on every state transition.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// New creates a closed Breaker named after the dependency it protects.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: defaultFailureThreshold,
		recoveryTimeout:  defaultRecoveryTimeout,
		clock:            systemClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	metrics.BreakerState.WithLabelValues(name).Set(float64(b.state))
	return b
}

// Name returns the dependency name this breaker protects.
func (b *Breaker) Name() string { return b.name }

// State returns the circuit's current state. Transitions only happen inside
// Execute, so an open circuit stays open here even after the recovery
// timeout until the next call probes it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Execute runs op through the circuit. An open circuit rejects immediately
// with a SERVER_ERROR-class "service temporarily unavailable" error, unless
// the recovery timeout has elapsed, in which case the circuit goes half-open
// and op runs as the single trial call.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Run(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Run is Execute for operations that return a value.
func Run[T any](ctx context.Context, b *Breaker, op func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := b.allow(); err != nil {
		return zero, err
	}

	result, err := op(ctx)
	b.record(err)
	if err != nil {
		return zero, err
	}
	return result, nil
}

// allow decides whether a call may proceed, performing the open→half-open
// transition when the cool-down has elapsed.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.clock.Now().Sub(b.lastFailure) > b.recoveryTimeout {
			b.transition(StateHalfOpen)
			b.trialInFlight = true
			return nil
		}
		return b.reject()
	case StateHalfOpen:
		// Only one trial call probes the dependency.
		if b.trialInFlight {
			return b.reject()
		}
		b.trialInFlight = true
		return nil
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialInFlight = false

	if err == nil {
		b.failures = 0
		if b.state != StateClosed {
			b.transition(StateClosed)
		}
		return
	}

	b.failures++
	b.lastFailure = b.clock.Now()

	if b.state == StateHalfOpen {
		b.transition(StateOpen)
		return
	}
	if b.failures >= b.failureThreshold && b.state == StateClosed {
		b.transition(StateOpen)
	}
}

// reject builds the fast-failure for an open circuit. Caller holds the lock.
func (b *Breaker) reject() error {
	metrics.BreakerRejectionsTotal.WithLabelValues(b.name).Inc()
	return apperr.Wrap(apperr.CodeServer, "service temporarily unavailable", ErrOpen)
}

// transition moves to a new state. Caller holds the lock.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	metrics.BreakerState.WithLabelValues(b.name).Set(float64(to))
	if b.onStateChange != nil {
		b.onStateChange(b.name, from, to)
	}
}
