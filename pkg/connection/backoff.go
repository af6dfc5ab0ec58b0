package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Default retry parameters for socket open attempts.
const (
	// InitialBackoff is the initial retry delay.
	InitialBackoff = 1 * time.Second

	// MaxBackoff is the maximum retry delay.
	MaxBackoff = 60 * time.Second

	// BackoffMultiplier is the factor by which backoff increases.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of base delay.
	JitterFactor = 0.25

	// DefaultMaxAttempts bounds the open-attempt retry loop.
	DefaultMaxAttempts = 99
)

// RetryConfig tunes the open-attempt retry loop.
type RetryConfig struct {
	// MaxAttempts bounds the number of open attempts (0 = default).
	MaxAttempts int

	// InitialDelay is the first backoff delay.
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor.
	Multiplier float64

	// Jitter is the maximum jitter as a fraction of the base delay.
	// Zero selects the default; a negative value disables jitter.
	Jitter float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: InitialBackoff,
		MaxDelay:     MaxBackoff,
		Multiplier:   BackoffMultiplier,
		Jitter:       JitterFactor,
	}
}

// withDefaults fills zero fields with the default values.
func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = InitialBackoff
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = MaxBackoff
	}
	if c.Multiplier <= 1 {
		c.Multiplier = BackoffMultiplier
	}
	if c.Jitter == 0 {
		c.Jitter = JitterFactor
	} else if c.Jitter < 0 {
		c.Jitter = 0
	}
	return c
}

// Backoff calculates exponential backoff delays with jitter.
type Backoff struct {
	mu sync.Mutex

	// Current backoff delay (before jitter)
	current time.Duration

	// Configuration
	max        time.Duration
	multiplier float64
	jitter     float64

	// Random source for jitter
	rng *rand.Rand
}

// NewBackoff creates a backoff calculator from a retry configuration.
func NewBackoff(cfg RetryConfig) *Backoff {
	cfg = cfg.withDefaults()
	return &Backoff{
		current:    cfg.InitialDelay,
		max:        cfg.MaxDelay,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next backoff delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// addJitter adds random jitter to a delay.
func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	jitterAmount := time.Duration(float64(d) * b.jitter * b.rng.Float64())
	return d + jitterAmount
}
