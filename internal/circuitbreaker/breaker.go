// Package circuitbreaker is the pre-trade admission gate: per-market,
// aggregate, daily-loss, and consecutive-error limits, with a cooldown
// re-arm.
package circuitbreaker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TripReason enumerates why the breaker rejected an admission or halted.
type TripReason string

const (
	ReasonNone                 TripReason = ""
	ReasonHalted               TripReason = "halted"
	ReasonMaxPositionPerMarket TripReason = "MaxPositionPerMarket"
	ReasonMaxTotalPosition     TripReason = "MaxTotalPosition"
	ReasonMaxDailyLoss         TripReason = "MaxDailyLoss"
	ReasonConsecutiveErrors    TripReason = "ConsecutiveErrors"
)

// TripError is returned by CanExecute when admission is rejected.
type TripError struct {
	Reason TripReason
}

func (e *TripError) Error() string {
	return fmt.Sprintf("circuit breaker: rejected (%s)", e.Reason)
}

// Config holds the breaker's limits. Every field is validated by New.
type Config struct {
	MaxPositionPerMarket int
	MaxTotalPosition     int
	MaxDailyLoss         float64
	MaxConsecutiveErrors int
	CooldownSecs         int
	Enabled              bool
	Logger               *zap.Logger
}

func (c *Config) validate() error {
	if c.Logger == nil {
		return fmt.Errorf("circuitbreaker: Logger is required")
	}
	if c.MaxPositionPerMarket <= 0 {
		return fmt.Errorf("circuitbreaker: MaxPositionPerMarket must be positive, got %d", c.MaxPositionPerMarket)
	}
	if c.MaxTotalPosition <= 0 {
		return fmt.Errorf("circuitbreaker: MaxTotalPosition must be positive, got %d", c.MaxTotalPosition)
	}
	if c.MaxTotalPosition < c.MaxPositionPerMarket {
		return fmt.Errorf("circuitbreaker: MaxTotalPosition (%d) must be >= MaxPositionPerMarket (%d)",
			c.MaxTotalPosition, c.MaxPositionPerMarket)
	}
	if c.MaxDailyLoss <= 0 {
		return fmt.Errorf("circuitbreaker: MaxDailyLoss must be positive, got %f", c.MaxDailyLoss)
	}
	if c.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("circuitbreaker: MaxConsecutiveErrors must be positive, got %d", c.MaxConsecutiveErrors)
	}
	if c.CooldownSecs <= 0 {
		return fmt.Errorf("circuitbreaker: CooldownSecs must be positive, got %d", c.CooldownSecs)
	}
	return nil
}

// Status is a snapshot of the breaker's mutable state, safe to read
// concurrently.
type Status struct {
	Halted            bool
	TripReason        TripReason
	HaltedUntil       time.Time
	TotalPosition     int
	DailyRealizedPnL  float64
	ConsecutiveErrors int
}

// Breaker is the pre-trade admission gate.
type Breaker struct {
	cfg Config

	enabled atomic.Bool

	mu                sync.Mutex
	perMarketPosition map[string]int
	totalPosition     int
	dailyRealizedPnL  float64
	consecutiveErrors int
	halted            bool
	tripReason        TripReason
	haltedUntil       time.Time
}

// New constructs a Breaker from a validated Config.
func New(cfg Config) (*Breaker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := &Breaker{
		cfg:               cfg,
		perMarketPosition: make(map[string]int),
	}
	b.enabled.Store(cfg.Enabled)
	return b, nil
}

// IsTradingAllowed is the short-circuit read used on hot paths that only
// need a yes/no answer. It is lock-free when the breaker is disabled and
// takes the breaker's mutex otherwise.
func (b *Breaker) IsTradingAllowed() bool {
	if !b.enabled.Load() {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.isHaltedLocked(time.Now())
}

// CanExecute evaluates the admission rules in order and returns the first
// failing reason, or nil if the request is admitted.
func (b *Breaker) CanExecute(pairID string, contracts int) error {
	if !b.enabled.Load() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if b.isHaltedLocked(now) {
		return &TripError{Reason: b.tripReason}
	}

	if b.perMarketPosition[pairID]+contracts > b.cfg.MaxPositionPerMarket {
		return &TripError{Reason: ReasonMaxPositionPerMarket}
	}

	if b.totalPosition+contracts > b.cfg.MaxTotalPosition {
		return &TripError{Reason: ReasonMaxTotalPosition}
	}

	if -b.dailyRealizedPnL >= b.cfg.MaxDailyLoss {
		b.tripLocked(ReasonMaxDailyLoss, now)
		return &TripError{Reason: ReasonMaxDailyLoss}
	}

	return nil
}

// RecordSuccess applies the post-trade accounting for a completed round.
func (b *Breaker) RecordSuccess(pairID string, yesContracts, noContracts int, realizedDollars float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	added := yesContracts + noContracts
	b.perMarketPosition[pairID] += added
	b.totalPosition += added
	b.dailyRealizedPnL += realizedDollars
	b.consecutiveErrors = 0

	CircuitBreakerTotalPosition.Set(float64(b.totalPosition))
	CircuitBreakerDailyPnL.Set(b.dailyRealizedPnL)
}

// RecordError bumps the consecutive error counter and trips the breaker
// once it reaches the configured threshold.
func (b *Breaker) RecordError() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveErrors++
	CircuitBreakerConsecutiveErrors.Set(float64(b.consecutiveErrors))

	if b.enabled.Load() && b.consecutiveErrors >= b.cfg.MaxConsecutiveErrors {
		b.tripLocked(ReasonConsecutiveErrors, time.Now())
	}
}

// Reset clears the halt, the trip reason, the cooldown and the consecutive
// error counter, re-arming the breaker. Position counts and the daily
// realized P&L are kept.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.halted = false
	b.tripReason = ReasonNone
	b.haltedUntil = time.Time{}
	b.consecutiveErrors = 0
	b.cfg.Logger.Info("circuit-breaker-reset")
}

// Status returns a snapshot of the breaker's current state.
func (b *Breaker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Status{
		Halted:            b.halted,
		TripReason:        b.tripReason,
		HaltedUntil:       b.haltedUntil,
		TotalPosition:     b.totalPosition,
		DailyRealizedPnL:  b.dailyRealizedPnL,
		ConsecutiveErrors: b.consecutiveErrors,
	}
}

func (b *Breaker) isHaltedLocked(now time.Time) bool {
	if !b.halted {
		return false
	}
	return now.Before(b.haltedUntil)
}

func (b *Breaker) tripLocked(reason TripReason, now time.Time) {
	b.halted = true
	b.tripReason = reason
	b.haltedUntil = now.Add(time.Duration(b.cfg.CooldownSecs) * time.Second)

	CircuitBreakerTripsTotal.WithLabelValues(string(reason)).Inc()
	b.cfg.Logger.Warn("circuit-breaker-tripped",
		zap.String("reason", string(reason)),
		zap.Time("halted-until", b.haltedUntil))
}
