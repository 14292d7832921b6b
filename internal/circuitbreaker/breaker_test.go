package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validConfig() Config {
	return Config{
		MaxPositionPerMarket: 50,
		MaxTotalPosition:     200,
		MaxDailyLoss:         10.0,
		MaxConsecutiveErrors: 3,
		CooldownSecs:         60,
		Enabled:              true,
		Logger:               zap.NewNop(),
	}
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"nil-logger", func(c *Config) { c.Logger = nil }, true},
		{"zero-max-position-per-market", func(c *Config) { c.MaxPositionPerMarket = 0 }, true},
		{"total-below-per-market", func(c *Config) { c.MaxTotalPosition = 10 }, true},
		{"zero-daily-loss", func(c *Config) { c.MaxDailyLoss = 0 }, true},
		{"zero-consecutive-errors", func(c *Config) { c.MaxConsecutiveErrors = 0 }, true},
		{"zero-cooldown", func(c *Config) { c.CooldownSecs = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Scenario 5: per-market cap=50, existing=45, request=10 -> MaxPositionPerMarket.
func TestCanExecuteRejectsPerMarketCap(t *testing.T) {
	b, err := New(validConfig())
	if err != nil {
		t.Fatal(err)
	}

	b.RecordSuccess("market-1", 30, 15, 0) // brings per-market position to 45
	err = b.CanExecute("market-1", 10)

	var tripErr *TripError
	if !errors.As(err, &tripErr) || tripErr.Reason != ReasonMaxPositionPerMarket {
		t.Fatalf("expected MaxPositionPerMarket rejection, got %v", err)
	}
}

func TestCanExecuteRejectsTotalCap(t *testing.T) {
	cfg := validConfig()
	cfg.MaxTotalPosition = 50
	cfg.MaxPositionPerMarket = 50
	b, _ := New(cfg)

	b.RecordSuccess("m1", 20, 20, 0)
	b.RecordSuccess("m2", 5, 5, 0) // total now 50

	err := b.CanExecute("m3", 1)
	var tripErr *TripError
	if !errors.As(err, &tripErr) || tripErr.Reason != ReasonMaxTotalPosition {
		t.Fatalf("expected MaxTotalPosition rejection, got %v", err)
	}
}

// Scenario 7: cumulative realized -$3, -$4, -$5 with max_daily_loss=10 ->
// after the third, next admission fails with MaxDailyLoss.
func TestCanExecuteTripsOnDailyLoss(t *testing.T) {
	b, _ := New(validConfig())

	b.RecordSuccess("m1", 1, 1, -3.0)
	if err := b.CanExecute("m1", 1); err != nil {
		t.Fatalf("unexpected rejection after -3: %v", err)
	}

	b.RecordSuccess("m1", 1, 1, -4.0)
	if err := b.CanExecute("m1", 1); err != nil {
		t.Fatalf("unexpected rejection after -7: %v", err)
	}

	b.RecordSuccess("m1", 1, 1, -5.0) // cumulative -12, exceeds 10

	err := b.CanExecute("m1", 1)
	var tripErr *TripError
	if !errors.As(err, &tripErr) || tripErr.Reason != ReasonMaxDailyLoss {
		t.Fatalf("expected MaxDailyLoss rejection, got %v", err)
	}
}

// Scenario 6: 3 consecutive order-client errors with max_consecutive_errors=3
// -> IsTradingAllowed()==false, trip_reason=ConsecutiveErrors; reset() restores.
func TestConsecutiveErrorsTripsAndResetRestores(t *testing.T) {
	b, _ := New(validConfig())

	b.RecordError()
	b.RecordError()
	if !b.IsTradingAllowed() {
		t.Fatal("should still be trading after 2 errors")
	}

	b.RecordError()
	if b.IsTradingAllowed() {
		t.Fatal("expected trading halted after 3rd consecutive error")
	}

	status := b.Status()
	if status.TripReason != ReasonConsecutiveErrors {
		t.Errorf("expected ConsecutiveErrors trip reason, got %v", status.TripReason)
	}

	b.Reset()
	if !b.IsTradingAllowed() {
		t.Fatal("expected trading allowed after reset")
	}
}

func TestRecordSuccessResetsConsecutiveErrors(t *testing.T) {
	b, _ := New(validConfig())

	b.RecordError()
	b.RecordError()
	b.RecordSuccess("m1", 1, 1, 0.1)

	if b.Status().ConsecutiveErrors != 0 {
		t.Errorf("expected consecutive errors reset to 0 after success")
	}
}

func TestDisabledBreakerNeverHaltsOrRejects(t *testing.T) {
	cfg := validConfig()
	cfg.Enabled = false
	b, _ := New(cfg)

	for i := 0; i < 10; i++ {
		b.RecordError()
	}
	b.RecordSuccess("m1", 1000, 1000, -1000)

	if err := b.CanExecute("m1", 1000); err != nil {
		t.Fatalf("disabled breaker must never reject, got %v", err)
	}
	if !b.IsTradingAllowed() {
		t.Fatal("disabled breaker must never halt")
	}
}

func TestHaltExpiresAfterCooldown(t *testing.T) {
	cfg := validConfig()
	cfg.CooldownSecs = 1
	b, _ := New(cfg)

	b.RecordError()
	b.RecordError()
	b.RecordError()

	if b.IsTradingAllowed() {
		t.Fatal("expected halt immediately after trip")
	}

	time.Sleep(1100 * time.Millisecond)

	if !b.IsTradingAllowed() {
		t.Fatal("expected halt to expire after cooldown")
	}
}
