package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock speed bounds. A speed of 0 pauses the world.
const (
	MaxSpeed      = 10.0
	pausePollStep = 250 * time.Millisecond
)

// Clock runs the year tick autonomously: one game year per interval,
// scaled by a speed multiplier. The world starts paused until the API
// or configuration sets a speed.
type Clock struct {
	Driver   *Driver
	Interval time.Duration

	mu    sync.Mutex
	speed float64
}

// NewClock returns a paused clock over the given driver.
func NewClock(d *Driver, interval time.Duration) *Clock {
	return &Clock{Driver: d, Interval: interval}
}

// Speed reports the current multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed updates the multiplier, clamped to [0, MaxSpeed].
func (c *Clock) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	if v > MaxSpeed {
		v = MaxSpeed
	}
	c.mu.Lock()
	c.speed = v
	c.mu.Unlock()
	slog.Info("clock speed set", "speed", v)
}

// Run blocks, advancing the world until ctx is cancelled.
func (c *Clock) Run(ctx context.Context) {
	slog.Info("world clock started", "interval", c.Interval, "speed", c.Speed())
	for {
		speed := c.Speed()
		if speed <= 0 {
			select {
			case <-ctx.Done():
				slog.Info("world clock stopped")
				return
			case <-time.After(pausePollStep):
			}
			continue
		}

		start := time.Now()
		if _, err := c.Driver.Advance(ctx); err != nil {
			if ctx.Err() != nil {
				slog.Info("world clock stopped")
				return
			}
			slog.Error("year tick failed", "error", err)
		}

		target := time.Duration(float64(c.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			select {
			case <-ctx.Done():
				slog.Info("world clock stopped")
				return
			case <-time.After(target - elapsed):
			}
		} else if ctx.Err() != nil {
			slog.Info("world clock stopped")
			return
		}
	}
}
