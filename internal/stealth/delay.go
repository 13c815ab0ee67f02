// Package stealth holds the pacing and disguise primitives used before every network action.
package stealth

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DelayConfig is the parameter set of a delay policy, in seconds.
type DelayConfig struct {
	Low                 float64 `mapstructure:"low"`
	High                float64 `mapstructure:"high"`
	LongTailProbability float64 `mapstructure:"long_tail_probability"`
	LongTailLow         float64 `mapstructure:"long_tail_low"`
	LongTailHigh        float64 `mapstructure:"long_tail_high"`
	JitterSpread        float64 `mapstructure:"jitter_spread"`
	Floor               float64 `mapstructure:"floor"`
}

// HumanLike is the per-request policy: uniform [2,7], a 20% chance of an extra [5,15],
// gaussian jitter with spread 0.5, floored at 1.
func HumanLike() DelayConfig {
	return DelayConfig{
		Low:                 2,
		High:                7,
		LongTailProbability: 0.2,
		LongTailLow:         5,
		LongTailHigh:        15,
		JitterSpread:        0.5,
		Floor:               1,
	}
}

// Uniform draws from [low, high] with no tail and no jitter.
func Uniform(low, high float64) DelayConfig {
	return DelayConfig{Low: low, High: high, Floor: low}
}

// DelayPolicy turns a DelayConfig into waits. It is not safe for concurrent use;
// the pipeline is sequential.
type DelayPolicy struct {
	cfg   DelayConfig
	rng   *rand.Rand
	sleep Sleeper
}

// PolicyOption customizes a DelayPolicy.
type PolicyOption func(*DelayPolicy)

// WithSeed makes draws reproducible.
func WithSeed(seed uint64) PolicyOption {
	return func(p *DelayPolicy) {
		p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithSleeper replaces the real sleep, mainly for tests.
func WithSleeper(s Sleeper) PolicyOption {
	return func(p *DelayPolicy) {
		p.sleep = s
	}
}

// NewDelayPolicy normalizes swapped bounds.
func NewDelayPolicy(cfg DelayConfig, opts ...PolicyOption) *DelayPolicy {
	if cfg.High < cfg.Low {
		cfg.Low, cfg.High = cfg.High, cfg.Low
	}
	if cfg.LongTailHigh < cfg.LongTailLow {
		cfg.LongTailLow, cfg.LongTailHigh = cfg.LongTailHigh, cfg.LongTailLow
	}
	p := &DelayPolicy{
		cfg:   cfg,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sleep: SleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the parameters in use.
func (p *DelayPolicy) Config() DelayConfig {
	return p.cfg
}

// NextDelay draws one duration.
func (p *DelayPolicy) NextDelay() time.Duration {
	secs := p.uniform(p.cfg.Low, p.cfg.High)
	if p.cfg.LongTailProbability > 0 && p.rng.Float64() < p.cfg.LongTailProbability {
		secs += p.uniform(p.cfg.LongTailLow, p.cfg.LongTailHigh)
	}
	if p.cfg.JitterSpread > 0 {
		secs += p.rng.NormFloat64() * p.cfg.JitterSpread
	}
	secs = math.Max(secs, p.cfg.Floor)
	return time.Duration(secs * float64(time.Second))
}

// Wait draws a delay and sleeps it.
func (p *DelayPolicy) Wait(ctx context.Context) (time.Duration, error) {
	d := p.NextDelay()
	return d, p.sleep(ctx, d)
}

// Sleep exposes the configured Sleeper for fixed waits such as challenge cooldowns.
func (p *DelayPolicy) Sleep(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

func (p *DelayPolicy) uniform(low, high float64) float64 {
	if high <= low {
		return low
	}
	return low + p.rng.Float64()*(high-low)
}
