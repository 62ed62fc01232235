// Package loadgen drives synthetic shopping traffic against the API.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	Users int
	Heavy int
	// SpawnRate is the number of virtual users started per second.
	SpawnRate float64
	// Duration bounds the run; zero runs until ctx is cancelled.
	Duration time.Duration
	Seed     uint64
}

func (c Config) validate() error {
	if c.Users < 0 || c.Heavy < 0 {
		return errors.New("user counts must not be negative")
	}
	if c.Users+c.Heavy == 0 {
		return errors.New("at least one virtual user is required")
	}
	if c.SpawnRate <= 0 {
		return errors.New("spawn rate must be positive")
	}
	return nil
}

type Runner struct {
	api    API
	cfg    Config
	stats  *Stats
	logger *slog.Logger
}

func NewRunner(api API, cfg Config, logger *slog.Logger) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid load config: %w", err)
	}
	return &Runner{
		api:    api,
		cfg:    cfg,
		stats:  NewStats(),
		logger: logger,
	}, nil
}

func (r *Runner) Stats() *Stats {
	return r.stats
}

// Run starts the virtual users at the configured spawn rate and blocks until
// the duration elapses or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	profiles := r.roster()
	interval := time.Duration(float64(time.Second) / r.cfg.SpawnRate)

	r.logger.Info("starting load run",
		"users", r.cfg.Users, "heavy", r.cfg.Heavy, "spawn_rate", r.cfg.SpawnRate, "duration", r.cfg.Duration)

	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		if i > 0 && !sleep(gctx, interval) {
			break
		}

		rng := rand.New(rand.NewPCG(r.cfg.Seed, uint64(i)))
		user := NewVirtualUser(r.api, r.stats, profile, rng)
		g.Go(func() error {
			return r.drive(gctx, user)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// roster interleaves heavy shoppers among normal ones so both kinds ramp up together.
func (r *Runner) roster() []Profile {
	normal, heavy := NormalProfile(), HeavyProfile()
	out := make([]Profile, 0, r.cfg.Users+r.cfg.Heavy)
	n, h := r.cfg.Users, r.cfg.Heavy
	for n > 0 || h > 0 {
		if n > 0 {
			out = append(out, normal)
			n--
		}
		if h > 0 {
			out = append(out, heavy)
			h--
		}
	}
	return out
}

func (r *Runner) drive(ctx context.Context, user *VirtualUser) error {
	user.Start(ctx)
	for {
		if err := user.Step(ctx); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
