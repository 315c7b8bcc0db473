package deploy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/worldsmith/internal/settings"
)

// Runner runs the deploy script once.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ChainControl switches mining modes on a development node.
type ChainControl interface {
	Automine(ctx context.Context) error
	IntervalMining(ctx context.Context, interval time.Duration) error
	LatestBlockTime(ctx context.Context) (time.Time, error)
	SetNextBlockTimestamp(ctx context.Context, ts time.Time) error
}

// Deployer applies the deploy script for one environment profile, wrapping
// the run in the profile's chain control.
type Deployer struct {
	runner  Runner
	chain   ChainControl
	profile settings.Profile
	logger  *slog.Logger
}

// DeployerOption configures a Deployer.
type DeployerOption func(*Deployer)

// WithChain enables chain control. Without it the profile's mining settings
// are ignored.
func WithChain(c ChainControl) DeployerOption {
	return func(d *Deployer) { d.chain = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DeployerOption {
	return func(d *Deployer) { d.logger = l }
}

// NewDeployer creates a deployer over runner.
func NewDeployer(runner Runner, profile settings.Profile, opts ...DeployerOption) *Deployer {
	d := &Deployer{runner: runner, profile: profile, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy runs the deploy script against env's world.
//
// With automine enabled the chain mines every call of the batch immediately,
// and interval mining is restored afterwards when the profile has a block
// time. After a successful run the next block's timestamp is pinned to the
// latest block's timestamp plus the profile's warp seconds.
//
// Once the script has started, cancelling ctx no longer stops the chain
// calls that follow it.
func (d *Deployer) Deploy(ctx context.Context, env settings.Env, extra ...string) (res Result, err error) {
	inv := Invocation{RPC: env.RPC, PrivateKey: env.PrivateKey, World: env.World(), Extra: extra}
	after := context.WithoutCancel(ctx)

	if d.chain != nil && d.profile.Automine {
		if err := d.chain.Automine(ctx); err != nil {
			return Result{}, err
		}
		d.logger.Debug("automine enabled", "mode", env.Mode)
		if d.profile.BlockTime > 0 {
			defer func() {
				interval := time.Duration(d.profile.BlockTime) * time.Second
				if rerr := d.chain.IntervalMining(after, interval); rerr != nil {
					err = errors.Join(err, rerr)
					return
				}
				d.logger.Debug("interval mining restored", "interval", interval)
			}()
		}
	}

	res, err = d.runner.Run(ctx, inv)
	if err != nil {
		return res, err
	}
	d.logger.Info("deploy script finished",
		"exit_code", res.ExitCode,
		"world", res.World,
		"start_block", res.StartBlock,
		"source", res.Source,
		"duration", res.Duration)

	if d.chain != nil && res.Succeeded() && d.profile.WarpSeconds > 0 {
		if err := d.warp(after); err != nil {
			return res, err
		}
	}
	return res, nil
}

// warp pins the next block's timestamp relative to the chain's own clock.
// Nodes reject timestamps at or before the latest block.
func (d *Deployer) warp(ctx context.Context) error {
	latest, err := d.chain.LatestBlockTime(ctx)
	if err != nil {
		return err
	}
	ts := latest.Add(time.Duration(d.profile.WarpSeconds) * time.Second)
	if err := d.chain.SetNextBlockTimestamp(ctx, ts); err != nil {
		return err
	}
	d.logger.Debug("next block timestamp set", "latest", latest.Unix(), "timestamp", ts.Unix())
	return nil
}
