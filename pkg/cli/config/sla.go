package config

import (
	"log/slog"
	"time"

	"github.com/esteira-credito/esteira/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// SLA holds CLI flags for the reclamation engine
type SLA struct {
	thresholdHours float64
	interval       time.Duration
	guardTTL       time.Duration
	concurrency    int
}

// Flags returns CLI flags for SLA configuration
func (x *SLA) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:        "sla-threshold-hours",
			Usage:       "Business hours a case may stay locked before it is reclaimed",
			Category:    "SLA",
			Value:       usecase.DefaultSLAThreshold.Hours(),
			Sources:     cli.EnvVars("ESTEIRA_SLA_THRESHOLD_HOURS"),
			Destination: &x.thresholdHours,
		},
		&cli.DurationFlag{
			Name:        "sla-interval",
			Usage:       "Interval of scheduled sweeps (0 disables the scheduler)",
			Category:    "SLA",
			Value:       15 * time.Minute,
			Sources:     cli.EnvVars("ESTEIRA_SLA_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.DurationFlag{
			Name:        "sla-guard-ttl",
			Usage:       "Lifetime of the sweep guard, after which a crashed sweep's guard can be taken over",
			Category:    "SLA",
			Value:       usecase.DefaultGuardTTL,
			Sources:     cli.EnvVars("ESTEIRA_SLA_GUARD_TTL"),
			Destination: &x.guardTTL,
		},
		&cli.IntFlag{
			Name:        "sla-concurrency",
			Usage:       "Cases processed in parallel by one sweep",
			Category:    "SLA",
			Value:       usecase.DefaultSweepWorkers,
			Sources:     cli.EnvVars("ESTEIRA_SLA_CONCURRENCY"),
			Destination: &x.concurrency,
		},
	}
}

func (x SLA) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("threshold_hours", x.thresholdHours),
		slog.String("interval", x.interval.String()),
		slog.String("guard_ttl", x.guardTTL.String()),
		slog.Int("concurrency", x.concurrency),
	)
}

// Interval returns the scheduled sweep interval; zero means disabled
func (x *SLA) Interval() time.Duration {
	return x.interval
}

// Configure validates the flags and returns the matching use case options
func (x *SLA) Configure() ([]usecase.Option, error) {
	if x.thresholdHours <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "SLA threshold must be positive",
			goerr.V(FieldKey, "sla-threshold-hours"), goerr.V(ValueKey, x.thresholdHours))
	}
	if x.interval < 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "SLA interval must not be negative",
			goerr.V(FieldKey, "sla-interval"), goerr.V(ValueKey, x.interval.String()))
	}
	if x.guardTTL <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "sweep guard TTL must be positive",
			goerr.V(FieldKey, "sla-guard-ttl"), goerr.V(ValueKey, x.guardTTL.String()))
	}
	if x.concurrency < 1 {
		return nil, goerr.Wrap(ErrInvalidConfig, "sweep concurrency must be at least 1",
			goerr.V(FieldKey, "sla-concurrency"), goerr.V(ValueKey, x.concurrency))
	}

	return []usecase.Option{
		usecase.WithSLAThreshold(time.Duration(x.thresholdHours * float64(time.Hour))),
		usecase.WithGuardTTL(x.guardTTL),
		usecase.WithConcurrency(x.concurrency),
	}, nil
}
