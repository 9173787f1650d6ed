package hypermap

import (
	"fmt"
	"log/slog"

	"github.com/spectralio/bcf/errs"
)

// Option configures a hypermap decode.
type Option func(*config) error

type config struct {
	downsample      int
	cutoff          int
	cutoffEnergy    float64
	hasCutoffEnergy bool
	logger          *slog.Logger
}

func buildConfig(opts []Option) (*config, error) {
	cfg := &config{
		downsample: 1,
		cutoff:     0,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// WithDownsample sets the spatial downsample factor: counts of every
// s x s pixel block are summed into one output pixel. The default
// factor 1 decodes one-to-one.
func WithDownsample(s int) Option {
	return func(cfg *config) error {
		if s < 1 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidDownsample, s)
		}
		cfg.downsample = s

		return nil
	}
}

// WithCutoffChannel clips the channel axis: channels at or beyond c are
// discarded. A cutoff of 0 (the default) uses the container's channel
// depth estimate. When both cutoff options are given, the last one
// wins.
func WithCutoffChannel(c int) Option {
	return func(cfg *config) error {
		if c < 0 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidCutoff, c)
		}
		cfg.cutoff = c
		cfg.hasCutoffEnergy = false

		return nil
	}
}

// WithCutoffEnergy clips the channel axis at the given energy in keV,
// converted to a channel through the container's spectrum calibration.
// The container must implement EnergyCalibrated; the containers built
// by the bcf root package do. When both cutoff options are given, the
// last one wins.
func WithCutoffEnergy(keV float64) Option {
	return func(cfg *config) error {
		if keV < 0 {
			return fmt.Errorf("%w: got %g keV", errs.ErrInvalidCutoff, keV)
		}
		cfg.cutoffEnergy = keV
		cfg.hasCutoffEnergy = true

		return nil
	}
}

// WithLogger sets the logger used for decode diagnostics. The default
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger

		return nil
	}
}
