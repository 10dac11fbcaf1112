// Package config holds the budgets and thresholds consumed by the carving core.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/multierr"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "MEDIACARVE_"

type Config struct {
	// Trailing bytes a node may leave unparsed before it is considered low-confidence.
	MaxUnparsedBytes int64
	// Longest run of zero bytes accepted as a list terminator.
	MaxTerminatorLength int64
	// Probe distance between two consecutive bitstream headers.
	MaxOffsetBetweenHeaders int64
	// Short-picture headers required before a bitstream run is accepted.
	MinShortHeaderCount int
	// Largest temporal-reference step between two short-picture headers of one run.
	MaxTemporalReferenceDrift int
	// Longest user-data payload accepted.
	MaxUserDataLength int64
	// Longest picture accepted when it has to be bounded by the next start code.
	MaxVopLength int64
	// Nodes below the root a carved block needs to be kept.
	MinMeaningfulNodes int
	// Parallel region workers used by the scanner.
	Workers int
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxUnparsedBytes:          2048,
		MaxTerminatorLength:       8,
		MaxOffsetBetweenHeaders:   64 * 1024,
		MinShortHeaderCount:       3,
		MaxTemporalReferenceDrift: 4,
		MaxUserDataLength:         1024,
		MaxVopLength:              512 * 1024,
		MinMeaningfulNodes:        2,
		Workers:                   4,
	}
}

// FromEnv overlays MEDIACARVE_* environment variables on Default.
func FromEnv() Config {
	d := Default()
	return Config{
		MaxUnparsedBytes:          envInt64("MAX_UNPARSED_BYTES", d.MaxUnparsedBytes),
		MaxTerminatorLength:       envInt64("MAX_TERMINATOR_LENGTH", d.MaxTerminatorLength),
		MaxOffsetBetweenHeaders:   envInt64("MAX_OFFSET_BETWEEN_HEADERS", d.MaxOffsetBetweenHeaders),
		MinShortHeaderCount:       envInt("MIN_SHORT_HEADER_COUNT", d.MinShortHeaderCount),
		MaxTemporalReferenceDrift: envInt("MAX_TEMPORAL_REFERENCE_DRIFT", d.MaxTemporalReferenceDrift),
		MaxUserDataLength:         envInt64("MAX_USER_DATA_LENGTH", d.MaxUserDataLength),
		MaxVopLength:              envInt64("MAX_VOP_LENGTH", d.MaxVopLength),
		MinMeaningfulNodes:        envInt("MIN_MEANINGFUL_NODES", d.MinMeaningfulNodes),
		Workers:                   envInt("WORKERS", d.Workers),
	}
}

// Validate reports every out-of-range knob at once.
func (c Config) Validate() error {
	var err error
	positive := func(name string, v int64) {
		if v <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, name, v))
		}
	}
	notNegative := func(name string, v int64) {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, name, v))
		}
	}

	notNegative("MaxUnparsedBytes", c.MaxUnparsedBytes)
	notNegative("MaxTerminatorLength", c.MaxTerminatorLength)
	positive("MaxOffsetBetweenHeaders", c.MaxOffsetBetweenHeaders)
	positive("MinShortHeaderCount", int64(c.MinShortHeaderCount))
	positive("MaxTemporalReferenceDrift", int64(c.MaxTemporalReferenceDrift))
	notNegative("MaxUserDataLength", c.MaxUserDataLength)
	positive("MaxVopLength", c.MaxVopLength)
	notNegative("MinMeaningfulNodes", int64(c.MinMeaningfulNodes))
	positive("Workers", int64(c.Workers))

	if c.MaxTemporalReferenceDrift > 255 { //nolint:mnd
		err = multierr.Append(err, fmt.Errorf("%w: MaxTemporalReferenceDrift must fit the 8-bit counter, got %d",
			ErrInvalid, c.MaxTemporalReferenceDrift))
	}
	return err
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
