// Package season decides which NFL season an export targets.
package season

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvVar is read when no explicit season is given.
const EnvVar = "SEASON"

// Source records which input decided the season.
type Source string

const (
	SourceOverride Source = "override"
	SourceEnv      Source = "env"
	SourceClock    Source = "clock"
)

// Options are the inputs to Resolve. Env is the raw SEASON value.
type Options struct {
	Override int
	Env      string
	Now      time.Time
	Logger   logrus.FieldLogger
}

// Resolve picks the season: explicit override, then SEASON, then the most
// recent season the provider can have published.
func Resolve(opts Options) (int, Source) {
	if opts.Override > 0 {
		return opts.Override, SourceOverride
	}

	if raw := strings.TrimSpace(opts.Env); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v, SourceEnv
		}
		if opts.Logger != nil {
			opts.Logger.WithField("value", raw).Warn("ignoring invalid SEASON value")
		}
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	return min(now.Year(), LatestAvailable(now)), SourceClock
}

// LatestAvailable is the newest season with data. The regular season starts
// in September, so earlier months still belong to the previous season.
func LatestAvailable(now time.Time) int {
	if now.Month() >= time.September {
		return now.Year()
	}
	return now.Year() - 1
}
