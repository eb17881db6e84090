// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds runtime configuration for both the export command and the
// long-running server.
type Config struct {
	// Season is the raw SEASON value. Resolution happens in package season.
	Season   string
	Provider ProviderConfig
	Pipeline PipelineConfig
	Output   OutputConfig

	RedisURL    string
	CacheTTL    time.Duration
	DatabaseDSN string

	RESTPort         string
	WSPort           string
	ExportSchedule   string
	ScheduleTimezone string

	LogLevel  string
	LogFormat string
}

// ProviderConfig configures the nflverse client.
type ProviderConfig struct {
	BaseURL      string
	SchedulesURL string
	Timeout      time.Duration
	MaxRetries   int
}

// PipelineConfig toggles optional datasets and transform policies.
type PipelineConfig struct {
	IncludeInjuries    bool
	IncludeTeamDefense bool
	IncludeRosters     bool
	InjuryFallback     string
	ESPNInjuriesURL    string
	ESPNRenderer       string
	ReconcileStrategy  string
	ScoreFumblesForced bool
	SeasonType         string
}

// OutputConfig controls where the export lands.
type OutputConfig struct {
	Dir      string
	Layout   string
	S3Bucket string
	S3Prefix string
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Season: strings.TrimSpace(os.Getenv(envSeason)),
		Provider: ProviderConfig{
			BaseURL:      envOrDefault(envBaseURL, DefaultBaseURL),
			SchedulesURL: envOrDefault(envSchedulesURL, DefaultSchedulesURL),
			Timeout:      durationEnvOrDefault(envHTTPTimeout, defaultHTTPTimeout),
			MaxRetries:   intEnvOrDefault(envMaxRetries, defaultMaxRetries),
		},
		Pipeline: PipelineConfig{
			IncludeInjuries:    boolEnvOrDefault(envIncludeInjuries, true),
			IncludeTeamDefense: boolEnvOrDefault(envIncludeDefense, true),
			IncludeRosters:     boolEnvOrDefault(envIncludeRosters, true),
			InjuryFallback:     strings.ToLower(envOrDefault(envInjuryFallback, defaultInjuryFallback)),
			ESPNInjuriesURL:    envOrDefault(envESPNInjuriesURL, DefaultESPNInjuriesURL),
			ESPNRenderer:       strings.ToLower(envOrDefault(envESPNRenderer, defaultESPNRenderer)),
			ReconcileStrategy:  strings.ToLower(envOrDefault(envReconcileStrategy, defaultStrategy)),
			ScoreFumblesForced: boolEnvOrDefault(envScoreFumblesForced, false),
			SeasonType:         strings.ToUpper(envOrDefault(envSeasonType, defaultSeasonType)),
		},
		Output: OutputConfig{
			Dir:      envOrDefault(envOutputDir, defaultOutputDir),
			Layout:   strings.ToLower(envOrDefault(envOutputLayout, defaultOutputLayout)),
			S3Bucket: envOrDefault(envS3Bucket, ""),
			S3Prefix: envOrDefault(envS3Prefix, defaultS3Prefix),
		},
		RedisURL:         envOrDefault(envRedisURL, ""),
		CacheTTL:         durationEnvOrDefault(envCacheTTL, defaultCacheTTL),
		DatabaseDSN:      envOrDefault(envDatabaseDSN, ""),
		RESTPort:         envOrDefault(envRESTPort, defaultRESTPort),
		WSPort:           envOrDefault(envWSPort, defaultWSPort),
		ExportSchedule:   envOrDefault(envExportSchedule, defaultExportSchedule),
		ScheduleTimezone: envOrDefault(envScheduleTimezone, defaultScheduleTimezone),
		LogLevel:         envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat:        strings.ToLower(envOrDefault(envLogFormat, defaultLogFormat)),
	}
}

// Validate rejects enumerated settings with unknown values.
func (c Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{envOutputLayout, c.Output.Layout, []string{LayoutSeason, LayoutStatic}},
		{envInjuryFallback, c.Pipeline.InjuryFallback, []string{FallbackNone, FallbackESPN}},
		{envESPNRenderer, c.Pipeline.ESPNRenderer, []string{RendererHTTP, RendererBrowser}},
		{envReconcileStrategy, c.Pipeline.ReconcileStrategy, []string{"id_then_name", "name", "id"}},
		{envSeasonType, c.Pipeline.SeasonType, []string{"REG", "POST", "ALL"}},
		{envLogFormat, c.LogFormat, []string{"text", "json"}},
	}
	for _, chk := range checks {
		if !contains(chk.allowed, chk.value) {
			return fmt.Errorf("invalid %s %q (want one of %s)", chk.name, chk.value, strings.Join(chk.allowed, ", "))
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
