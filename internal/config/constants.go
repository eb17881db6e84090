package config

import "time"

const (
	envSeason             = "SEASON"
	envBaseURL            = "NFLVERSE_BASE_URL"
	envSchedulesURL       = "NFLVERSE_SCHEDULES_URL"
	envHTTPTimeout        = "HTTP_TIMEOUT"
	envMaxRetries         = "PROVIDER_MAX_RETRIES"
	envOutputDir          = "OUTPUT_DIR"
	envOutputLayout       = "OUTPUT_LAYOUT"
	envIncludeInjuries    = "INCLUDE_INJURIES"
	envIncludeDefense     = "INCLUDE_TEAM_DEFENSE"
	envIncludeRosters     = "INCLUDE_ROSTERS"
	envInjuryFallback     = "INJURY_FALLBACK"
	envESPNInjuriesURL    = "ESPN_INJURIES_URL"
	envESPNRenderer       = "ESPN_RENDERER"
	envReconcileStrategy  = "RECONCILE_STRATEGY"
	envScoreFumblesForced = "SCORE_FUMBLES_FORCED"
	envSeasonType         = "SEASON_TYPE"
	envRedisURL           = "REDIS_URL"
	envCacheTTL           = "CACHE_TTL"
	envDatabaseDSN        = "DATABASE_DSN"
	envS3Bucket           = "S3_BUCKET"
	envS3Prefix           = "S3_PREFIX"
	envRESTPort           = "REST_PORT"
	envWSPort             = "WS_PORT"
	envExportSchedule     = "EXPORT_SCHEDULE"
	envScheduleTimezone   = "SCHEDULE_TIMEZONE"
	envLogLevel           = "LOG_LEVEL"
	envLogFormat          = "LOG_FORMAT"

	DefaultBaseURL         = "https://github.com/nflverse/nflverse-data/releases/download"
	DefaultSchedulesURL    = "https://github.com/nflverse/nfldata/raw/master/data/games.csv"
	DefaultESPNInjuriesURL = "https://www.espn.com/nfl/injuries"

	defaultHTTPTimeout      = 60 * time.Second
	defaultMaxRetries       = 3
	defaultOutputDir        = "data"
	defaultOutputLayout     = LayoutSeason
	defaultInjuryFallback   = FallbackNone
	defaultESPNRenderer     = RendererHTTP
	defaultStrategy         = "id_then_name"
	defaultSeasonType       = "ALL"
	defaultCacheTTL         = 6 * time.Hour
	defaultS3Prefix         = "nfl"
	defaultRESTPort         = "8080"
	defaultWSPort           = "8081"
	defaultExportSchedule   = "0 9 * * 2"
	defaultScheduleTimezone = "America/New_York"
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
)

// Output layouts.
const (
	LayoutSeason = "season"
	LayoutStatic = "static"
)

// Injury fallback sources.
const (
	FallbackNone = "none"
	FallbackESPN = "espn"
)

// ESPN page renderers.
const (
	RendererHTTP    = "http"
	RendererBrowser = "browser"
)
