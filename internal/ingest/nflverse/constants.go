package nflverse

import "time"

// Dataset names. They double as URL path segments and cache key parts.
const (
	DatasetPlayerStats = "stats_player"
	DatasetTeamStats   = "stats_team"
	DatasetInjuries    = "injuries"
	DatasetRosters     = "weekly_rosters"
	DatasetSchedules   = "schedules"
)

const (
	defaultBaseURL      = "https://github.com/nflverse/nflverse-data/releases/download"
	defaultSchedulesURL = "https://github.com/nflverse/nfldata/raw/master/data/games.csv"
	defaultHTTPTimeout  = 60 * time.Second
	defaultUserAgent    = "gridiron/1.0"
	defaultRetryBackoff = 500 * time.Millisecond
	defaultCacheTTL     = 6 * time.Hour
)

// GameTypeRegular is the schedules game_type of regular season games.
const GameTypeRegular = "REG"
