package espn

import "strings"

// teamAbbreviations maps ESPN display names to nflverse team codes.
var teamAbbreviations = map[string]string{
	"arizona cardinals":     "ARI",
	"atlanta falcons":       "ATL",
	"baltimore ravens":      "BAL",
	"buffalo bills":         "BUF",
	"carolina panthers":     "CAR",
	"chicago bears":         "CHI",
	"cincinnati bengals":    "CIN",
	"cleveland browns":      "CLE",
	"dallas cowboys":        "DAL",
	"denver broncos":        "DEN",
	"detroit lions":         "DET",
	"green bay packers":     "GB",
	"houston texans":        "HOU",
	"indianapolis colts":    "IND",
	"jacksonville jaguars":  "JAX",
	"kansas city chiefs":    "KC",
	"las vegas raiders":     "LV",
	"los angeles chargers":  "LAC",
	"los angeles rams":      "LA",
	"miami dolphins":        "MIA",
	"minnesota vikings":     "MIN",
	"new england patriots":  "NE",
	"new orleans saints":    "NO",
	"new york giants":       "NYG",
	"new york jets":         "NYJ",
	"philadelphia eagles":   "PHI",
	"pittsburgh steelers":   "PIT",
	"san francisco 49ers":   "SF",
	"seattle seahawks":      "SEA",
	"tampa bay buccaneers":  "TB",
	"tennessee titans":      "TEN",
	"washington commanders": "WAS",
}

// TeamAbbreviation resolves an ESPN team display name.
func TeamAbbreviation(displayName string) (string, bool) {
	abbr, ok := teamAbbreviations[strings.ToLower(strings.TrimSpace(displayName))]
	return abbr, ok
}
