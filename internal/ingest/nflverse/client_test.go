package nflverse

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt roundTripperFunc, cache Cache) *Client {
	return New(Config{
		BaseURL:      "http://nflverse.test/releases/",
		SchedulesURL: "http://nflverse.test/games.csv",
		HTTPClient:   &http.Client{Transport: rt},
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		Cache:        cache,
	})
}

const playerCSV = `player_id,player_name,player_display_name,position,recent_team,season,week,season_type,opponent_team,headshot_url,fantasy_points_ppr,completions,attempts,passing_yards,passing_tds,fg_made_40_49,pat_made,fg_missed
00-0033873,P.Mahomes,Patrick Mahomes,QB,KC,2023,1,REG,DET,https://img/pm.png,18.5,21,39,226,1,NA,NA,NA
00-0032900,H.Butker,Harrison Butker,K,KC,2023,1,REG,DET,,NA,NA,NA,NA,NA,2,3,1
`

func TestFetchPlayerWeeklyDecodesRows(t *testing.T) {
	var gotPath, gotAgent string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotAgent = req.Header.Get("User-Agent")
		return response(http.StatusOK, playerCSV), nil
	}, nil)

	rows, err := client.FetchPlayerWeekly(context.Background(), 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/releases/stats_player/stats_player_week_2023.csv" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAgent == "" {
		t.Fatal("expected a user agent header")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	qb := rows[0]
	if qb.Team() != "KC" {
		t.Fatalf("expected recent_team fallback KC, got %q", qb.Team())
	}
	if qb.PassingYards.Float() != 226 || qb.FantasyPointsPPR.Float() != 18.5 {
		t.Fatalf("unexpected QB stats %+v", qb.PassingLine)
	}

	k := rows[1]
	if k.FantasyPointsPPR.Valid {
		t.Fatal("expected NA fantasy points to decode as missing")
	}
	if k.FGMade40To49.Float() != 2 || k.PATMade.Float() != 3 || k.FGMissed.Float() != 1 {
		t.Fatalf("unexpected kicking line %+v", k.KickingLine)
	}
	if k.Completions.Valid {
		t.Fatal("expected NA passing stat for kicker")
	}
}

func TestFetchNotFoundIsPermanent(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return response(http.StatusNotFound, "Not Found"), nil
	}, nil)

	_, err := client.FetchTeamWeekly(context.Background(), 1901)
	if err == nil {
		t.Fatal("expected error for missing season")
	}
	pErr, ok := AsProviderError(err)
	if !ok {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if !pErr.NotFound() || pErr.Dataset != DatasetTeamStats || pErr.Season != 1901 {
		t.Fatalf("unexpected provider error %+v", pErr)
	}
	if calls != 1 {
		t.Fatalf("expected no retries on 404, got %d calls", calls)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return response(http.StatusBadGateway, "upstream"), nil
		}
		return response(http.StatusOK, "season,week,team,full_name,gsis_id,headshot_url,position\n2023,1,KC,Travis Kelce,00-0030506,https://img/tk.png,TE\n"), nil
	}, nil)

	rows, err := client.FetchRosters(context.Background(), 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(rows) != 1 || rows[0].GSISID != "00-0030506" {
		t.Fatalf("unexpected roster rows %+v", rows)
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return response(http.StatusServiceUnavailable, "down"), nil
	}, nil)

	if _, err := client.FetchInjuries(context.Background(), 2023); err == nil {
		t.Fatal("expected error after retries")
	}
	if calls != 3 {
		t.Fatalf("expected 1 attempt plus 2 retries, got %d", calls)
	}
}

func TestFetchSchedulesFiltersSeason(t *testing.T) {
	body := `game_id,season,game_type,week,away_team,away_score,home_team,home_score
2022_01_BUF_LA,2022,REG,1,BUF,31,LA,10
2023_01_DET_KC,2023,REG,1,DET,21,KC,20
2023_02_KC_JAX,2023,REG,2,KC,NA,JAX,NA
`
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/games.csv" {
			t.Fatalf("unexpected schedules path %s", req.URL.Path)
		}
		return response(http.StatusOK, body), nil
	}, nil)

	games, err := client.FetchSchedules(context.Background(), 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for 2023, got %d", len(games))
	}
	if !games[0].Completed() || games[1].Completed() {
		t.Fatalf("unexpected completion flags %+v", games)
	}
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestFetchEvictsUndecodableCachedTable(t *testing.T) {
	key := CacheKey(DatasetPlayerStats, 2023)
	cache := &memoryCache{data: map[string][]byte{key: []byte("player_id,week\n00-1,abc\n")}}
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return response(http.StatusOK, playerCSV), nil
	}, cache)

	if _, err := client.FetchPlayerWeekly(context.Background(), 2023); err == nil {
		t.Fatal("expected decode error for corrupt cached table")
	}
	if _, ok := cache.data[key]; ok {
		t.Fatal("expected corrupt table to be evicted")
	}

	rows, err := client.FetchPlayerWeekly(context.Background(), 2023)
	if err != nil {
		t.Fatalf("expected fresh download after eviction, got %v", err)
	}
	if calls != 1 || len(rows) != 2 {
		t.Fatalf("expected 1 download and 2 rows, got %d calls and %d rows", calls, len(rows))
	}
}

func TestFetchUsesCache(t *testing.T) {
	cache := &memoryCache{data: map[string][]byte{}}
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return response(http.StatusOK, playerCSV), nil
	}, cache)

	for i := 0; i < 2; i++ {
		if _, err := client.FetchPlayerWeekly(context.Background(), 2023); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected second fetch to be served from cache, got %d calls", calls)
	}
	if _, ok := cache.data[CacheKey(DatasetPlayerStats, 2023)]; !ok {
		t.Fatal("expected table stored under nflverse:stats_player:2023")
	}
	if cache.ttl != defaultCacheTTL {
		t.Fatalf("expected default ttl, got %s", cache.ttl)
	}
}

func TestInjuryRowToReport(t *testing.T) {
	row := InjuryRow{
		Season:         2023,
		Team:           "KC",
		GSISID:         "00-0030506",
		FullName:       " Travis Kelce ",
		ReportStatus:   "Questionable",
		PracticeStatus: "NA",
		DateModified:   "2023-09-07T16:12:00Z",
	}
	if _, ok := row.ToReport(); ok {
		t.Fatal("expected row without a week to be skipped")
	}

	row.Week.Value, row.Week.Valid = 1, true
	rep, ok := row.ToReport()
	if !ok {
		t.Fatal("expected report")
	}
	if rep.FullName != "Travis Kelce" || rep.PracticeStatus != "" || rep.Week != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.DateModified.IsZero() {
		t.Fatal("expected parsed date_modified")
	}
}
