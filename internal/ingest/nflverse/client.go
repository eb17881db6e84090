// Package nflverse reads weekly statistics tables from the nflverse data
// releases.
package nflverse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/logging"
)

// Cache stores raw table bytes between runs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Recorder receives per-request metrics.
type Recorder interface {
	RecordProviderRequest(dataset string, duration time.Duration, err error)
	RecordCacheLookup(dataset string, hit bool)
}

// Config controls how the client reaches the provider.
type Config struct {
	BaseURL      string
	SchedulesURL string
	HTTPClient   *http.Client
	Timeout      time.Duration
	UserAgent    string
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries   int
	RetryBackoff time.Duration
	Cache        Cache
	CacheTTL     time.Duration
	Metrics      Recorder
	Logger       logrus.FieldLogger
}

// Client fetches and decodes provider tables.
type Client struct {
	baseURL      string
	schedulesURL string
	httpClient   httpDoer
	userAgent    string
	maxRetries   int
	retryBackoff time.Duration
	cache        Cache
	cacheTTL     time.Duration
	metrics      Recorder
	logger       logrus.FieldLogger
}

// New constructs a client with the provided configuration.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:      normalizeBaseURL(cfg.BaseURL, defaultBaseURL),
		schedulesURL: normalizeBaseURL(cfg.SchedulesURL, defaultSchedulesURL),
		httpClient:   resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		userAgent:    cfg.UserAgent,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		metrics:      cfg.Metrics,
		logger:       logging.Component(cfg.Logger, "nflverse"),
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.retryBackoff <= 0 {
		c.retryBackoff = defaultRetryBackoff
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = defaultCacheTTL
	}
	return c
}

// FetchPlayerWeekly returns the player weekly stats table for a season.
func (c *Client) FetchPlayerWeekly(ctx context.Context, season int) ([]PlayerWeekRow, error) {
	url := fmt.Sprintf("%s/stats_player/stats_player_week_%d.csv", c.baseURL, season)
	var rows []PlayerWeekRow
	if err := c.fetchTable(ctx, DatasetPlayerStats, season, url, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchTeamWeekly returns the team weekly stats table for a season.
func (c *Client) FetchTeamWeekly(ctx context.Context, season int) ([]TeamWeekRow, error) {
	url := fmt.Sprintf("%s/stats_team/stats_team_week_%d.csv", c.baseURL, season)
	var rows []TeamWeekRow
	if err := c.fetchTable(ctx, DatasetTeamStats, season, url, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchSchedules returns the season's games. The provider publishes one
// file for all seasons, so rows are filtered here.
func (c *Client) FetchSchedules(ctx context.Context, season int) ([]GameRow, error) {
	var rows []GameRow
	if err := c.fetchTable(ctx, DatasetSchedules, season, c.schedulesURL, &rows); err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, g := range rows {
		if g.Season == season {
			out = append(out, g)
		}
	}
	return out, nil
}

// FetchInjuries returns the weekly injury reports for a season.
func (c *Client) FetchInjuries(ctx context.Context, season int) ([]InjuryRow, error) {
	url := fmt.Sprintf("%s/injuries/injuries_%d.csv", c.baseURL, season)
	var rows []InjuryRow
	if err := c.fetchTable(ctx, DatasetInjuries, season, url, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchRosters returns the weekly rosters for a season.
func (c *Client) FetchRosters(ctx context.Context, season int) ([]RosterRow, error) {
	url := fmt.Sprintf("%s/weekly_rosters/roster_weekly_%d.csv", c.baseURL, season)
	var rows []RosterRow
	if err := c.fetchTable(ctx, DatasetRosters, season, url, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CacheKey is the Redis key for a raw table.
func CacheKey(dataset string, season int) string {
	return fmt.Sprintf("nflverse:%s:%d", dataset, season)
}

func (c *Client) fetchTable(ctx context.Context, dataset string, season int, url string, out any) error {
	start := time.Now()
	data, err := c.load(ctx, dataset, season, url)
	if err == nil {
		if decodeErr := gocsv.UnmarshalBytes(data, out); decodeErr != nil {
			err = &ProviderError{
				Dataset: dataset,
				Season:  season,
				URL:     url,
				Message: fmt.Sprintf("decode csv: %v", decodeErr),
			}
			c.evict(ctx, CacheKey(dataset, season))
		}
	}
	if c.metrics != nil {
		c.metrics.RecordProviderRequest(dataset, time.Since(start), err)
	}
	return err
}

// evict drops a table that failed to decode so the next run downloads it again.
func (c *Client) evict(ctx context.Context, key string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache evict failed")
	}
}

func (c *Client) load(ctx context.Context, dataset string, season int, url string) ([]byte, error) {
	key := CacheKey(dataset, season)
	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		if c.metrics != nil {
			c.metrics.RecordCacheLookup(dataset, ok)
		}
		if ok {
			c.logger.WithField("key", key).Debug("serving table from cache")
			return data, nil
		}
	}

	data, err := c.download(ctx, dataset, season, url)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("cache write failed")
		}
	}
	return data, nil
}

func (c *Client) download(ctx context.Context, dataset string, season int, url string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff
	policy.MaxElapsedTime = 0

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		data, err := c.get(ctx, dataset, season, url)
		if err != nil {
			if pErr, ok := AsProviderError(err); ok && !pErr.retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		body = data
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"dataset": dataset,
			"season":  season,
			"attempt": attempt,
			"wait":    wait,
		}).Warn("provider fetch retry")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"dataset": dataset,
		"season":  season,
		"bytes":   len(body),
	}).Info("downloaded table")
	return body, nil
}

func (c *Client) get(ctx context.Context, dataset string, season int, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, &ProviderError{Dataset: dataset, Season: season, URL: url, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(snippet))
		if resp.StatusCode == http.StatusNotFound {
			msg = "no file published for season"
		}
		return nil, &ProviderError{
			Dataset:    dataset,
			Season:     season,
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    msg,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Dataset: dataset, Season: season, URL: url, Message: fmt.Sprintf("read body: %v", err)}
	}
	return data, nil
}
