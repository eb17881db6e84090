// Package espn scrapes the public ESPN NFL injuries page. It is only used
// when the nflverse injuries table is unavailable.
package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/model"
)

const (
	// InjuriesURL is the league-wide injuries page.
	InjuriesURL = "https://www.espn.com/nfl/injuries"

	// UserAgent is sent by the plain HTTP renderer. The page refuses
	// obvious bot agents.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultTimeout = 30 * time.Second
)

// Renderer returns the HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// HTTPRenderer fetches the page without executing scripts. The injuries
// tables are server rendered, so this is normally enough.
type HTTPRenderer struct {
	client *http.Client
}

func NewHTTPRenderer(client *http.Client) *HTTPRenderer {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPRenderer{client: client}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

// Client handles ESPN injuries page requests.
type Client struct {
	url      string
	renderer Renderer
	logger   logrus.FieldLogger
}

// New creates a client for the injuries page. An empty url uses InjuriesURL
// and a nil renderer fetches over plain HTTP.
func New(url string, renderer Renderer, logger logrus.FieldLogger) *Client {
	if strings.TrimSpace(url) == "" {
		url = InjuriesURL
	}
	if renderer == nil {
		renderer = NewHTTPRenderer(nil)
	}
	return &Client{
		url:      url,
		renderer: renderer,
		logger:   logging.Component(logger, "espn"),
	}
}

// FetchInjuries returns the current league injury report stamped with the
// given season and week. The page only ever shows the current week.
func (c *Client) FetchInjuries(ctx context.Context, season, week int) ([]model.InjuryReport, error) {
	html, err := c.renderer.Render(ctx, c.url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse injuries page: %w", err)
	}

	reports := ParseInjuries(doc, season, week)
	c.logger.WithFields(logrus.Fields{
		"season":  season,
		"week":    week,
		"reports": len(reports),
	}).Info("parsed ESPN injuries page")

	if len(reports) == 0 {
		return nil, fmt.Errorf("no injury tables found at %s", c.url)
	}
	return reports, nil
}
