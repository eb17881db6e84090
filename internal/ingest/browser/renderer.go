// Package browser renders pages in headless Chrome for sources that only
// show their tables after scripts run.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/logging"
)

const (
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval spaces out page loads against the same host.
	MinRequestInterval = 2 * time.Second

	defaultTimeout = 30 * time.Second
)

// Options configures the renderer.
type Options struct {
	// WaitSelector must be visible before the page is captured.
	WaitSelector string
	Timeout      time.Duration
	Settle       time.Duration
	Logger       logrus.FieldLogger
}

// Renderer drives a shared headless Chrome allocator.
type Renderer struct {
	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
	opts        Options
	logger      logrus.FieldLogger

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewRenderer starts an exec allocator. Chrome itself is launched lazily on
// the first Render call.
func NewRenderer(opts Options) *Renderer {
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), flags...)

	if opts.WaitSelector == "" {
		opts.WaitSelector = "body"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Settle <= 0 {
		opts.Settle = time.Second
	}

	return &Renderer{
		interval: MinRequestInterval,
		opts:     opts,
		logger:   logging.Component(opts.Logger, "browser"),
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close releases the allocator and any running browser.
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Render loads url and returns the document HTML once WaitSelector is visible.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lastRequest.IsZero() {
		if wait := r.interval - time.Since(r.lastRequest); wait > 0 {
			r.logger.WithField("wait", wait).Debug("rate limiting page load")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	defer func() { r.lastRequest = time.Now() }()

	browserCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, r.opts.Timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the browser context.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(r.opts.WaitSelector, chromedp.ByQuery),
		chromedp.Sleep(r.opts.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	if html == "" {
		return "", fmt.Errorf("render %s: empty document", url)
	}
	return html, nil
}
