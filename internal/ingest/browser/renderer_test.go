package browser

import (
	"testing"
	"time"
)

func TestNewRendererDefaults(t *testing.T) {
	r := NewRenderer(Options{})
	defer r.Close()

	if r.opts.WaitSelector != "body" {
		t.Fatalf("expected body wait selector, got %q", r.opts.WaitSelector)
	}
	if r.opts.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", r.opts.Timeout)
	}
	if r.opts.Settle != time.Second {
		t.Fatalf("expected 1s settle, got %s", r.opts.Settle)
	}
	if r.interval != MinRequestInterval {
		t.Fatalf("expected rate limit interval %s, got %s", MinRequestInterval, r.interval)
	}
}
