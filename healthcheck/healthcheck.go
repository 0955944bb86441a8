// Package healthcheck probes the RPC endpoints nodes claim to serve.
package healthcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// DefaultTimeout bounds a single probe including connection setup.
const DefaultTimeout = 3 * time.Second

// HTTPHealthChecker issues GET {url}/health. Any HTTP response counts as
// reachable; transport errors and timeouts fail the probe.
type HTTPHealthChecker struct {
	client  *http.Client
	timeout time.Duration
	log     *slog.Logger
}

func NewHTTPHealthChecker(timeout time.Duration, log *slog.Logger) *HTTPHealthChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cleanhttp.DefaultClient()
	client.Timeout = timeout
	return &HTTPHealthChecker{
		client:  client,
		timeout: timeout,
		log:     log,
	}
}

// Check probes rpcURL once. It does not retry.
func (h *HTTPHealthChecker) Check(ctx context.Context, rpcURL string) error {
	probeURL, err := healthURL(rpcURL)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrHealthCheckFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrHealthCheckFailed, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Debug("health check failed", "url", probeURL, "err", err)
		return fmt.Errorf("%w: %s: %w", interfaces.ErrHealthCheckFailed, probeURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	h.log.Debug("health check passed", "url", probeURL, "status", resp.StatusCode)
	return nil
}

func healthURL(rpcURL string) (string, error) {
	parsed, err := url.Parse(rpcURL)
	if err != nil {
		return "", fmt.Errorf("invalid rpc url %q: %w", rpcURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid rpc url %q: scheme must be http or https", rpcURL)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid rpc url %q: missing host", rpcURL)
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	target := parsed.JoinPath("health")
	target.Fragment = ""
	return target.String(), nil
}

// NoopHealthChecker accepts every endpoint.
type NoopHealthChecker struct{}

func (NoopHealthChecker) Check(ctx context.Context, rpcURL string) error {
	return nil
}
