// Package transport holds the HTTP plumbing shared by model backends.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// NewClient returns an instrumented HTTP client with the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Classify wraps a transport error with the matching domain sentinel:
// connection refusal becomes ErrServiceNotRunning, deadlines ErrBackendTimeout.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrBackendTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", domain.ErrBackendTimeout, err)
	}
	// Only a refused connection means nothing is listening; DNS and
	// routing failures are configuration errors.
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %w", domain.ErrServiceNotRunning, err)
	}
	return err
}

// StatusError wraps a non-200 response with ErrBackendStatus
// (or ErrRateLimited for 429).
func StatusError(provider string, status int, body []byte) error {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	sentinel := domain.ErrBackendStatus
	if status == http.StatusTooManyRequests {
		sentinel = domain.ErrRateLimited
	}
	return fmt.Errorf("%s: %w (status %d): %s", provider, sentinel, status, string(body))
}

// RetryAfter parses a Retry-After header given in seconds.
func RetryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
