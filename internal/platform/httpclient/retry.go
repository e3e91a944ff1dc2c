package httpclient

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// doWithRetry executes the HTTP request with exponential backoff retry.
// Retries on network errors and retryable status codes (429, 5xx).
// The final response (or error) is written to *resp.
//
// Note: a response with a retryable status that exhausts all attempts is
// returned alongside a non-nil error; the caller decides whether to read or
// close the body.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, resp **http.Response) error {
	var lastErr error

	for attempt := 1; attempt <= c.retryCfg.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffInterval(attempt - 1)
			c.logger.Debug("retrying request",
				slog.String("service", c.serviceName),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if !isRetryableStatus(r.StatusCode) {
			*resp = r
			return nil
		}

		lastErr = fmt.Errorf("retryable status %d from %s", r.StatusCode, c.serviceName)

		if attempt == c.retryCfg.maxAttempts {
			// Keep the final response so the caller can inspect it.
			*resp = r
			break
		}

		// Drain and close so the connection can be reused for the retry.
		r.Body.Close()
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retryCfg.maxAttempts, lastErr)
}

// backoffInterval computes the exponential backoff duration for the given
// retry number (1-based), capped at maxInterval, with ±25% jitter to avoid
// thundering-herd retries against a recovering downstream.
func (c *Client) backoffInterval(retry int) time.Duration {
	interval := float64(c.retryCfg.initialInterval) * math.Pow(c.retryCfg.multiplier, float64(retry-1))
	if interval > float64(c.retryCfg.maxInterval) {
		interval = float64(c.retryCfg.maxInterval)
	}

	jitter := (secureRandFloat64()*0.5 - 0.25) * interval
	return time.Duration(interval + jitter)
}

// isRetryableStatus reports whether the status code warrants a retry.
// 429 (rate limited) and all 5xx responses are retryable; 4xx client errors
// are not, since repeating an invalid request cannot succeed.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// secureRandFloat64 returns a uniformly distributed float64 in [0, 1) using
// crypto/rand. Falls back to 0.5 (no jitter bias) if the source fails.
func secureRandFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / float64(1<<53)
}
