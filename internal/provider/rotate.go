package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Harshas66/smart-grocery-assistant/internal/metrics"

	"go.uber.org/zap"
)

// getWithRotation performs one logical provider call with credential
// rotation. Each attempt sends the current pool key; a rotate-signal status
// (401 unauthorized, 402 payment required, 429 rate limited) or any
// network-level failure advances the pool and retries with the next key.
// The budget is one full pass over the pool; when it is spent the call
// reports ErrUnavailable - the "no response" sentinel, distinct from a
// definitively-empty successful result.
//
// Attempts are sequential; only one credential is ever in flight. A timed
// out attempt consumes budget and rotates like any other failure. Parent
// context cancellation aborts immediately without further rotation.
func (c *Client) getWithRotation(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	attempts := c.keys.Len()
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := c.keys.Current()
		if key == "" {
			// Blank slots consume an attempt, same as the rejected-key case.
			c.rotate()
			continue
		}

		q := url.Values{}
		for name, vals := range query {
			q[name] = vals
		}
		q.Set("apiKey", key)

		reqURL := c.cfg.BaseURL + endpoint + "?" + q.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			// Context errors from the caller are not a provider failure.
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil, err
			}

			metrics.ProviderAttemptsTotal.WithLabelValues("network_error").Inc()
			c.logger.Debug("provider attempt failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			c.rotate()
			continue
		}

		if isRotateStatus(resp.StatusCode) {
			resp.Body.Close()

			metrics.ProviderAttemptsTotal.WithLabelValues("rotate").Inc()
			c.logger.Debug("provider rejected credential",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1),
				zap.Int("status", resp.StatusCode),
				zap.Duration("duration", duration),
			)
			c.rotate()
			continue
		}

		// Success or a plain failure status; either way this attempt got a
		// real answer, so the current key stays selected.
		metrics.ProviderAttemptsTotal.WithLabelValues("success").Inc()
		c.logger.Debug("provider attempt completed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return resp, nil
	}

	c.logger.Warn("provider credential pool exhausted",
		zap.String("endpoint", endpoint),
		zap.Int("attempts", attempts),
	)
	return nil, ErrUnavailable
}

func (c *Client) rotate() {
	c.keys.Advance()
	metrics.KeyRotationsTotal.Inc()
}

// isRotateStatus reports whether a status code means the current credential
// is exhausted, unauthorized or rate-limited and the next one should be
// tried.
func isRotateStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}
