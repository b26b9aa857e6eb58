// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the throttled, retrying HTTP layer shared by
// the destination search backends.
// Implements: prd003-fetch (R1-R4).
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	// Unavailable means the destination could not be reached or kept
	// failing transiently after retries were exhausted. The item can be
	// retried on a later run.
	Unavailable ErrorKind = iota

	// Malformed means the destination rejected the request outright
	// (HTTP 4xx other than 429). Retrying the same request will not help.
	Malformed
)

func (k ErrorKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// FetchError is the failure type returned by the fetch layer. Callers
// distinguish kinds with errors.As so the matcher can classify the item
// instead of treating a fetch failure as "no match".
type FetchError struct {
	Kind  ErrorKind
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("fetch %s (%q): %v", e.Kind, e.Query, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// retryable reports whether an HTTP status indicates a transient failure
// worth retrying: rate limiting or a server-side error.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries transient failures
// (transport errors, HTTP 429, HTTP 5xx) with exponential backoff. The
// delay starts at RetryBaseDelay and doubles each attempt. Every retry
// attempt goes back through the throttle (when one is given), so retries
// never space outbound requests closer than the configured interval.
//
// When maxRetries is 0 the default (3) is used. On each retry the response
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). Exhausting retries
// yields a FetchError of kind Unavailable; a non-retryable HTTP status
// yields kind Malformed immediately. A non-nil response is returned only
// with a nil error.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, throttle *Throttle, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = err
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case !retryable(resp.StatusCode):
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, &FetchError{
				Kind: Malformed,
				Err:  fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host),
			}
		default:
			lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt >= maxRetries {
			return nil, &FetchError{Kind: Unavailable, Err: lastErr}
		}

		// The failed attempt still counts against the inter-request
		// spacing: mark it done, back off, then re-enter the throttle.
		if throttle != nil {
			throttle.Done()
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if throttle != nil {
			if err := throttle.Wait(ctx); err != nil {
				return nil, err
			}
		}
	}
}
