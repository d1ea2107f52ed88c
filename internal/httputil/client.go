// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by the classifier:
// a client with separate connect and read bounds, and a single-attempt
// round trip that reads the response body under the read bound.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 1 << 20

// ErrReadTimeout is returned when the response body does not finish
// arriving within the read timeout.
var ErrReadTimeout = errors.New("read timeout")

// ErrBodyTooLarge is returned when a 200 body is longer than maxBodyBytes.
var ErrBodyTooLarge = errors.New("response body exceeds 1 MiB")

// Timeouts bounds the two phases of a round trip. Connect covers dialing
// and the TLS handshake; Read covers waiting for the response headers and
// then reading the body.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
}

// NewClient returns an *http.Client whose transport enforces t.Connect on
// dialing and t.Read on waiting for response headers. The body read bound
// is applied per request by Do, so the client has no overall Timeout.
func NewClient(t Timeouts) *http.Client {
	dialer := &net.Dialer{Timeout: t.Connect}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   t.Connect,
		ResponseHeaderTimeout: t.Read,
		MaxIdleConns:          4,
		IdleConnTimeout:       30 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// Response is a completed round trip. Body is only read for 200 OK;
// for any other status it is nil and the payload is discarded unread.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do sends req once, with no retry. Dialing and waiting for the headers
// are bounded by the client's transport; reading the body is bounded by
// readTimeout, and an expired body read is reported as ErrReadTimeout.
// Any other transport fault is returned as is.
func Do(ctx context.Context, client *http.Client, req *http.Request, readTimeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &Response{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return out, nil
	}

	var expired atomic.Bool
	if readTimeout > 0 {
		timer := time.AfterFunc(readTimeout, func() {
			expired.Store(true)
			cancel()
		})
		defer timer.Stop()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if expired.Load() {
			return nil, fmt.Errorf("reading %s response: %w after %v", req.URL.Redacted(), ErrReadTimeout, readTimeout)
		}
		return nil, fmt.Errorf("reading %s response: %w", req.URL.Redacted(), err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("reading %s response: %w", req.URL.Redacted(), ErrBodyTooLarge)
	}
	out.Body = body
	return out, nil
}

// Status sends req once and reports only the status code. The body is
// closed unread, so a slow or stalled body does not affect the result.
func Status(ctx context.Context, client *http.Client, req *http.Request) (int, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
