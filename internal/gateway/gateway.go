// Package gateway is the remote data layer. The backend REST API is the
// authoritative store for products and blogs; nothing is persisted locally.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Upload is a named file destined for the multipart upload endpoint.
type Upload struct {
	Name   string
	Reader io.Reader
}

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// client carries what the entity gateways share: the base URL of the
// backend API and the protected HTTP client.
type client struct {
	baseURL string
	http    HTTPDoer
}

func newClient(baseURL string, doer HTTPDoer) client {
	return client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
	}
}

func (c client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
