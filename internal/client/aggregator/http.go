package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
)

// DefaultHTTPTimeout bounds every aggregator request.
const DefaultHTTPTimeout = 30 * time.Second

// VerifyResult is the answer of the verify endpoint.
type VerifyResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type pushResult struct {
	Accepted bool `json:"accepted"`
}

// Endpoint is the aggregator's remote API.
type Endpoint interface {
	Verify(ctx context.Context, code string) (VerifyResult, error)
	Push(ctx context.Context, p Payload) (bool, error)
}

// HTTPEndpoint talks to the aggregator over JSON/HTTP.
type HTTPEndpoint struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEndpoint returns an endpoint rooted at baseURL. A nil client gets
// a default one with DefaultHTTPTimeout.
func NewHTTPEndpoint(baseURL string, client *http.Client) *HTTPEndpoint {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPEndpoint{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (e *HTTPEndpoint) Verify(ctx context.Context, code string) (VerifyResult, error) {
	var out VerifyResult
	err := e.post(ctx, "/verify", map[string]string{"code": code}, &out)
	return out, err
}

func (e *HTTPEndpoint) Push(ctx context.Context, p Payload) (bool, error) {
	var out pushResult
	if err := e.post(ctx, "/push", p, &out); err != nil {
		return false, err
	}
	return out.Accepted, nil
}

func (e *HTTPEndpoint) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", common.ErrUnavailable, req.Method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", common.ErrUnavailable, path, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s returned %d", common.ErrUnavailable, path, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned %d", common.ErrUnauthorized, path, resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("aggregator %s returned %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrMalformedPayload, path, err)
	}
	return nil
}
