package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/nytevibe/nyte/internal/shared"
)

// client performs JSON requests against the remote API. Shared by AuthService
// and VenueService so bearer-token attachment and envelope decoding behave
// identically across endpoints.
type client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func newClient(baseURL string, httpClient *http.Client, tokens TokenSource) client {
	if baseURL == "" {
		baseURL = "https://system.nytevibe.com/api"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return client{baseURL: baseURL, httpClient: httpClient, tokens: tokens}
}

// do issues a request and decodes the response envelope.
//
// The current bearer token, if any, is attached to every request. When authed
// is true, a 401 additionally invalidates the local credential before the
// error is returned; the server has revoked the session and the stored token
// is dead weight. Transport failures never touch local state and surface as
// [shared.ErrNetwork].
func (c *client) do(ctx context.Context, method, path string, payload any) (*apiResult, error) {
	return c.doAuthed(ctx, method, path, payload, false)
}

func (c *client) doAuthed(ctx context.Context, method, path string, payload any, authed bool) (*apiResult, error) {
	var body io.Reader
	if payload != nil {
		data, err := shared.MarshalJSON(payload, false)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	result := decodeEnvelope(resp.StatusCode, respBody)

	if authed && result.Err != nil && result.Err.Status == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Invalidate(); err != nil {
			// The revocation must still reach callers as Unauthorized; the
			// storage failure rides along as detail.
			return nil, fmt.Errorf("%w (failed to clear revoked credential: %v)", sessionError(result.Err), err)
		}
	}

	return result, nil
}
