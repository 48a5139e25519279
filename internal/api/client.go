// Package api is the JSON CRUD client for the remote planning store.
//
// The store speaks `{data: T}` success envelopes and `{error, details}` error
// envelopes; authentication and persistence internals are opaque to this
// client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const basePath = "/api/v1"

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

type Config struct {
	BaseURL string
	// Token, when set, is sent as a bearer token. Session handling itself is
	// the remote service's concern.
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    hc,
		log:     log,
	}
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Details []struct {
		Message string `json:"message"`
	} `json:"details,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + basePath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		for _, d := range env.Details {
			if m := strings.TrimSpace(d.Message); m != "" {
				apiErr.Details = append(apiErr.Details, m)
			}
		}
		switch {
		case len(apiErr.Details) > 0:
			apiErr.Message = apiErr.Details[0]
		case strings.TrimSpace(env.Error) != "":
			apiErr.Message = strings.TrimSpace(env.Error)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// one wraps the common one-entity call: issue the request, unwrap {data: T}.
func one[T any](c *Client, ctx context.Context, method, path string, query url.Values, body any) (T, error) {
	var env dataEnvelope[T]
	if err := c.do(ctx, method, path, query, body, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}
