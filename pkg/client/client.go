// Package client talks to the audit-management REST backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ams-studio/ams/pkg/logging"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/session"
)

const maxBodyBytes = 16 << 20

// Client is the data service. It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	store          *session.Store
	log            *zap.Logger
	onUnauthorized func()
	newID          func() string

	audits singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// WithUnauthorizedHook registers fn to run after a 401/403 cleared the session.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a Client for baseURL (for example https://host/api/v1).
func New(baseURL string, timeout time.Duration, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   store,
		log:     zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAudits fetches every audit. Concurrent calls share one request.
func (c *Client) ListAudits(ctx context.Context) ([]models.Audit, error) {
	ch := c.audits.DoChan("audit", func() (any, error) {
		var audits []models.Audit
		// Detached so one caller giving up does not fail the others;
		// the http.Client timeout still bounds the request.
		if err := c.do(context.WithoutCancel(ctx), http.MethodGet, "audit", nil, &audits); err != nil {
			return nil, err
		}
		return audits, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]models.Audit)
		out := make([]models.Audit, len(shared))
		copy(out, shared)
		return out, nil
	}
}

// ListInputsForAudit fetches the person records attached to an audit.
func (c *Client) ListInputsForAudit(ctx context.Context, auditID int64, kind models.Kind) ([]models.Input, error) {
	resource := "commonInput"
	if kind == models.KindAFIP {
		resource = "afipInput"
	}
	var inputs []models.Input
	if err := c.do(ctx, http.MethodGet, resource+"/"+strconv.FormatInt(auditID, 10), nil, &inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}

// Authenticate exchanges credentials for a raw JWT.
func (c *Client) Authenticate(ctx context.Context, creds models.Credentials) (string, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "user/authenticate", creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("authenticate: empty token in response")
	}
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.store.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", reqID), zap.Error(err))
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}
	c.log.Debug("request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.String("request_id", reqID),
		zap.Duration("latency", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.log.Warn("session rejected by backend; clearing",
			zap.Int("status", resp.StatusCode), zap.String("request_id", reqID))
		if err := c.store.Clear(ctx); err != nil {
			c.log.Warn("clear session", zap.Error(err))
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &AuthError{Status: resp.StatusCode, Message: errorMessage(data)}
	case resp.StatusCode >= 400:
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// errorMessage extracts the backend's {"message": "..."} field.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}
