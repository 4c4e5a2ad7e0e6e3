package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/logging"
)

// DefaultBaseURL is the public relay API root.
const DefaultBaseURL = "https://relay.firefox.com/api/v1/"

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 4096

// Options configures a Client.
type Options struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Token is the static API token sent as "Authorization: Token <value>".
	Token string

	// DryRun skips every write. Fixed for the lifetime of the client.
	DryRun bool

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero disables pacing.
	RateLimit float64
	// RateBurst is the limiter burst size. Defaults to 1.
	RateBurst int

	// HTTPClient supplies the base transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger receives one entry per request. Defaults to a discarding logger.
	Logger logrus.FieldLogger

	// NewRequestID generates X-Request-ID values. Defaults to uuid.NewString.
	NewRequestID func() string
}

// Client talks to the relay API.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	dryRun    bool
	log       logrus.FieldLogger
	requestID func() string
}

// New creates a client. The token is required even in dry-run mode because
// dry-run still reads from the API.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("relay: API token is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("relay: base URL %q must be http or https", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/") + "/"

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: opts.Token,
		TokenType:   "Token",
	}))
	httpClient.Timeout = opts.Timeout

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	requestID := opts.NewRequestID
	if requestID == nil {
		requestID = uuid.NewString
	}

	return &Client{
		baseURL:   baseURL,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, burst),
		dryRun:    opts.DryRun,
		log:       log,
		requestID: requestID,
	}, nil
}

// DryRun reports whether writes are skipped.
func (c *Client) DryRun() bool {
	return c.dryRun
}

// List returns every alias of the account.
func (c *Client) List(ctx context.Context) ([]alias.Alias, error) {
	var out []alias.Alias
	if err := c.do(ctx, "list", http.MethodGet, c.collectionURL(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []alias.Alias{}
	}
	return out, nil
}

// Get returns a single alias.
func (c *Client) Get(ctx context.Context, id int64) (alias.Alias, error) {
	var out alias.Alias
	err := c.do(ctx, "get", http.MethodGet, c.itemURL(id), nil, &out)
	return out, err
}

// Create asks the server for a new alias with default settings.
func (c *Client) Create(ctx context.Context) (alias.Alias, error) {
	if c.dryRun {
		c.log.WithFields(logrus.Fields{"op": "create", "dry_run": true}).Info("skipping create")
		return alias.Alias{}, ErrDryRun
	}
	var out alias.Alias
	err := c.do(ctx, "create", http.MethodPost, c.collectionURL(), struct{}{}, &out)
	return out, err
}

// Update sends a partial update and returns the server's merged record.
// In dry-run mode the patch is logged and the current record is returned.
func (c *Client) Update(ctx context.Context, id int64, patch alias.Patch) (alias.Alias, error) {
	if c.dryRun {
		c.log.WithFields(logrus.Fields{
			"op":       "update",
			"alias_id": id,
			"patch":    patchFields(patch),
			"dry_run":  true,
		}).Info("skipping update")
		return c.Get(ctx, id)
	}
	var out alias.Alias
	err := c.do(ctx, "update", http.MethodPatch, c.itemURL(id), patch, &out)
	return out, err
}

// Delete removes an alias. In dry-run mode nothing is sent and ErrDryRun is
// returned.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if c.dryRun {
		c.log.WithFields(logrus.Fields{"op": "delete", "alias_id": id, "dry_run": true}).Info("skipping delete")
		return ErrDryRun
	}
	return c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) collectionURL() string {
	return c.baseURL + "relayaddresses/"
}

func (c *Client) itemURL(id int64) string {
	return fmt.Sprintf("%srelayaddresses/%d/", c.baseURL, id)
}

// do performs one request. body is JSON-encoded when non-nil; out is decoded
// from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	reqID, ok := RequestIDFrom(ctx)
	if !ok {
		reqID = c.requestID()
	}
	remoteErr := func(status int, respBody string, err error) *RemoteError {
		return &RemoteError{
			Op:         op,
			Method:     method,
			URL:        url,
			StatusCode: status,
			Body:       respBody,
			RequestID:  reqID,
			Err:        err,
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return remoteErr(0, "", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("relay %s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("relay %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	entry := c.log.WithFields(logrus.Fields{
		"op":         op,
		"method":     method,
		"url":        url,
		"request_id": reqID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return remoteErr(0, "", err)
	}
	defer resp.Body.Close()

	entry = entry.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		entry.Warn("request rejected")
		return remoteErr(resp.StatusCode, strings.TrimSpace(string(data)), nil)
	}

	entry.Debug("request ok")

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return remoteErr(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func patchFields(p alias.Patch) logrus.Fields {
	fields := logrus.Fields{}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Enabled != nil {
		fields["enabled"] = *p.Enabled
	}
	if p.BlockListEmails != nil {
		fields["block_list_emails"] = *p.BlockListEmails
	}
	return fields
}
