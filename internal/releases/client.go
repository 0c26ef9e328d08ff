package releases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	DefaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github.v3+json"
	maxPayloadSize = 16 << 20
)

var ErrRepoRequired = errors.New("releases: repository is required")

// StatusError reports a non-2xx response from the GitHub API.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("releases: GET %s returned %s", e.URL, e.Status)
}

// releasesSchema guards against error objects or truncated payloads being
// decoded as an empty release list.
var releasesSchema = validation.MustCompile(map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []any{"tag_name"},
		"properties": map[string]any{
			"tag_name":   map[string]any{"type": "string", "minLength": 1},
			"name":       map[string]any{"type": []any{"string", "null"}},
			"body":       map[string]any{"type": []any{"string", "null"}},
			"draft":      map[string]any{"type": "boolean"},
			"prerelease": map[string]any{"type": "boolean"},
		},
	},
})

// Client talks to the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  interfaces.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

func WithLogger(logger interfaces.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ListReleases fetches the release list of repo ("owner/name").
func (c *Client) ListReleases(ctx context.Context, repo string) ([]Release, error) {
	endpoint, err := c.endpoint(repo, "releases")
	if err != nil {
		return nil, err
	}
	endpoint += "?per_page=100"

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("releases: read %s: %w", endpoint, err)
	}
	if err := releasesSchema.ValidateJSON(raw); err != nil {
		return nil, fmt.Errorf("releases: unexpected payload from %s: %w", endpoint, err)
	}

	var list []Release
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&list); err != nil {
		return nil, fmt.Errorf("releases: decode %s: %w", endpoint, err)
	}
	c.logger.Debug("releases.list.fetched", "repo", repo, "count", len(list))
	return list, nil
}

// DownloadTarball streams the gzipped tarball of repo at ref. Callers close
// the returned reader.
func (c *Client) DownloadTarball(ctx context.Context, repo, ref string) (io.ReadCloser, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, errors.New("releases: ref is required")
	}
	endpoint, err := c.endpoint(repo, "tarball", ref)
	if err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("releases.tarball.opened", "repo", repo, "ref", ref)
	return resp.Body, nil
}

func (c *Client) endpoint(repo string, segments ...string) (string, error) {
	repo = strings.Trim(strings.TrimSpace(repo), "/")
	if repo == "" || !strings.Contains(repo, "/") {
		return "", ErrRepoRequired
	}
	parts := []string{c.baseURL, "repos", repo}
	for _, segment := range segments {
		// Refs such as refs/tags/v1.0.0 keep their slashes.
		parts = append(parts, escapePath(segment))
	}
	return strings.Join(parts, "/"), nil
}

func escapePath(segment string) string {
	pieces := strings.Split(segment, "/")
	for i, piece := range pieces {
		pieces[i] = url.PathEscape(piece)
	}
	return strings.Join(pieces, "/")
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("releases: build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", "go-blog-seeder")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("releases: GET %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.logger.Warn("releases.request.failed", "url", endpoint, "status", resp.StatusCode)
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}
