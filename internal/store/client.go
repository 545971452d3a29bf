package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/foundation/errors"
	serrors "github.com/docpress/docpress/internal/store/errors"
)

// Client is the content-store contract consumed by the route and metadata
// resolvers. ListDocuments with an empty cursor fetches the first page;
// GetDocument reports a missing record via serrors.ErrDocumentNotFound.
type Client interface {
	ListDocuments(ctx context.Context, cursor string) (*Page, error)
	GetDocument(ctx context.Context, relPath string) (*ContentRecord, error)
}

// HTTPClient talks to the content store's per-branch HTTP API. The client
// owns its request timeout; callers own retry policy (the resolver
// deliberately never retries).
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
	branch     string
	token      string
	pageSize   int

	customHeaders map[string]string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the configured store.
func NewHTTPClient(cfg config.StoreConfig) *HTTPClient {
	return &HTTPClient{
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout()},
		endpoint:      cfg.Endpoint,
		branch:        cfg.Branch,
		token:         cfg.AuthToken,
		pageSize:      cfg.PageSize,
		customHeaders: make(map[string]string),
	}
}

// SetCustomHeader sets an extra header sent on every request (for stores
// fronted by gateways that want an API version or tenant header).
func (c *HTTPClient) SetCustomHeader(key, value string) {
	c.customHeaders[key] = value
}

// ListDocuments fetches one listing page. An empty cursor requests the first
// page. The page is validated at the boundary: a store claiming another page
// without handing back a cursor would loop a naive caller forever, so it is
// rejected here as a malformed page.
func (c *HTTPClient) ListDocuments(ctx context.Context, cursor string) (*Page, error) {
	endpoint := fmt.Sprintf("documents?first=%d", c.pageSize)
	if cursor != "" {
		endpoint += "&after=" + url.QueryEscape(cursor)
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := c.doRequest(req, &page); err != nil {
		return nil, err
	}

	if page.PageInfo.HasNextPage && page.PageInfo.EndCursor == "" {
		return nil, errors.StoreError("store reported another page without an end cursor").
			WithCause(serrors.ErrMalformedPage).
			WithContext("cursor", cursor).
			WithContext("edges", len(page.Edges)).
			Build()
	}

	return &page, nil
}

// GetDocument fetches a single record by root-relative path.
func (c *HTTPClient) GetDocument(ctx context.Context, relPath string) (*ContentRecord, error) {
	endpoint := "document?path=" + url.QueryEscape(relPath)

	req, err := c.newRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}

	var record ContentRecord
	if err := c.doRequest(req, &record); err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			return nil, fmt.Errorf("%w: %s", serrors.ErrDocumentNotFound, relPath)
		}
		return nil, err
	}

	return &record, nil
}

// newRequest builds a request against the per-branch API root. Endpoint is a
// relative path like "documents?first=50"; query strings are preserved and
// the endpoint base path survives the join.
func (c *HTTPClient) newRequest(ctx context.Context, method, endpoint string) (*http.Request, error) {
	cleanEndpoint := strings.TrimPrefix(endpoint, "/")

	var rawQuery string
	if idx := strings.Index(cleanEndpoint, "?"); idx != -1 {
		rawQuery = cleanEndpoint[idx+1:]
		cleanEndpoint = cleanEndpoint[:idx]
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.StoreError("failed to parse store endpoint").
			WithCause(err).
			WithContext("endpoint", c.endpoint).
			Build()
	}

	basePath := strings.TrimSuffix(u.Path, "/")
	u.Path = path.Join(basePath, c.branch, cleanEndpoint)
	if rawQuery != "" {
		u.RawQuery = rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.StoreError("failed to create store request").
			WithCause(err).
			WithContext("method", method).
			WithContext("url", u.String()).
			Build()
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "DocPress/1.0")

	for key, value := range c.customHeaders {
		req.Header.Set(key, value)
	}

	return req, nil
}

// doRequest executes a request and decodes the JSON response, mapping error
// statuses onto classified categories with a bounded diagnostic body.
func (c *HTTPClient) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkError("failed to execute store request").
			WithCause(err).
			WithContext("method", req.Method).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		// Read limited body for diagnostics
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

		category := errors.CategoryStore
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			category = errors.CategoryAuth
		case http.StatusNotFound:
			category = errors.CategoryNotFound
		}

		return errors.NewError(category, fmt.Sprintf("content store error: %s", resp.Status)).
			WithContext("status", resp.Status).
			WithContext("code", strconv.Itoa(resp.StatusCode)).
			WithContext("url", req.URL.String()).
			WithContext("response", bodyStr).
			Build()
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return errors.StoreError("failed to decode store response").
				WithCause(err).
				WithContext("url", req.URL.String()).
				Build()
		}
	}

	return nil
}
