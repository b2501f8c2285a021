package manifests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

// HTTPConfig configures the HTTP manifest client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient fetches project manifests from a static asset server.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ dashboard.ManifestSource = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the manifest endpoints.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("manifests: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchData loads /data/{project}-injected.json.
func (c *HTTPClient) FetchData(ctx context.Context, project string) (dashboard.DataManifest, error) {
	var doc dashboard.DataManifest
	if _, err := c.get(ctx, "/data/"+url.PathEscape(project)+"-injected.json", &doc); err != nil {
		return dashboard.DataManifest{}, err
	}
	return doc, nil
}

// FetchLayout loads /layouts/{project}_layout.json. A 404 means the project
// uses the default layout.
func (c *HTTPClient) FetchLayout(ctx context.Context, project string) (dashboard.LayoutManifest, error) {
	var doc dashboard.LayoutManifest
	status, err := c.get(ctx, "/layouts/"+url.PathEscape(project)+"_layout.json", &doc)
	if status == http.StatusNotFound {
		return dashboard.LayoutManifest{}, fmt.Errorf("manifests: layout for %s: %w", project, dashboard.ErrLayoutNotFound)
	}
	if err != nil {
		return dashboard.LayoutManifest{}, err
	}
	return doc, nil
}

// FetchColumnAliases loads /data/column_aliases/{project}.json.
func (c *HTTPClient) FetchColumnAliases(ctx context.Context, project string) (dashboard.ColumnAliases, error) {
	aliases := dashboard.ColumnAliases{}
	if _, err := c.get(ctx, "/data/column_aliases/"+url.PathEscape(project)+".json", &aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, target any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("manifests: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("manifests: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp.StatusCode, fmt.Errorf("manifests: remote error %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return resp.StatusCode, fmt.Errorf("manifests: decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
