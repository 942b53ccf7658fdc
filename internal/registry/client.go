// Package registry resolves IATI organisation identifiers against the public
// IATI Registry, with a cache in front so bulk imports do not hammer the API.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public IATI Registry API root.
const DefaultBaseURL = "https://iatiregistry.org"

// OrgInfo is what the registry knows about a publisher.
type OrgInfo struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Client calls the IATI Registry organization_show action.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different registry, typically a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient constructs a registry client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type organizationShowResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Name                      string `json:"name"`
		Title                     string `json:"title"`
		PublisherOrganizationType string `json:"publisher_organization_type"`
	} `json:"result"`
}

// Lookup fetches the registry record for one organisation identifier.
// Returns ErrUnknownOrg when the registry has no matching publisher.
func (c *Client) Lookup(ctx context.Context, ref string) (*OrgInfo, error) {
	endpoint := fmt.Sprintf("%s/api/3/action/organization_show?id=%s", c.baseURL, url.QueryEscape(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownOrg
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read registry response: %w", err)
	}
	var parsed organizationShowResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}
	if !parsed.Success {
		return nil, ErrUnknownOrg
	}

	name := parsed.Result.Title
	if name == "" {
		name = parsed.Result.Name
	}
	return &OrgInfo{
		Ref:  ref,
		Name: name,
		Type: parsed.Result.PublisherOrganizationType,
	}, nil
}
