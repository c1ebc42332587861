package crates

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/crateup/pkg/buildinfo"
	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/integrations"
)

// DefaultBaseURL is the crates.io API root.
const DefaultBaseURL = "https://crates.io/api/v1"

var jsonHeaders = map[string]string{"Accept": "application/json"}

// CrateInfo holds the registry metadata needed to decide whether an
// installed crate is out of date.
//
// Zero values: Repository and UpdatedAt are empty when crates.io reports
// null or omits them. NewestVersion is never empty in valid info.
type CrateInfo struct {
	Name          string // Crate name as published
	NewestVersion string // crate.newest_version, e.g. "1.0.193"
	Repository    string // Repository URL (may be empty)
	UpdatedAt     string // Raw ISO-8601 timestamp of the last publish (may be empty)
}

// Client provides access to the crates.io package registry API.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client.
//
// An empty baseURL selects [DefaultBaseURL]. Options are passed to the
// shared [integrations.Client], so callers can set a timeout, retry policy
// or a replacement User-Agent with [integrations.WithHeader].
func NewClient(baseURL string, opts ...integrations.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	return &Client{
		Client:  integrations.NewClient(headers, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchCrate retrieves the newest published version of a crate.
//
// The crate parameter is case-sensitive and must match the published crate name exactly.
//
// Returns:
//   - CrateInfo populated with metadata on success
//   - [integrations.ErrNotFound] if the crate doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - [integrations.ErrDecode] when the body is not JSON or lacks crate.newest_version
//   - an INVALID_PACKAGE error for names that cannot be crates
//
// The returned CrateInfo pointer is never nil if err is nil.
func (c *Client) FetchCrate(ctx context.Context, crate string) (*CrateInfo, error) {
	if err := cerrors.ValidateCrateName(crate); err != nil {
		return nil, err
	}

	var data crateResponse
	endpoint := fmt.Sprintf("%s/crates/%s", c.baseURL, url.PathEscape(crate))
	if err := c.Get(ctx, endpoint, jsonHeaders, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: crate %s", err, crate)
		}
		return nil, err
	}

	if data.Crate == nil || data.Crate.NewestVersion == nil || *data.Crate.NewestVersion == "" {
		return nil, fmt.Errorf("%w: crate %s: missing crate.newest_version", integrations.ErrDecode, crate)
	}

	info := &CrateInfo{
		Name:          crate,
		NewestVersion: *data.Crate.NewestVersion,
	}
	if data.Crate.Name != nil && *data.Crate.Name != "" {
		info.Name = *data.Crate.Name
	}
	if data.Crate.Repository != nil {
		info.Repository = *data.Crate.Repository
	}
	if data.Crate.UpdatedAt != nil {
		info.UpdatedAt = *data.Crate.UpdatedAt
	}
	return info, nil
}

// crateResponse uses pointers so that absent fields and JSON null can be
// told apart from empty strings.
type crateResponse struct {
	Crate *struct {
		Name          *string `json:"name"`
		NewestVersion *string `json:"newest_version"`
		Repository    *string `json:"repository"`
		UpdatedAt     *string `json:"updated_at"`
	} `json:"crate"`
}
