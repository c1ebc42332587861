package resolve

import (
	"context"
	"errors"

	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/integrations"
	"github.com/matzehuels/crateup/pkg/integrations/crates"
	"github.com/matzehuels/crateup/pkg/inventory"
)

// Fetcher retrieves the newest published version of a registry package.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (inventory.Lookup, error)
}

// FetcherFunc adapts an ordinary function to the [Fetcher] interface.
type FetcherFunc func(ctx context.Context, name string) (inventory.Lookup, error)

// Fetch calls f(ctx, name).
func (f FetcherFunc) Fetch(ctx context.Context, name string) (inventory.Lookup, error) {
	return f(ctx, name)
}

// Crates is a [Fetcher] backed by the crates.io API.
type Crates struct {
	client *crates.Client
}

// NewCrates wraps a crates.io client.
func NewCrates(client *crates.Client) *Crates {
	return &Crates{client: client}
}

// Fetch looks up name on crates.io and converts the response to a Lookup.
// Errors carry a NOT_FOUND, NETWORK_ERROR or INVALID_RESPONSE code.
func (c *Crates) Fetch(ctx context.Context, name string) (inventory.Lookup, error) {
	info, err := c.client.FetchCrate(ctx, name)
	if err != nil {
		return inventory.Lookup{}, classify(err)
	}
	return inventory.Lookup{
		Latest:     info.NewestVersion,
		Repository: info.Repository,
		UpdatedAt:  inventory.ParseTimestamp(info.UpdatedAt),
	}, nil
}

func classify(err error) error {
	switch {
	case cerrors.GetCode(err) != "":
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, integrations.ErrNotFound):
		return cerrors.Wrap(cerrors.ErrCodeNotFound, err, "not published on the registry")
	case errors.Is(err, integrations.ErrDecode):
		return cerrors.Wrap(cerrors.ErrCodeInvalidResponse, err, "unexpected registry response")
	default:
		return cerrors.Wrap(cerrors.ErrCodeNetwork, err, "registry request failed")
	}
}
