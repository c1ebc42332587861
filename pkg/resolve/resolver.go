package resolve

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/inventory"
	"github.com/matzehuels/crateup/pkg/observability"
)

// Options configures a [Resolver].
type Options struct {
	// Strict aborts resolution on the first failed lookup and cancels the
	// lookups still in flight. By default failures are isolated per package.
	Strict bool

	// Logger receives a warning for every isolated failure. Nil discards.
	Logger *log.Logger
}

// Failure records a registry lookup that did not produce a version.
type Failure struct {
	Name    string       `json:"name" yaml:"name"`
	Code    cerrors.Code `json:"code,omitempty" yaml:"code,omitempty"`
	Message string       `json:"error" yaml:"error"`
	Err     error        `json:"-" yaml:"-"`
}

func newFailure(name string, err error) Failure {
	return Failure{
		Name:    name,
		Code:    cerrors.GetCode(err),
		Message: cerrors.UserMessage(err),
		Err:     err,
	}
}

// Result is the outcome of resolving a batch of records.
type Result struct {
	// Records has one entry per input record, in input order. Registry
	// records whose lookup failed are returned unresolved.
	Records []inventory.Record

	// Failures lists the isolated lookup failures in input order.
	Failures []Failure
}

// Resolver fills in the latest published version of every registry record.
//
// A Resolver holds no per-run state and may be reused concurrently.
type Resolver struct {
	fetcher Fetcher
	strict  bool
	logger  *log.Logger
}

// New creates a Resolver that looks packages up with f.
func New(f Fetcher, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{fetcher: f, strict: opts.Strict, logger: logger}
}

// Resolve looks up every registry record concurrently, one goroutine per
// record, and waits for all of them. Records installed from version control
// or a local path are resolved to sentinels without any network access.
//
// Resolve returns an error only when ctx ends or, in strict mode, when a
// lookup fails. The input slice is not modified.
func (r *Resolver) Resolve(ctx context.Context, records []inventory.Record) (*Result, error) {
	out := make([]inventory.Record, len(records))
	errs := make([]error, len(records))
	hooks := observability.Lookup()

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		if !rec.Provenance.IsRegistry() {
			out[i] = rec.WithoutLookup()
			continue
		}
		g.Go(func() error {
			hooks.OnLookupStart(gctx, rec.Name)
			start := time.Now()
			l, err := r.fetcher.Fetch(gctx, rec.Name)
			hooks.OnLookupComplete(gctx, rec.Name, l.Latest, time.Since(start), err)

			if err != nil {
				out[i], errs[i] = rec, err
				if r.strict {
					return cerrors.Wrap(codeOf(err), err, "lookup %s", rec.Name)
				}
				return nil
			}
			out[i] = rec.WithLookup(l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Records: out}
	for i, err := range errs {
		if err == nil {
			continue
		}
		r.logger.Warn("lookup failed", "package", records[i].Name, "err", cerrors.UserMessage(err))
		res.Failures = append(res.Failures, newFailure(records[i].Name, err))
	}
	return res, nil
}

func codeOf(err error) cerrors.Code {
	if code := cerrors.GetCode(err); code != "" {
		return code
	}
	return cerrors.ErrCodeNetwork
}
