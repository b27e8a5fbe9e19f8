package converter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xxxbrian/geosite2abp/internal/source"
)

// Outcome is the result of one root item, or the fault that stopped it.
type Outcome struct {
	Result
	Err error
}

// Complete reports whether the root and every list it includes resolved
// without a fetch failure or fault.
func (o Outcome) Complete() bool {
	return o.Err == nil && o.Failures == 0
}

// ResolveAll resolves every root item with its own Resolver, running up to
// jobs roots at once. Outcomes keep the order of items. done, if set, is
// called once per finished root and may be called concurrently.
func ResolveAll(ctx context.Context, items []string, catalog *source.Catalog, f Fetcher, opts Options, jobs int, done func(Outcome)) []Outcome {
	if jobs < 1 {
		jobs = 1
	}
	outcomes := make([]Outcome, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, item := range items {
		g.Go(func() error {
			r := NewResolver(item, catalog.TemplateFor(item), f, opts)
			res, err := r.Run(gCtx)
			if err != nil {
				res = Result{Item: item, RootURL: r.RootURL()}
			}
			outcomes[i] = Outcome{Result: res, Err: err}
			if done != nil {
				done(outcomes[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
