package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowtower/pkg/flow/layering"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
	"github.com/matzehuels/flowtower/pkg/observability"
)

// Comparison holds the levels each strategy assigns to one edge set.
type Comparison struct {
	Status Status
	Nodes  []identity.ID // all nodes, sorted
	Levels map[layering.Strategy]map[identity.ID]int
}

// Compare builds the filtered edge set once and levels it with every
// strategy concurrently. Nil strategies means [layering.Strategies].
// Layering options other than the strategy are taken from opts.
func Compare(ctx context.Context, records []ledger.Record, opts Options, strategies []layering.Strategy) (*Comparison, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(strategies) == 0 {
		strategies = layering.Strategies()
	}
	assigners := make([]layering.Assigner, len(strategies))
	for i, s := range strategies {
		lo := opts.layering
		lo.Strategy = s
		a, err := layering.New(lo)
		if err != nil {
			return nil, err
		}
		assigners[i] = a
	}

	st := prepare(records, opts)
	cmp := &Comparison{
		Status: st.status,
		Levels: make(map[layering.Strategy]map[identity.ID]int, len(strategies)),
	}
	if st.status != StatusOK {
		return cmp, nil
	}
	cmp.Nodes = nodesOf(st)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			observability.Pipeline().OnLayoutStart(ctx, s.String(), len(cmp.Nodes))
			start := time.Now()
			levels := assigners[i].Assign(st.edges)
			observability.Pipeline().OnLayoutComplete(ctx, s.String(), time.Since(start), nil)

			mu.Lock()
			cmp.Levels[s] = levels
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cmp, nil
}

func nodesOf(st stage) []identity.ID {
	seen := make(map[identity.ID]bool)
	var out []identity.ID
	for _, s := range st.summaries {
		for _, id := range []identity.ID{s.Source, s.Target} {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	slices.SortFunc(out, identity.Compare)
	return out
}
