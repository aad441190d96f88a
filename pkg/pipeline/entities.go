package pipeline

import (
	"strings"

	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/identity"
	"github.com/matzehuels/flowtower/pkg/ledger"
)

// Directory lists the entities of a dataset before any threshold, search
// or focus is applied. It backs entity selectors in the CLI and server.
type Directory struct {
	mode  identity.Mode
	edges []flow.Edge
}

// NewDirectory builds the unfiltered edge set of records using the mode
// and kinds in opts. Other filters in opts are ignored.
func NewDirectory(records []ledger.Record, opts Options) (*Directory, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	edges, _ := flow.BuildEdges(records, flow.BuildOptions{
		Mode:     opts.mode,
		Kinds:    opts.kinds,
		AllKinds: opts.AllKinds,
	})
	return &Directory{mode: opts.mode, edges: edges}, nil
}

// Entities returns every entity, sorted.
func (d *Directory) Entities() []identity.ID {
	return flow.Entities(d.edges)
}

// Search returns the entities whose ID contains term, case-insensitively.
// A blank term returns every entity.
func (d *Directory) Search(term string) []identity.ID {
	all := d.Entities()
	term = identity.Normalize(term)
	if term == "" {
		return all
	}
	out := all[:0]
	for _, id := range all {
		if strings.Contains(strings.ToUpper(id.String()), term) {
			out = append(out, id)
		}
	}
	return out
}

// Suggest returns up to n entities close to term by edit distance.
func (d *Directory) Suggest(term string, n int) []identity.ID {
	return flow.Suggest(d.Entities(), term, n)
}

// Counterparties returns the entities that exchanged money with the entity
// named by id. The name is resolved in the directory's mode.
func (d *Directory) Counterparties(id string) []identity.ID {
	target := parseID(id, d.mode)
	if target.IsZero() {
		return nil
	}
	return flow.Counterparties(d.edges, target)
}

// Resolve parses an entity name in the directory's mode.
func (d *Directory) Resolve(id string) identity.ID {
	return parseID(id, d.mode)
}

// Len returns the number of eligible raw edges.
func (d *Directory) Len() int { return len(d.edges) }
