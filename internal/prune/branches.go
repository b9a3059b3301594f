package prune

import (
	"github.com/jacoelho/tq/internal/flatten"
)

// rootKey names results of specs without fields.
const rootKey = ""

// BranchOptions controls Branches.
type BranchOptions struct {
	// Balanced pads every record with nil for each spec key it lacks, so
	// all records share one key set.
	Balanced bool

	// RequireSerializable fails on opaque leaves that cannot be serialized
	// instead of replacing them with their string form.
	RequireSerializable bool
}

// FlattenLeavesAt returns the result names of the specs with FlattenLeaves.
func (p *Pruner) FlattenLeavesAt() []string {
	var out []string
	for _, s := range p.specs {
		if s.FlattenLeaves {
			out = append(out, s.key)
		}
	}
	return out
}

// Branches prunes v and flattens the subtree into records. Record keys are
// joined with the Pruner's separator, the same one that names spec results,
// so balanced padding lines up with the flattened keys. A tree matching
// nothing yields no records.
//
// Only wildcard-only specs can leave a scalar or a sequence of scalars as
// the subtree; those rows are keyed by the root result name, "".
func (p *Pruner) Branches(v any, opts BranchOptions) ([]flatten.Record, error) {
	subtree, ok, err := p.Subtree(v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []flatten.Record{}, nil
	}

	flatOpts := []flatten.Option{
		flatten.WithSeparator(p.syntax.Separator),
		flatten.WithFlattenLeavesAt(p.FlattenLeavesAt()...),
		flatten.WithRequireSerializable(opts.RequireSerializable),
		flatten.WithRecursionLimit(p.limit),
		flatten.WithLogger(p.logger),
	}
	flat, err := flatten.Flatten(subtree, flatOpts...)
	if err != nil {
		return nil, err
	}
	records, tabular := flat.([]flatten.Record)
	if !tabular {
		records, err = flatten.Records(subtree, append(flatOpts, flatten.WithPrefix(rootKey))...)
		if err != nil {
			return nil, err
		}
	}

	if opts.Balanced {
		keys := p.Keys()
		for _, record := range records {
			for _, k := range keys {
				if _, ok := record[k]; !ok {
					record[k] = nil
				}
			}
		}
	}
	return records, nil
}
