package resolve

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Meta carries the extra context some resolvers need beyond the raw value.
type Meta struct {
	// GEM is the genome-scale model name for metatlas identifiers,
	// extracted from the record's "<prefix>:<gem-name>" resource label.
	GEM string

	// Organism is the NCBI taxonomy ID used by BioMart-style lookups.
	Organism int
}

// Resolver maps one identifier scheme onto a canonical vocabulary.
//
// Resolve returns the canonical ID and true, or ("", false) when the value
// cannot be resolved. Resolvers never fail on a missing entry, and network
// or parsing errors at the backend fold into a miss: a single flaky remote
// call must not abort a batch of tens of thousands of rows.
type Resolver interface {
	Resolve(ctx context.Context, raw string, meta Meta) (string, bool)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, raw string, meta Meta) (string, bool)

func (f ResolverFunc) Resolve(ctx context.Context, raw string, meta Meta) (string, bool) {
	return f(ctx, raw, meta)
}

// Passthrough returns values unchanged. Used for identifiers already in the
// canonical scheme (chebi, ensembl) and for reaction_id orphan placeholders.
func Passthrough() Resolver {
	return ResolverFunc(func(_ context.Context, raw string, _ Meta) (string, bool) {
		return raw, raw != ""
	})
}

// pickCandidate applies the tie-break rule: when a backing table yields more
// than one canonical ID for the same raw value, the lexicographically
// smallest candidate wins. Stable across runs and platforms, unlike
// iteration-order selection. Ambiguity is reported at debug level, never as
// an error.
func pickCandidate(log *zap.Logger, raw string, candidates []string) (string, bool) {
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)
	if log != nil {
		log.Debug("ambiguous mapping, using smallest candidate",
			zap.String("raw", raw),
			zap.Strings("candidates", sorted),
		)
	}
	return sorted[0], true
}
