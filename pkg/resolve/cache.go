package resolve

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Table is a raw→candidates dictionary produced by a bulk loader. A raw
// value may map to several canonical IDs; the tie-break in pickCandidate
// chooses one deterministically.
type Table map[string][]string

// TableLoader builds a complete cross-reference dictionary. Loaders run at
// most once per resolver lifetime; the result is cached until process exit.
type TableLoader func(ctx context.Context) (Table, error)

// CandidateResolver exposes the full candidate set for a raw value. The
// two-hop chain needs this: collapsing to a single intermediate before the
// second hop would discard valid final IDs.
type CandidateResolver interface {
	Resolver
	ResolveAll(ctx context.Context, raw string, meta Meta) []string
}

// bulkResolver backs a resolver with a dictionary that is downloaded or
// computed once, then queried with O(1) lookups. Population is guarded by
// singleflight so concurrent callers build the table at most once.
type bulkResolver struct {
	name   string
	load   TableLoader
	log    *zap.Logger
	group  singleflight.Group
	mu     sync.RWMutex
	table  Table
	failed bool
}

// NewBulk returns a resolver backed by a load-once dictionary. A loader
// failure is remembered: every subsequent lookup misses without retrying,
// and the failure is logged once.
func NewBulk(name string, load TableLoader, log *zap.Logger) CandidateResolver {
	return &bulkResolver{name: name, load: load, log: log.Named(name)}
}

// NewStatic returns a bulk resolver over a fixed in-memory table. Tests use
// this to substitute downloaded dictionaries.
func NewStatic(name string, table Table, log *zap.Logger) CandidateResolver {
	return NewBulk(name, func(context.Context) (Table, error) {
		return table, nil
	}, log)
}

func (b *bulkResolver) Resolve(ctx context.Context, raw string, meta Meta) (string, bool) {
	return pickCandidate(b.log, raw, b.ResolveAll(ctx, raw, meta))
}

func (b *bulkResolver) ResolveAll(ctx context.Context, raw string, _ Meta) []string {
	table := b.ensure(ctx)
	if table == nil {
		return nil
	}
	return table[raw]
}

func (b *bulkResolver) ensure(ctx context.Context) Table {
	b.mu.RLock()
	table, failed := b.table, b.failed
	b.mu.RUnlock()
	if table != nil || failed {
		return table
	}

	_, _, _ = b.group.Do(b.name, func() (interface{}, error) {
		b.mu.RLock()
		done := b.table != nil || b.failed
		b.mu.RUnlock()
		if done {
			return nil, nil
		}

		loaded, err := b.load(ctx)
		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			// Fail-soft: every value of this scheme becomes unresolved.
			b.failed = true
			b.log.Warn("failed to load mapping table, all lookups will miss", zap.Error(err))
			return nil, nil
		}
		b.table = loaded
		b.log.Info("mapping table loaded", zap.Int("entries", len(loaded)))
		return nil, nil
	})

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table
}

// ItemLookup resolves one raw value against a remote service, returning all
// candidate canonical IDs. An error is treated as a miss by the caller.
type ItemLookup func(ctx context.Context, raw string, meta Meta) ([]string, error)

// itemResolver backs a resolver with a per-item remote lookup, memoized per
// unique input value for the process lifetime. Misses are cached too, so a
// value that failed once is not retried within the run.
type itemResolver struct {
	name   string
	lookup ItemLookup
	log    *zap.Logger
	mu     sync.Mutex
	seen   map[string][]string
}

// NewPerItem returns a resolver that memoizes single-value remote lookups.
func NewPerItem(name string, lookup ItemLookup, log *zap.Logger) CandidateResolver {
	return &itemResolver{
		name:   name,
		lookup: lookup,
		log:    log.Named(name),
		seen:   make(map[string][]string),
	}
}

func (r *itemResolver) Resolve(ctx context.Context, raw string, meta Meta) (string, bool) {
	return pickCandidate(r.log, raw, r.ResolveAll(ctx, raw, meta))
}

func (r *itemResolver) ResolveAll(ctx context.Context, raw string, meta Meta) []string {
	r.mu.Lock()
	if candidates, ok := r.seen[raw]; ok {
		r.mu.Unlock()
		return candidates
	}
	r.mu.Unlock()

	candidates, err := r.lookup(ctx, raw, meta)
	if err != nil {
		// Transient failures become "unresolved", never a retry.
		r.log.Debug("lookup failed", zap.String("raw", raw), zap.Error(err))
		candidates = nil
	}

	r.mu.Lock()
	r.seen[raw] = candidates
	r.mu.Unlock()
	return candidates
}

// TwoHop chains two resolvers across an intermediate scheme, e.g.
// ensp→uniprot→ensg. Every intermediate candidate is resolved to the final
// scheme and the union of the results is tie-broken once.
func TwoHop(name string, first, second CandidateResolver, log *zap.Logger) Resolver {
	named := log.Named(name)
	return ResolverFunc(func(ctx context.Context, raw string, meta Meta) (string, bool) {
		union := make(map[string]struct{})
		for _, intermediate := range first.ResolveAll(ctx, raw, meta) {
			for _, final := range second.ResolveAll(ctx, intermediate, meta) {
				union[final] = struct{}{}
			}
		}
		finals := make([]string, 0, len(union))
		for id := range union {
			finals = append(finals, id)
		}
		sort.Strings(finals)
		return pickCandidate(named, raw, finals)
	})
}
