// Package pkn assembles the metabolite-protein prior-knowledge network. It
// collects raw records from registered sources, unifies identifiers onto
// ChEBI and ENSG, removes curated false positives, and optionally applies
// the COSMOS node-ID formatting.
package pkn

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/blacklist"
	"github.com/omnipathdb/metabopkn/pkg/format"
	"github.com/omnipathdb/metabopkn/pkg/resolve"
	"github.com/omnipathdb/metabopkn/pkg/schemas"
	"github.com/omnipathdb/metabopkn/pkg/translate"
)

// Options controls one build run.
type Options struct {
	Organism       int
	TranslateIDs   bool
	ApplyBlacklist bool
	Blacklist      []blacklist.Entry
	IncludeOrphans bool
}

// DefaultOptions matches the production build: human, translated,
// blacklisted, orphan reactions dropped at formatting.
func DefaultOptions() Options {
	return Options{
		Organism:       9606,
		TranslateIDs:   true,
		ApplyBlacklist: true,
	}
}

// Report carries per-stage counts for one build run.
type Report struct {
	Collected   map[string]int
	Total       int
	Translation translate.Stats
	Blacklisted int
	Formatting  format.Stats
}

// Builder runs the collect, translate, blacklist pipeline over a set of
// sources. The resolver registry may be nil when TranslateIDs is off.
type Builder struct {
	registry *resolve.Registry
	opts     Options
	log      *zap.Logger
}

func NewBuilder(registry *resolve.Registry, opts Options, log *zap.Logger) *Builder {
	return &Builder{
		registry: registry,
		opts:     opts,
		log:      log.Named("pkn"),
	}
}

// Collect gathers raw records from every source. Any failing source fails
// the whole build; a partial network silently missing one resource is worse
// than no network.
func (b *Builder) Collect(ctx context.Context, sources []Source) ([]schemas.Interaction, map[string]int, error) {
	rows := make([]schemas.Interaction, 0)
	counts := make(map[string]int, len(sources))

	for _, src := range sources {
		b.log.Info("collecting resource", zap.String("resource", src.Name()))
		records, err := src.Interactions(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("resource %s: %w", src.Name(), err)
		}
		counts[src.Name()] = len(records)
		rows = append(rows, records...)
	}

	b.log.Info("collection complete",
		zap.Int("edges", len(rows)),
		zap.Int("resources", len(sources)),
	)
	return rows, counts, nil
}

// Build collects, translates, and blacklists. The result still carries raw
// node IDs; Format applies the COSMOS convention separately.
func (b *Builder) Build(ctx context.Context, sources []Source) ([]schemas.Interaction, *Report, error) {
	rows, counts, err := b.Collect(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	report := &Report{Collected: counts}

	if b.opts.TranslateIDs {
		if b.registry == nil {
			return nil, nil, fmt.Errorf("id translation requested but no resolver registry configured")
		}
		tr := translate.New(b.registry, b.opts.Organism, b.log)
		rows, report.Translation = tr.Translate(ctx, rows)
	}

	if b.opts.ApplyBlacklist {
		before := len(rows)
		rows = blacklist.Apply(rows, b.opts.Blacklist, b.log)
		report.Blacklisted = before - len(rows)
	}

	report.Total = len(rows)
	return rows, report, nil
}

// BuildFormatted runs Build and then applies the node-ID formatting,
// producing the final COSMOS-ready table.
func (b *Builder) BuildFormatted(ctx context.Context, sources []Source) ([]schemas.Interaction, *Report, error) {
	rows, report, err := b.Build(ctx, sources)
	if err != nil {
		return nil, nil, err
	}

	formatted, stats, err := format.New(b.log).Format(rows, b.opts.IncludeOrphans)
	if err != nil {
		return nil, nil, err
	}
	report.Formatting = stats
	report.Total = len(formatted)
	return formatted, report, nil
}

// TransporterRows keeps only transporter interactions: the shared transport
// label, GEM transport edges, and STITCH's own transporter class.
func TransporterRows(rows []schemas.Interaction) []schemas.Interaction {
	return filter(rows, func(r schemas.Interaction) bool {
		return r.InteractionType == schemas.InteractionTransport ||
			strings.HasPrefix(r.Resource, schemas.GEMTransporterPrefix) ||
			(r.Resource == schemas.ResourceSTITCH && r.InteractionType == schemas.InteractionTransporter)
	})
}

// ReceptorRows keeps only ligand-receptor interactions.
func ReceptorRows(rows []schemas.Interaction) []schemas.Interaction {
	return filter(rows, func(r schemas.Interaction) bool {
		return r.InteractionType == schemas.InteractionLigRec ||
			(r.Resource == schemas.ResourceSTITCH && r.InteractionType == schemas.InteractionReceptor)
	})
}

// AllostericRows keeps small molecules that activate or inhibit proteins:
// the shared allosteric label plus STITCH's unclassified regulatory edges.
func AllostericRows(rows []schemas.Interaction) []schemas.Interaction {
	return filter(rows, func(r schemas.Interaction) bool {
		return r.InteractionType == schemas.InteractionAllosteric ||
			(r.Resource == schemas.ResourceSTITCH && r.InteractionType == schemas.InteractionOther)
	})
}

// EnzymeMetaboliteRows keeps only metabolic interactions. The "GEM:" prefix
// check deliberately excludes "GEM_transporter:" resources.
func EnzymeMetaboliteRows(rows []schemas.Interaction) []schemas.Interaction {
	return filter(rows, func(r schemas.Interaction) bool {
		return r.InteractionType == schemas.InteractionAllosteric ||
			strings.HasPrefix(r.Resource, schemas.GEMPrefix+":") ||
			(r.Resource == schemas.ResourceSTITCH && r.InteractionType == schemas.InteractionOther)
	})
}

// BuildTransporters builds and post-filters to the transporter subset.
func (b *Builder) BuildTransporters(ctx context.Context, sources []Source) ([]schemas.Interaction, *Report, error) {
	return b.buildSubset(ctx, sources, TransporterRows)
}

// BuildReceptors builds and post-filters to the receptor subset.
func (b *Builder) BuildReceptors(ctx context.Context, sources []Source) ([]schemas.Interaction, *Report, error) {
	return b.buildSubset(ctx, sources, ReceptorRows)
}

// BuildAllosteric builds and post-filters to the allosteric subset.
func (b *Builder) BuildAllosteric(ctx context.Context, sources []Source) ([]schemas.Interaction, *Report, error) {
	return b.buildSubset(ctx, sources, AllostericRows)
}

// BuildEnzymeMetabolite builds and post-filters to the metabolic subset.
func (b *Builder) BuildEnzymeMetabolite(ctx context.Context, sources []Source) ([]schemas.Interaction, *Report, error) {
	return b.buildSubset(ctx, sources, EnzymeMetaboliteRows)
}

func (b *Builder) buildSubset(
	ctx context.Context,
	sources []Source,
	subset func([]schemas.Interaction) []schemas.Interaction,
) ([]schemas.Interaction, *Report, error) {
	rows, report, err := b.Build(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	rows = subset(rows)
	report.Total = len(rows)
	return rows, report, nil
}

// WithoutConnectors drops the synthetic connector edges. They are required
// by the downstream COSMOS tooling but get in the way of inspection.
func WithoutConnectors(rows []schemas.Interaction) []schemas.Interaction {
	return filter(rows, func(r schemas.Interaction) bool {
		return !r.IsConnector()
	})
}

func filter(rows []schemas.Interaction, keep func(schemas.Interaction) bool) []schemas.Interaction {
	out := make([]schemas.Interaction, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
