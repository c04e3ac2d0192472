package translate

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/resolve"
	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// TotalResource labels the aggregate row appended to a vocabulary
// comparison.
const TotalResource = "TOTAL"

// ResourceCoverage reports, for one resource, how many of its distinct
// metabolite identifiers resolve into each target vocabulary. The numbers
// back the decision whether switching the canonical metabolite vocabulary
// from ChEBI to HMDB would reduce information loss.
type ResourceCoverage struct {
	Resource          string
	Edges             int // metabolite-side occurrences, duplicates included
	UniqueMetabolites int
	ChebiResolved     int
	HMDBResolved      int
	ChebiOnly         int
	HMDBOnly          int
	Both              int
}

// metOccurrence is one metabolite-side appearance in the raw table. GEM
// context travels with the occurrence because metatlas ID spaces differ
// per model.
type metOccurrence struct {
	id     string
	idType schemas.IDType
	gem    string
}

// CompareVocabularies attempts both ChEBI and HMDB resolution for every
// distinct metabolite identifier of an untranslated table and returns
// per-resource coverage plus a TOTAL row. Rows where the small molecule sits
// on either endpoint contribute; duplicates within a resource are counted
// once. Resolution misses are coverage gaps, never errors.
func (t *Translator) CompareVocabularies(ctx context.Context, rows []schemas.Interaction) []ResourceCoverage {
	byResource := make(map[string][]metOccurrence)
	for _, row := range rows {
		if row.SourceType == schemas.EntitySmallMolecule {
			byResource[row.Resource] = append(byResource[row.Resource],
				metOccurrence{id: row.Source, idType: row.IDTypeA, gem: row.GEMName()})
		}
		if row.TargetType == schemas.EntitySmallMolecule {
			byResource[row.Resource] = append(byResource[row.Resource],
				metOccurrence{id: row.Target, idType: row.IDTypeB, gem: row.GEMName()})
		}
	}

	resources := make([]string, 0, len(byResource))
	for r := range byResource {
		resources = append(resources, r)
	}
	sort.Strings(resources)

	out := make([]ResourceCoverage, 0, len(resources)+1)
	var all []metOccurrence
	for _, resource := range resources {
		occs := byResource[resource]
		out = append(out, t.coverageFor(ctx, resource, occs))
		all = append(all, occs...)
	}
	out = append(out, t.coverageFor(ctx, TotalResource, all))

	for _, cov := range out {
		t.log.Info("vocabulary coverage",
			zap.String("resource", cov.Resource),
			zap.Int("unique_metabolites", cov.UniqueMetabolites),
			zap.Int("chebi", cov.ChebiResolved),
			zap.Int("hmdb", cov.HMDBResolved),
		)
	}
	return out
}

func (t *Translator) coverageFor(ctx context.Context, resource string, occs []metOccurrence) ResourceCoverage {
	cov := ResourceCoverage{Resource: resource, Edges: len(occs)}

	type metKey struct {
		id     string
		idType schemas.IDType
	}
	seen := make(map[metKey]struct{}, len(occs))

	for _, o := range occs {
		key := metKey{id: o.id, idType: o.idType}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		meta := resolve.Meta{GEM: o.gem, Organism: t.organism}
		chebiOK := resolves(ctx, t.registry.Metabolite, o, meta)
		hmdbOK := resolves(ctx, t.registry.MetaboliteHMDB, o, meta)

		if chebiOK {
			cov.ChebiResolved++
		}
		if hmdbOK {
			cov.HMDBResolved++
		}
		switch {
		case chebiOK && hmdbOK:
			cov.Both++
		case chebiOK:
			cov.ChebiOnly++
		case hmdbOK:
			cov.HMDBOnly++
		}
	}
	cov.UniqueMetabolites = len(seen)
	return cov
}

func resolves(
	ctx context.Context,
	vocabulary func(schemas.IDType) (resolve.Resolver, bool),
	o metOccurrence,
	meta resolve.Meta,
) bool {
	resolver, ok := vocabulary(o.idType)
	if !ok {
		return false
	}
	_, ok = resolver.Resolve(ctx, o.id, meta)
	return ok
}
