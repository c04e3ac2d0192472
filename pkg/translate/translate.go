// Package translate rewrites raw interaction tables into the canonical
// vocabularies: metabolite identifiers become ChEBI IDs, protein identifiers
// become Ensembl gene IDs (ENSG). Orphan reaction placeholders
// (id_type = reaction_id) pass through untouched.
package translate

import (
	"context"

	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/resolve"
	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// Stats summarizes one translation pass. Resolution failures are counted,
// never raised: a partial batch still yields a usable network.
type Stats struct {
	Input         int
	Output        int
	DroppedSource int
	DroppedTarget int
}

// side selects which endpoint of a record a group refers to.
type side int

const (
	sideSource side = iota
	sideTarget
)

// groupKey partitions rows for the group→resolve-once→broadcast pass. A raw
// table may hold hundreds of thousands of rows over a few thousand distinct
// identifiers, so each distinct value is resolved exactly once per group.
// The GEM name is part of the key because metatlas ID spaces differ per GEM.
type groupKey struct {
	idType schemas.IDType
	entity schemas.EntityType
	gem    string
}

// Translator owns the resolver registry and organism context for a pipeline
// run.
type Translator struct {
	registry *resolve.Registry
	organism int
	log      *zap.Logger
}

func New(registry *resolve.Registry, organism int, log *zap.Logger) *Translator {
	return &Translator{
		registry: registry,
		organism: organism,
		log:      log.Named("translate"),
	}
}

// Translate resolves both endpoints of every row and drops rows where either
// endpoint could not be resolved. Surviving rows have id_type_a/id_type_b
// set to the canonical scheme for their entity role, except reaction_id
// placeholders which keep their scheme and value.
func (t *Translator) Translate(ctx context.Context, rows []schemas.Interaction) ([]schemas.Interaction, Stats) {
	stats := Stats{Input: len(rows)}

	sources := t.resolveSide(ctx, rows, sideSource)
	targets := t.resolveSide(ctx, rows, sideTarget)

	out := make([]schemas.Interaction, 0, len(rows))
	for i, row := range rows {
		src, srcOK := sources[i]
		tgt, tgtOK := targets[i]
		if !srcOK {
			stats.DroppedSource++
		}
		if !tgtOK {
			stats.DroppedTarget++
		}
		if !srcOK || !tgtOK {
			continue
		}

		translated := row.Clone()
		translated.Source = src
		translated.Target = tgt
		translated.IDTypeA = canonicalScheme(row.IDTypeA, row.SourceType)
		translated.IDTypeB = canonicalScheme(row.IDTypeB, row.TargetType)
		out = append(out, translated)
	}
	stats.Output = len(out)

	if stats.DroppedSource > 0 {
		t.log.Warn("dropped rows: metabolite/protein source ID not translatable",
			zap.Int("count", stats.DroppedSource))
	}
	if stats.DroppedTarget > 0 {
		t.log.Warn("dropped rows: target ID not translatable",
			zap.Int("count", stats.DroppedTarget))
	}
	t.log.Info("translation complete",
		zap.Int("input", stats.Input),
		zap.Int("output", stats.Output),
	)
	return out, stats
}

// resolveSide translates one endpoint column. Rows are grouped by
// (id_type, entity_type, gem); each group's distinct values are resolved
// once and broadcast back to every member row.
func (t *Translator) resolveSide(ctx context.Context, rows []schemas.Interaction, s side) map[int]string {
	groups := make(map[groupKey][]int)
	for i, row := range rows {
		key := groupKey{gem: row.GEMName()}
		if s == sideSource {
			key.idType, key.entity = row.IDTypeA, row.SourceType
		} else {
			key.idType, key.entity = row.IDTypeB, row.TargetType
		}
		groups[key] = append(groups[key], i)
	}

	resolved := make(map[int]string, len(rows))
	for key, indices := range groups {
		resolver, ok := t.resolverFor(key)
		if !ok {
			t.log.Debug("no resolver for identifier scheme, dropping group",
				zap.String("id_type", string(key.idType)),
				zap.String("entity", string(key.entity)),
				zap.Int("rows", len(indices)),
			)
			continue
		}

		meta := resolve.Meta{GEM: key.gem, Organism: t.organism}
		cache := make(map[string]string)
		for _, i := range indices {
			value := rows[i].Source
			if s == sideTarget {
				value = rows[i].Target
			}
			canonical, seen := cache[value]
			if !seen {
				if id, ok := resolver.Resolve(ctx, value, meta); ok {
					canonical = id
				}
				cache[value] = canonical
			}
			if canonical != "" {
				resolved[i] = canonical
			}
		}
	}
	return resolved
}

func (t *Translator) resolverFor(key groupKey) (resolve.Resolver, bool) {
	// Orphan reaction placeholders occupy a protein slot but are never
	// translated, whichever side they are on.
	if key.idType == schemas.IDTypeReactionID {
		return resolve.Passthrough(), true
	}
	if key.entity == schemas.EntitySmallMolecule {
		return t.registry.Metabolite(key.idType)
	}
	return t.registry.Protein(key.idType)
}

// canonicalScheme returns the post-translation identifier scheme for an
// endpoint: chebi for metabolites, ensg for proteins, reaction_id untouched.
func canonicalScheme(orig schemas.IDType, entity schemas.EntityType) schemas.IDType {
	if orig == schemas.IDTypeReactionID {
		return orig
	}
	if entity == schemas.EntitySmallMolecule {
		return schemas.IDTypeChebi
	}
	return schemas.IDTypeEnsg
}
