// Package format applies the COSMOS node-ID convention to a translated
// interaction table and synthesizes the connector edges that link bare
// canonical IDs to their formatted node names.
//
// Node IDs are parsed by downstream R tooling and are bit-exact:
//
//	Metab__CHEBI:30616_c       metabolite, compartment c
//	Metab__CHEBI:30616         metabolite, compartment unknown
//	Gene12__ENSG00000141510    gene, reaction index 12
//	Gene12__ENSG00000141510_rev  reverse direction of the same reaction
package format

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// ErrAlreadyFormatted is returned when an input row carries the
// cosmos_formatted marker: applying the formatter twice would double-prefix
// every node ID, so reprocessing is refused outright.
var ErrAlreadyFormatted = errors.New("input already cosmos-formatted")

// Stats summarizes one formatting pass.
type Stats struct {
	PreExpanded  int // rows renamed in place (GEM, Recon3D)
	Transporters int // input rows expanded by the 4-edge rule
	Simple       int // receptor/other rows relabeled
	Connectors   int // synthetic connector edges appended
}

// connectorPair is one bare-ID → formatted-node link, deduplicated across
// the whole batch.
type connectorPair struct {
	bare      string
	formatted string
}

// Formatter rewrites node IDs and accumulates connector pairs. One
// Formatter instance handles one batch.
type Formatter struct {
	log        *zap.Logger
	connectors map[connectorPair]struct{}
}

func New(log *zap.Logger) *Formatter {
	return &Formatter{
		log:        log.Named("format"),
		connectors: make(map[connectorPair]struct{}),
	}
}

// Format applies node-ID formatting to a translated table and appends the
// connector edges. When includeOrphans is false, orphan pseudo-enzyme rows
// are dropped before formatting.
func (f *Formatter) Format(rows []schemas.Interaction, includeOrphans bool) ([]schemas.Interaction, Stats, error) {
	var stats Stats

	kept := make([]schemas.Interaction, 0, len(rows))
	for _, row := range rows {
		if row.Attrs.CosmosFormatted {
			return nil, stats, fmt.Errorf("row %s → %s: %w", row.Source, row.Target, ErrAlreadyFormatted)
		}
		if !includeOrphans && row.Attrs.Orphan {
			continue
		}
		kept = append(kept, row)
	}

	categories := make([]schemas.Category, len(kept))
	for i, row := range kept {
		categories[i] = Categorize(row.InteractionType, row.Resource)
	}
	indices := assignReactionIndex(kept, categories)

	out := make([]schemas.Interaction, 0, len(kept))
	for i, row := range kept {
		switch {
		case row.IsPreExpanded():
			out = append(out, f.formatPreExpanded(row, indices[i]))
			stats.PreExpanded++
		case categories[i] == schemas.CategoryTransporter:
			out = append(out, f.formatTransporter(row, indices[i])...)
			stats.Transporters++
		default:
			out = append(out, f.formatSimple(row, indices[i]))
			stats.Simple++
		}
	}

	connectors := f.connectorRows()
	stats.Connectors = len(connectors)
	out = append(out, connectors...)

	f.log.Info("node formatting complete",
		zap.Int("pre_expanded", stats.PreExpanded),
		zap.Int("transporters_expanded", stats.Transporters),
		zap.Int("simple", stats.Simple),
		zap.Int("connector_edges", stats.Connectors),
	)
	return out, stats, nil
}

// formatPreExpanded renames one row from a resource that already contains
// both directions of its reactions. The topology is untouched; only the
// node IDs gain their prefixes, with _rev on genes of reverse-direction
// rows.
func (f *Formatter) formatPreExpanded(row schemas.Interaction, n int) schemas.Interaction {
	comp := ""
	if len(row.Locations) > 0 {
		comp = row.Locations[0]
	}

	bareMet, bareGene := row.Source, row.Target
	if !row.MetaboliteIsSource() {
		bareMet, bareGene = row.Target, row.Source
	}

	fmtMet := metNode(bareMet, comp)
	fmtGene := geneNode(bareGene, n, row.Attrs.Reverse)
	f.addConnector(bareMet, fmtMet)
	f.addConnector(bareGene, fmtGene)

	out := row.Clone()
	if row.MetaboliteIsSource() {
		out.Source, out.Target = fmtMet, fmtGene
	} else {
		out.Source, out.Target = fmtGene, fmtMet
	}
	out.Attrs.CosmosFormatted = true
	return out
}

// formatTransporter expands one forward metabolite→protein transport fact
// into the four-edge membrane convention:
//
//	met[other] → GeneN          met enters the transporter
//	GeneN      → met[c]         met exits on the cytoplasm side
//	met[c]     → GeneN_rev      reverse: met re-enters
//	GeneN_rev  → met[other]     reverse: met exits
//
// With no compartment information both metabolite endpoints collapse onto
// the same bare node; the four edges still exist.
func (f *Formatter) formatTransporter(row schemas.Interaction, n int) []schemas.Interaction {
	bareMet, bareGene := row.Source, row.Target

	otherComp := firstNonCytosol(row.Locations)
	cComp := ""
	if containsStr(row.Locations, schemas.CompartmentCytosol) {
		cComp = schemas.CompartmentCytosol
	}

	metOther := metNode(bareMet, otherComp)
	metC := metOther
	if len(row.Locations) > 0 {
		metC = metNode(bareMet, cComp)
	}
	geneFwd := geneNode(bareGene, n, false)
	geneRev := geneNode(bareGene, n, true)

	f.addConnector(bareMet, metOther)
	if metC != metOther {
		f.addConnector(bareMet, metC)
	}
	f.addConnector(bareGene, geneFwd)
	f.addConnector(bareGene, geneRev)

	metGene := func(met, gene, comp string, reverse bool) schemas.Interaction {
		r := row.Clone()
		r.Source, r.Target = met, gene
		r.SourceType, r.TargetType = schemas.EntitySmallMolecule, schemas.EntityProtein
		r.IDTypeA, r.IDTypeB = row.IDTypeA, row.IDTypeB
		r.Locations = compLocations(comp)
		r.Attrs.Reverse = reverse
		r.Attrs.CosmosFormatted = true
		return r
	}
	geneMet := func(gene, met, comp string, reverse bool) schemas.Interaction {
		r := row.Clone()
		r.Source, r.Target = gene, met
		r.SourceType, r.TargetType = schemas.EntityProtein, schemas.EntitySmallMolecule
		r.IDTypeA, r.IDTypeB = row.IDTypeB, row.IDTypeA
		r.Locations = compLocations(comp)
		r.Attrs.Reverse = reverse
		r.Attrs.CosmosFormatted = true
		return r
	}

	return []schemas.Interaction{
		metGene(metOther, geneFwd, otherComp, false),
		geneMet(geneFwd, metC, cComp, false),
		metGene(metC, geneRev, cComp, true),
		geneMet(geneRev, metOther, otherComp, true),
	}
}

// formatSimple relabels one receptor or other-category row. These
// categories have no reverse representation, so the gene node never gets a
// _rev suffix.
func (f *Formatter) formatSimple(row schemas.Interaction, n int) schemas.Interaction {
	comp := ""
	if len(row.Locations) > 0 {
		comp = row.Locations[0]
	}

	bareMet, bareGene := row.Source, row.Target
	if !row.MetaboliteIsSource() {
		bareMet, bareGene = row.Target, row.Source
	}

	fmtMet := metNode(bareMet, comp)
	fmtGene := geneNode(bareGene, n, false)
	f.addConnector(bareMet, fmtMet)
	f.addConnector(bareGene, fmtGene)

	out := row.Clone()
	if row.MetaboliteIsSource() {
		out.Source, out.Target = fmtMet, fmtGene
	} else {
		out.Source, out.Target = fmtGene, fmtMet
	}
	out.Attrs.CosmosFormatted = true
	return out
}

func (f *Formatter) addConnector(bare, formatted string) {
	f.connectors[connectorPair{bare: bare, formatted: formatted}] = struct{}{}
}

// connectorRows materializes the accumulated connector set as edges, sorted
// for deterministic output.
func (f *Formatter) connectorRows() []schemas.Interaction {
	pairs := make([]connectorPair, 0, len(f.connectors))
	for p := range f.connectors {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].bare != pairs[j].bare {
			return pairs[i].bare < pairs[j].bare
		}
		return pairs[i].formatted < pairs[j].formatted
	})

	rows := make([]schemas.Interaction, len(pairs))
	for i, p := range pairs {
		rows[i] = schemas.Interaction{
			Source:          p.bare,
			Target:          p.formatted,
			InteractionType: schemas.ConnectorInteractionType,
			Resource:        schemas.ConnectorResource,
			Mor:             schemas.MorStimulation,
			Attrs:           schemas.Attrs{CosmosFormatted: true},
		}
	}
	return rows
}

// metNode builds a metabolite node ID, omitting the compartment suffix when
// the compartment is unknown.
func metNode(chebiID, comp string) string {
	if comp == "" {
		return schemas.NodePrefixMetab + chebiID
	}
	return schemas.NodePrefixMetab + chebiID + "_" + comp
}

// geneNode builds a gene node ID with its category-local reaction index.
func geneNode(geneID string, n int, reverse bool) string {
	node := schemas.NodePrefixGene + strconv.Itoa(n) + "__" + geneID
	if reverse {
		node += schemas.NodeSuffixRev
	}
	return node
}

// firstNonCytosol returns the first compartment that is not the cytoplasm
// code, or "" when there is none.
func firstNonCytosol(locations []string) string {
	for _, comp := range locations {
		if comp != schemas.CompartmentCytosol {
			return comp
		}
	}
	return ""
}

func compLocations(comp string) []string {
	if comp == "" {
		return nil
	}
	return []string{comp}
}

func containsStr(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
