package format

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

func transportRow(met, gene string, locations ...string) schemas.Interaction {
	return schemas.Interaction{
		Source:          met,
		Target:          gene,
		SourceType:      schemas.EntitySmallMolecule,
		TargetType:      schemas.EntityProtein,
		IDTypeA:         schemas.IDTypeChebi,
		IDTypeB:         schemas.IDTypeEnsg,
		InteractionType: schemas.InteractionTransport,
		Resource:        schemas.ResourceTCDB,
		Mor:             schemas.MorStimulation,
		Locations:       locations,
	}
}

func receptorRow(met, gene string) schemas.Interaction {
	return schemas.Interaction{
		Source:          met,
		Target:          gene,
		SourceType:      schemas.EntitySmallMolecule,
		TargetType:      schemas.EntityProtein,
		IDTypeA:         schemas.IDTypeChebi,
		IDTypeB:         schemas.IDTypeEnsg,
		InteractionType: schemas.InteractionLigRec,
		Resource:        schemas.ResourceMRCLinksDB,
		Mor:             schemas.MorStimulation,
	}
}

func mainRows(rows []schemas.Interaction) []schemas.Interaction {
	var out []schemas.Interaction
	for _, r := range rows {
		if !r.IsConnector() {
			out = append(out, r)
		}
	}
	return out
}

func connectorRows(rows []schemas.Interaction) []schemas.Interaction {
	var out []schemas.Interaction
	for _, r := range rows {
		if r.IsConnector() {
			out = append(out, r)
		}
	}
	return out
}

func edge(r schemas.Interaction) [2]string {
	return [2]string{r.Source, r.Target}
}

func TestTransporterFourEdgeExpansion(t *testing.T) {
	f := New(zap.NewNop())

	out, stats, err := f.Format([]schemas.Interaction{
		transportRow("CHEBI:15422", "ENSG00000141510", "e", "c"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, Stats{Transporters: 1, Connectors: 4}, stats)

	main := mainRows(out)
	require.Len(t, main, 4)
	assert.Equal(t, [2]string{"Metab__CHEBI:15422_e", "Gene1__ENSG00000141510"}, edge(main[0]))
	assert.Equal(t, [2]string{"Gene1__ENSG00000141510", "Metab__CHEBI:15422_c"}, edge(main[1]))
	assert.Equal(t, [2]string{"Metab__CHEBI:15422_c", "Gene1__ENSG00000141510_rev"}, edge(main[2]))
	assert.Equal(t, [2]string{"Gene1__ENSG00000141510_rev", "Metab__CHEBI:15422_e"}, edge(main[3]))

	// Forward pair keeps reverse unset, reverse pair sets it.
	assert.False(t, main[0].Attrs.Reverse)
	assert.False(t, main[1].Attrs.Reverse)
	assert.True(t, main[2].Attrs.Reverse)
	assert.True(t, main[3].Attrs.Reverse)

	// Entity and scheme columns follow the swapped endpoints.
	assert.Equal(t, schemas.EntityProtein, main[1].SourceType)
	assert.Equal(t, schemas.EntitySmallMolecule, main[1].TargetType)
	assert.Equal(t, schemas.IDTypeEnsg, main[1].IDTypeA)
	assert.Equal(t, schemas.IDTypeChebi, main[1].IDTypeB)

	for _, r := range main {
		assert.True(t, r.Attrs.CosmosFormatted)
		assert.Equal(t, schemas.ResourceTCDB, r.Resource)
	}

	connector := func(bare, formatted string) schemas.Interaction {
		return schemas.Interaction{
			Source:          bare,
			Target:          formatted,
			InteractionType: schemas.ConnectorInteractionType,
			Resource:        schemas.ConnectorResource,
			Mor:             schemas.MorStimulation,
			Attrs:           schemas.Attrs{CosmosFormatted: true},
		}
	}
	wantConns := []schemas.Interaction{
		connector("CHEBI:15422", "Metab__CHEBI:15422_c"),
		connector("CHEBI:15422", "Metab__CHEBI:15422_e"),
		connector("ENSG00000141510", "Gene1__ENSG00000141510"),
		connector("ENSG00000141510", "Gene1__ENSG00000141510_rev"),
	}
	assert.Empty(t, cmp.Diff(wantConns, connectorRows(out)))
}

func TestTransporterWithoutCompartmentsCollapses(t *testing.T) {
	f := New(zap.NewNop())

	out, _, err := f.Format([]schemas.Interaction{
		transportRow("CHEBI:15422", "ENSG00000141510"),
	}, false)
	require.NoError(t, err)

	main := mainRows(out)
	require.Len(t, main, 4)
	assert.Equal(t, "Metab__CHEBI:15422", main[0].Source)
	assert.Equal(t, "Metab__CHEBI:15422", main[1].Target)
	assert.Equal(t, "Metab__CHEBI:15422", main[2].Source)
	assert.Equal(t, "Metab__CHEBI:15422", main[3].Target)

	// One met node means only three distinct connector pairs.
	require.Len(t, connectorRows(out), 3)
}

func TestSimpleRowsNeverGetRevSuffix(t *testing.T) {
	f := New(zap.NewNop())

	out, stats, err := f.Format([]schemas.Interaction{
		receptorRow("CHEBI:16240", "ENSG00000100985"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Simple)

	main := mainRows(out)
	require.Len(t, main, 1)
	assert.Equal(t, "Metab__CHEBI:16240", main[0].Source)
	assert.Equal(t, "Gene1__ENSG00000100985", main[0].Target)
}

func TestReactionIndexRestartsPerCategory(t *testing.T) {
	f := New(zap.NewNop())

	out, _, err := f.Format([]schemas.Interaction{
		transportRow("CHEBI:15422", "ENSG00000000001", "e", "c"),
		transportRow("CHEBI:15422", "ENSG00000000002", "e", "c"),
		receptorRow("CHEBI:16240", "ENSG00000000003"),
	}, false)
	require.NoError(t, err)

	main := mainRows(out)
	require.Len(t, main, 9)
	assert.Equal(t, "Gene1__ENSG00000000001", main[0].Target)
	assert.Equal(t, "Gene2__ENSG00000000002", main[4].Target)
	// First receptor row starts its own counter at 1.
	assert.Equal(t, "Gene1__ENSG00000000003", main[8].Target)
}

func TestSharedReactionIDCollapsesToOneIndex(t *testing.T) {
	gemRow := func(met, gene, reaction string, reverse bool) schemas.Interaction {
		return schemas.Interaction{
			Source:          met,
			Target:          gene,
			SourceType:      schemas.EntitySmallMolecule,
			TargetType:      schemas.EntityProtein,
			IDTypeA:         schemas.IDTypeChebi,
			IDTypeB:         schemas.IDTypeEnsg,
			InteractionType: schemas.InteractionCatalysis,
			Resource:        "GEM:Human-GEM",
			Locations:       []string{"c"},
			Attrs:           schemas.Attrs{ReactionID: reaction, Reverse: reverse},
		}
	}
	f := New(zap.NewNop())

	out, stats, err := f.Format([]schemas.Interaction{
		gemRow("CHEBI:30616", "ENSG00000000001", "MAR04831", false),
		gemRow("CHEBI:30616", "ENSG00000000001", "MAR04831", true),
		gemRow("CHEBI:15422", "ENSG00000000002", "MAR09999", false),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PreExpanded)

	main := mainRows(out)
	require.Len(t, main, 3)
	assert.Equal(t, "Gene1__ENSG00000000001", main[0].Target)
	assert.Equal(t, "Gene1__ENSG00000000001_rev", main[1].Target)
	assert.Equal(t, "Gene2__ENSG00000000002", main[2].Target)
}

func TestPreExpandedGeneSourceRow(t *testing.T) {
	f := New(zap.NewNop())

	row := schemas.Interaction{
		Source:          "ENSG00000000001",
		Target:          "CHEBI:30616",
		SourceType:      schemas.EntityProtein,
		TargetType:      schemas.EntitySmallMolecule,
		IDTypeA:         schemas.IDTypeEnsg,
		IDTypeB:         schemas.IDTypeChebi,
		InteractionType: schemas.InteractionCatalysis,
		Resource:        "GEM:Human-GEM",
		Locations:       []string{"m"},
		Attrs:           schemas.Attrs{ReactionID: "MAR00001"},
	}
	out, _, err := f.Format([]schemas.Interaction{row}, false)
	require.NoError(t, err)

	main := mainRows(out)
	require.Len(t, main, 1)
	assert.Equal(t, "Gene1__ENSG00000000001", main[0].Source)
	assert.Equal(t, "Metab__CHEBI:30616_m", main[0].Target)
}

func TestConnectorsDeduplicateAcrossRows(t *testing.T) {
	f := New(zap.NewNop())

	out, stats, err := f.Format([]schemas.Interaction{
		receptorRow("CHEBI:16240", "ENSG00000000001"),
		receptorRow("CHEBI:16240", "ENSG00000000002"),
	}, false)
	require.NoError(t, err)

	// CHEBI:16240 appears in both rows but yields one connector.
	assert.Equal(t, 3, stats.Connectors)
	conns := connectorRows(out)
	require.Len(t, conns, 3)
	assert.Equal(t, "CHEBI:16240", conns[0].Source)
}

func TestOrphanRowsDroppedUnlessRequested(t *testing.T) {
	orphan := transportRow("CHEBI:15422", "ORPHAN_NA_TRANS", "e", "c")
	orphan.IDTypeB = schemas.IDTypeReactionID
	orphan.Attrs.Orphan = true

	f := New(zap.NewNop())
	out, stats, err := f.Format([]schemas.Interaction{orphan}, false)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, Stats{}, stats)

	f = New(zap.NewNop())
	out, stats, err = f.Format([]schemas.Interaction{orphan}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Transporters)
	assert.Len(t, mainRows(out), 4)
}

func TestRefusesAlreadyFormattedInput(t *testing.T) {
	row := receptorRow("CHEBI:16240", "ENSG00000000001")
	row.Attrs.CosmosFormatted = true

	f := New(zap.NewNop())
	out, _, err := f.Format([]schemas.Interaction{row}, false)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrAlreadyFormatted)
}

func TestAssignReactionIndexOrderStable(t *testing.T) {
	rows := []schemas.Interaction{
		{Resource: "GEM:Human-GEM", Attrs: schemas.Attrs{ReactionID: "R1"}},
		{Resource: "GEM:Human-GEM", Attrs: schemas.Attrs{ReactionID: "R2"}},
		{Resource: "GEM:Human-GEM", Attrs: schemas.Attrs{ReactionID: "R1"}},
		{Resource: schemas.ResourceTCDB},
		{Resource: schemas.ResourceTCDB},
	}
	categories := []schemas.Category{
		schemas.CategoryOther, schemas.CategoryOther, schemas.CategoryOther,
		schemas.CategoryTransporter, schemas.CategoryTransporter,
	}
	assert.Equal(t, []int{1, 2, 1, 1, 2}, assignReactionIndex(rows, categories))
}
