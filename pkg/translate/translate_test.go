package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/resolve"
	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

func testRegistry() *resolve.Registry {
	log := zap.NewNop()
	metabolite := map[schemas.IDType]resolve.Resolver{
		schemas.IDTypeChebi: resolve.Passthrough(),
		schemas.IDTypePubchem: resolve.NewStatic("pubchem-chebi", resolve.Table{
			"5957": {"CHEBI:30616"},
		}, log),
		schemas.IDTypeMetAtlas: resolve.ResolverFunc(func(_ context.Context, raw string, meta resolve.Meta) (string, bool) {
			if meta.GEM == "Human-GEM" && raw == "MAM01371" {
				return "CHEBI:30616", true
			}
			return "", false
		}),
	}
	metaboliteHMDB := map[schemas.IDType]resolve.Resolver{
		schemas.IDTypeChebi: resolve.NewStatic("chebi-hmdb", resolve.Table{
			"CHEBI:30616": {"HMDB0000538"},
		}, log),
		schemas.IDTypePubchem: resolve.NewStatic("pubchem-hmdb", resolve.Table{
			"5957": {"HMDB0000538"},
		}, log),
	}
	protein := map[schemas.IDType]resolve.Resolver{
		schemas.IDTypeEnsembl:    resolve.Passthrough(),
		schemas.IDTypeReactionID: resolve.Passthrough(),
		schemas.IDTypeUniprot: resolve.NewStatic("uniprot-ensg", resolve.Table{
			"P04637": {"ENSG00000141510"},
		}, log),
	}
	return resolve.NewRegistryFromMaps(metabolite, metaboliteHMDB, protein, log)
}

func metProteinRow(source, target string, idA, idB schemas.IDType) schemas.Interaction {
	return schemas.Interaction{
		Source:          source,
		Target:          target,
		SourceType:      schemas.EntitySmallMolecule,
		TargetType:      schemas.EntityProtein,
		IDTypeA:         idA,
		IDTypeB:         idB,
		InteractionType: schemas.InteractionCatalysis,
		Resource:        "GEM:Human-GEM",
		Mor:             schemas.MorUnknown,
	}
}

func TestChebiAndEnsemblPassthrough(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	rows := []schemas.Interaction{
		metProteinRow("CHEBI:30616", "ENSG00000001234", schemas.IDTypeChebi, schemas.IDTypeEnsembl),
	}
	out, stats := tr.Translate(context.Background(), rows)

	require.Len(t, out, 1)
	assert.Equal(t, "CHEBI:30616", out[0].Source)
	assert.Equal(t, "ENSG00000001234", out[0].Target)
	assert.Equal(t, schemas.IDTypeChebi, out[0].IDTypeA)
	assert.Equal(t, schemas.IDTypeEnsg, out[0].IDTypeB)
	assert.Equal(t, Stats{Input: 1, Output: 1}, stats)
}

func TestPubchemAndUniprotResolved(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	rows := []schemas.Interaction{
		metProteinRow("5957", "P04637", schemas.IDTypePubchem, schemas.IDTypeUniprot),
	}
	out, _ := tr.Translate(context.Background(), rows)

	require.Len(t, out, 1)
	assert.Equal(t, "CHEBI:30616", out[0].Source)
	assert.Equal(t, "ENSG00000141510", out[0].Target)
}

func TestDropsRowWhenSourceUntranslatable(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	rows := []schemas.Interaction{
		metProteinRow("NOTACID", "ENSG00000001234", schemas.IDTypePubchem, schemas.IDTypeEnsembl),
	}
	out, stats := tr.Translate(context.Background(), rows)

	assert.Empty(t, out)
	assert.Equal(t, 1, stats.DroppedSource)
	assert.Equal(t, 0, stats.DroppedTarget)
}

func TestDropsRowWhenTargetUntranslatable(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	rows := []schemas.Interaction{
		metProteinRow("CHEBI:30616", "NOTANID", schemas.IDTypeChebi, schemas.IDTypeUniprot),
	}
	out, stats := tr.Translate(context.Background(), rows)

	assert.Empty(t, out)
	assert.Equal(t, 1, stats.DroppedTarget)
}

func TestUnknownIDTypeDropsGroup(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	rows := []schemas.Interaction{
		metProteinRow("X", "ENSG00000001234", schemas.IDType("mystery"), schemas.IDTypeEnsembl),
	}
	out, stats := tr.Translate(context.Background(), rows)

	assert.Empty(t, out)
	assert.Equal(t, 1, stats.DroppedSource)
}

func TestReactionIDPreservedAsTarget(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	row := metProteinRow("CHEBI:30616", "MAR04831", schemas.IDTypeChebi, schemas.IDTypeReactionID)
	row.Attrs = schemas.Attrs{Orphan: true, ReactionID: "MAR04831"}

	out, _ := tr.Translate(context.Background(), []schemas.Interaction{row})

	require.Len(t, out, 1)
	assert.Equal(t, "MAR04831", out[0].Target)
	assert.Equal(t, schemas.IDTypeReactionID, out[0].IDTypeB)
}

func TestReactionIDPreservedAsSource(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	row := schemas.Interaction{
		Source:          "ORPHAN_NA_TRANS",
		Target:          "CHEBI:30616",
		SourceType:      schemas.EntityProtein,
		TargetType:      schemas.EntitySmallMolecule,
		IDTypeA:         schemas.IDTypeReactionID,
		IDTypeB:         schemas.IDTypeChebi,
		InteractionType: schemas.InteractionCatalysis,
		Resource:        "GEM:Human-GEM",
		Attrs:           schemas.Attrs{Orphan: true},
	}
	out, _ := tr.Translate(context.Background(), []schemas.Interaction{row})

	require.Len(t, out, 1)
	assert.Equal(t, "ORPHAN_NA_TRANS", out[0].Source)
	assert.Equal(t, schemas.IDTypeReactionID, out[0].IDTypeA)
	assert.Equal(t, schemas.IDTypeChebi, out[0].IDTypeB)
}

func TestDirectionAwareGEMProteinSource(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	row := schemas.Interaction{
		Source:          "ENSG00000001234",
		Target:          "CHEBI:30616",
		SourceType:      schemas.EntityProtein,
		TargetType:      schemas.EntitySmallMolecule,
		IDTypeA:         schemas.IDTypeEnsembl,
		IDTypeB:         schemas.IDTypeChebi,
		InteractionType: schemas.InteractionCatalysis,
		Resource:        "GEM:Human-GEM",
	}
	out, _ := tr.Translate(context.Background(), []schemas.Interaction{row})

	require.Len(t, out, 1)
	assert.Equal(t, schemas.IDTypeEnsg, out[0].IDTypeA)
	assert.Equal(t, schemas.IDTypeChebi, out[0].IDTypeB)
}

func TestMetatlasUsesGEMContextFromResource(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	good := metProteinRow("MAM01371", "ENSG00000001234", schemas.IDTypeMetAtlas, schemas.IDTypeEnsembl)
	good.Resource = "GEM_transporter:Human-GEM"

	wrongGEM := metProteinRow("MAM01371", "ENSG00000001234", schemas.IDTypeMetAtlas, schemas.IDTypeEnsembl)
	wrongGEM.Resource = "GEM:Yeast-GEM"

	out, stats := tr.Translate(context.Background(), []schemas.Interaction{good, wrongGEM})

	require.Len(t, out, 1)
	assert.Equal(t, "CHEBI:30616", out[0].Source)
	assert.Equal(t, 1, stats.DroppedSource)
}

func TestMixedNormalAndOrphanRows(t *testing.T) {
	tr := New(testRegistry(), 9606, zap.NewNop())

	normal := metProteinRow("CHEBI:30616", "ENSG00000001234", schemas.IDTypeChebi, schemas.IDTypeEnsembl)
	orphan := metProteinRow("CHEBI:30616", "MAR04831", schemas.IDTypeChebi, schemas.IDTypeReactionID)
	orphan.Attrs = schemas.Attrs{Orphan: true}

	out, _ := tr.Translate(context.Background(), []schemas.Interaction{normal, orphan})

	require.Len(t, out, 2)
	assert.Equal(t, schemas.IDTypeEnsg, out[0].IDTypeB)
	assert.Equal(t, "ENSG00000001234", out[0].Target)
	assert.Equal(t, schemas.IDTypeReactionID, out[1].IDTypeB)
	assert.Equal(t, "MAR04831", out[1].Target)
}
