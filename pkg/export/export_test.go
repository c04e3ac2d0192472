package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

func sampleRows() []schemas.Interaction {
	return []schemas.Interaction{
		{
			Source:          "Metab__CHEBI:15422_e",
			Target:          "Gene1__ENSG00000141510",
			SourceType:      schemas.EntitySmallMolecule,
			TargetType:      schemas.EntityProtein,
			InteractionType: schemas.InteractionTransport,
			Resource:        schemas.ResourceTCDB,
			Mor:             schemas.MorStimulation,
			Locations:       []string{"e"},
		},
		{
			Source:          "CHEBI:15422",
			Target:          "Metab__CHEBI:15422_e",
			InteractionType: schemas.ConnectorInteractionType,
			Resource:        schemas.ConnectorResource,
			Mor:             schemas.MorStimulation,
		},
	}
}

func TestWriteDefaultColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRows(), Options{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "source,target,sign", lines[0])
	assert.Equal(t, "Metab__CHEBI:15422_e,Gene1__ENSG00000141510,1", lines[1])
	assert.Equal(t, "CHEBI:15422,Metab__CHEBI:15422_e,1", lines[2])
}

func TestWriteAllColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRows(), Options{AllColumns: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t,
		"source,target,sign,interaction_type,resource,source_type,target_type,locations",
		lines[0])
	assert.Equal(t,
		"Metab__CHEBI:15422_e,Gene1__ENSG00000141510,1,transport,TCDB,small_molecule,protein,e",
		lines[1])
}

func TestSeparatorFor(t *testing.T) {
	assert.Equal(t, '\t', SeparatorFor("out.tsv"))
	assert.Equal(t, '\t', SeparatorFor("out.TXT"))
	assert.Equal(t, ',', SeparatorFor("out.csv"))
	assert.Equal(t, ',', SeparatorFor("out"))
}

func TestWriteFileInfersTabSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkn.tsv")
	require.NoError(t, WriteFile(path, sampleRows(), Options{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "source\ttarget\tsign\n"))
}

func TestWriteFileSeparatorOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkn.tsv")
	require.NoError(t, WriteFile(path, sampleRows(), Options{Separator: ';'}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "source;target;sign\n"))
}
