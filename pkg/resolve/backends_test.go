package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClient returns a resolver HTTP client whose download cache lives in a
// throwaway directory.
func testClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(5*time.Second, zap.NewNop())
	c.cacheDir = t.TempDir()
	return c
}

func TestUniChemLoaderParsesAndInverts(t *testing.T) {
	const dump = "From src:'7'\tTo src:'22'\n" +
		"CHEBI:30616\t5957\n" +
		"CHEBI:15422\t5957\n" +
		"CHEBI:16761\t6022\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dump))
	}))
	defer srv.Close()

	client := testClient(t)

	// Prime the download cache under the name the loader fetches; the
	// loader then reads the cached copy instead of reaching UniChem.
	cached, err := client.FetchCached(context.Background(), srv.URL, "src7src22.txt")
	require.NoError(t, err)
	cached.Close()

	loader := UniChemLoader(client, UniChemPubchem, UniChemChebi)
	table, err := loader(context.Background())
	require.NoError(t, err)

	// Requested direction is pubchem→chebi, the reverse of the dump.
	assert.ElementsMatch(t, []string{"CHEBI:30616", "CHEBI:15422"}, table["5957"])
	assert.Equal(t, []string{"CHEBI:16761"}, table["6022"])
}

func TestGEMResolverLoadsPerGEMTable(t *testing.T) {
	const tsv = "mets\tmetsNoComp\tmetChEBIID\tmetHMDBID\tmetComps\n" +
		"MAM01371c\tMAM01371\tCHEBI:30616\tHMDB0000538\tc\n" +
		"MAM01371e\tMAM01371\tCHEBI:30616\tHMDB0000538\te\n" +
		"MAM02040s\tMAM02040\tCHEBI:15377\tHMDB0002111\ts\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tsv))
	}))
	defer srv.Close()

	client := testClient(t)
	// Prime the cache under the name the resolver fetches for this GEM.
	cached, err := client.FetchCached(context.Background(), srv.URL, "Human-GEM-metabolites.tsv")
	require.NoError(t, err)
	cached.Close()

	r := NewGEMResolver(client, "metChEBIID", zap.NewNop())

	id, ok := r.Resolve(context.Background(), "MAM01371", Meta{GEM: "Human-GEM"})
	require.True(t, ok)
	assert.Equal(t, "CHEBI:30616", id)

	id, ok = r.Resolve(context.Background(), "MAM02040", Meta{GEM: "Human-GEM"})
	require.True(t, ok)
	assert.Equal(t, "CHEBI:15377", id)

	_, ok = r.Resolve(context.Background(), "MAM01371", Meta{})
	assert.False(t, ok, "metatlas IDs are meaningless without a GEM context")
}

func TestRecon3DLoadersShareOneDownload(t *testing.T) {
	const model = `{
		"metabolites": [
			{"id": "atp_c", "annotation": {"chebi": ["CHEBI:30616"]}},
			{"id": "atp_m", "annotation": {"chebi": ["30616"]}},
			{"id": "glc__D_e", "annotation": {"chebi": ["CHEBI:17634"]}}
		],
		"genes": [
			{"id": "6505_AT1", "annotation": {"ensembl_gene": ["ENSG00000011083"]}},
			{"id": "6505_AT2", "annotation": {"ensembl_gene": ["ENSG00000011083"]}}
		]
	}`

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(model))
	}))
	defer srv.Close()

	client := testClient(t)
	cached, err := client.FetchCached(context.Background(), srv.URL, "Recon3D.json")
	require.NoError(t, err)
	cached.Close()

	metLoader, geneLoader := NewRecon3D(client)

	mets, err := metLoader(context.Background())
	require.NoError(t, err)
	genes, err := geneLoader(context.Background())
	require.NoError(t, err)

	// Compartment suffixes stripped, CHEBI prefix normalized, duplicates
	// across compartments collapsed.
	assert.Equal(t, []string{"CHEBI:30616"}, mets["atp"])
	assert.Equal(t, []string{"CHEBI:17634"}, mets["glc__D"])

	// Isoform suffixes stripped, duplicate annotations collapsed.
	assert.Equal(t, []string{"ENSG00000011083"}, genes["6505"])

	assert.Equal(t, 1, hits, "both loaders must share one download")
}

func TestBiggBaseID(t *testing.T) {
	assert.Equal(t, "atp", biggBaseID("atp_c"))
	assert.Equal(t, "glc__D", biggBaseID("glc__D_e"))
	assert.Equal(t, "nocomp", biggBaseID("nocomp"))
	assert.Equal(t, "x_12", biggBaseID("x_12"))
}

func TestBiomartQueryXML(t *testing.T) {
	xml := biomartQueryXML("hsapiens_gene_ensembl", "uniprotswissprot", "P04637", "ensembl_gene_id")

	assert.Contains(t, xml, `name="hsapiens_gene_ensembl"`)
	assert.Contains(t, xml, `name="uniprotswissprot"`)
	assert.Contains(t, xml, `value="P04637"`)
	assert.Contains(t, xml, `name="ensembl_gene_id"`)
	assert.Contains(t, xml, "DOCTYPE Query")
}

func TestStripCompartmentSuffix(t *testing.T) {
	assert.Equal(t, "MAM01039", stripCompartmentSuffix("MAM01039c", "c"))
	assert.Equal(t, "MAM01039", stripCompartmentSuffix("MAM01039c", ""))
	assert.Equal(t, "MAM01039", stripCompartmentSuffix("MAM01039", "x"))
}
