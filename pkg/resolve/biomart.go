package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const biomartURL = "https://www.ensembl.org/biomart/martservice"

// biomartDatasets maps NCBI taxonomy IDs to Ensembl BioMart datasets.
// Organisms outside this map cannot be resolved through BioMart; their
// lookups miss.
var biomartDatasets = map[int]string{
	9606:  "hsapiens_gene_ensembl",
	10090: "mmusculus_gene_ensembl",
	10116: "rnorvegicus_gene_ensembl",
	7955:  "drerio_gene_ensembl",
}

// BioMart performs single-value identifier crossings against the Ensembl
// BioMart service. Each lookup posts a one-filter, one-attribute XML query
// and reads back a TSV column of candidate IDs.
type BioMart struct {
	client *Client
	log    *zap.Logger
}

func NewBioMart(client *Client, log *zap.Logger) *BioMart {
	return &BioMart{client: client, log: log.Named("biomart")}
}

// Resolver wraps a (filter → attribute) crossing as a memoized per-item
// resolver, e.g. Resolver("uniprot", "uniprotswissprot", "ensembl_gene_id").
func (b *BioMart) Resolver(name, filter, attribute string) CandidateResolver {
	lookup := func(ctx context.Context, raw string, meta Meta) ([]string, error) {
		return b.Lookup(ctx, filter, raw, attribute, meta.Organism)
	}
	return NewPerItem(name, lookup, b.log)
}

// Lookup runs one BioMart query and returns every non-empty value of the
// requested attribute.
func (b *BioMart) Lookup(ctx context.Context, filter, value, attribute string, organism int) ([]string, error) {
	dataset, ok := biomartDatasets[organism]
	if !ok {
		return nil, fmt.Errorf("no BioMart dataset for organism %d", organism)
	}

	form := url.Values{}
	form.Set("query", biomartQueryXML(dataset, filter, value, attribute))
	body, err := b.client.PostForm(ctx, biomartURL, form)
	if err != nil {
		return nil, err
	}

	text := string(body)
	// BioMart reports query problems as a 200 with an ERROR body.
	if strings.Contains(text, "ERROR") || strings.Contains(text, "Query ERROR") {
		return nil, fmt.Errorf("biomart query error for %s=%s", filter, value)
	}

	var results []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !contains(results, line) {
			results = append(results, line)
		}
	}
	return results, nil
}

// biomartQueryXML builds the martservice XML query document.
func biomartQueryXML(dataset, filter, value, attribute string) string {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective(`DOCTYPE Query`)

	query := doc.CreateElement("Query")
	query.CreateAttr("virtualSchemaName", "default")
	query.CreateAttr("formatter", "TSV")
	query.CreateAttr("header", "0")
	query.CreateAttr("uniqueRows", "1")

	ds := query.CreateElement("Dataset")
	ds.CreateAttr("name", dataset)
	ds.CreateAttr("interface", "default")

	f := ds.CreateElement("Filter")
	f.CreateAttr("name", filter)
	f.CreateAttr("value", value)

	attr := ds.CreateElement("Attribute")
	attr.CreateAttr("name", attribute)

	out, _ := doc.WriteToString()
	return out
}
