package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const recon3dModelURL = "http://bigg.ucsd.edu/static/models/Recon3D.json"

// recon3dModel is the subset of the BiGG JSON model carrying the embedded
// cross-references: metabolite annotations link BiGG IDs to ChEBI/HMDB,
// gene annotations link Entrez IDs to Ensembl genes.
type recon3dModel struct {
	Metabolites []struct {
		ID         string              `json:"id"`
		Annotation map[string][]string `json:"annotation"`
	} `json:"metabolites"`
	Genes []struct {
		ID         string              `json:"id"`
		Annotation map[string][]string `json:"annotation"`
	} `json:"genes"`
}

var isoformSuffix = regexp.MustCompile(`_AT\d+$`)

// recon3d downloads and parses the model once, then serves the metabolite
// and gene cross-reference tables from the same parse.
type recon3d struct {
	client *Client
	once   sync.Once
	mets   Table
	genes  Table
	err    error
}

// NewRecon3D wires the Recon3D-embedded cross-references. It returns the
// bigg→chebi metabolite loader and the entrez→ensg gene loader, both backed
// by a single download of the model.
func NewRecon3D(client *Client) (metabolites, genes TableLoader) {
	r := &recon3d{client: client}
	return func(ctx context.Context) (Table, error) {
			r.load(ctx)
			return r.mets, r.err
		}, func(ctx context.Context) (Table, error) {
			r.load(ctx)
			return r.genes, r.err
		}
}

func (r *recon3d) load(ctx context.Context) {
	r.once.Do(func() {
		body, err := r.client.FetchCached(ctx, recon3dModelURL, "Recon3D.json")
		if err != nil {
			r.err = err
			return
		}
		defer body.Close()

		var model recon3dModel
		if err := json.NewDecoder(body).Decode(&model); err != nil {
			r.err = fmt.Errorf("parsing Recon3D model: %w", err)
			return
		}

		r.mets = make(Table)
		for _, met := range model.Metabolites {
			base := biggBaseID(met.ID)
			for _, chebi := range met.Annotation["chebi"] {
				if !strings.HasPrefix(chebi, "CHEBI:") {
					chebi = "CHEBI:" + chebi
				}
				if !contains(r.mets[base], chebi) {
					r.mets[base] = append(r.mets[base], chebi)
				}
			}
		}

		r.genes = make(Table)
		for _, gene := range model.Genes {
			entrez := isoformSuffix.ReplaceAllString(gene.ID, "")
			for _, ensg := range gene.Annotation["ensembl_gene"] {
				if !contains(r.genes[entrez], ensg) {
					r.genes[entrez] = append(r.genes[entrez], ensg)
				}
			}
		}
	})
}

// biggBaseID strips the single-letter compartment suffix from a BiGG
// metabolite ID: "atp_c" → "atp". IDs whose last segment is not a single
// letter are returned unchanged.
func biggBaseID(id string) string {
	idx := strings.LastIndexByte(id, '_')
	if idx < 0 || len(id)-idx != 2 {
		return id
	}
	last := id[idx+1]
	if (last >= 'a' && last <= 'z') || (last >= 'A' && last <= 'Z') {
		return id[:idx]
	}
	return id
}
