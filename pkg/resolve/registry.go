package resolve

import (
	"go.uber.org/zap"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// Registry holds one resolver per identifier scheme and entity role. It is
// the injectable cache object of the pipeline: constructed once per run,
// populated lazily, and discarded with the process. Tests build registries
// over fixed in-memory tables instead of downloaded ones.
type Registry struct {
	metabolite     map[schemas.IDType]Resolver
	metaboliteHMDB map[schemas.IDType]Resolver
	protein        map[schemas.IDType]Resolver
	log            *zap.Logger
}

// NewRegistry wires the production resolver set on top of the shared HTTP
// client:
//
//   - metabolite → ChEBI: chebi passthrough, pubchem (UniChem bulk), synonym
//     (PubChem REST + UniChem), hmdb (UniChem bulk), metatlas (per-GEM
//     annotation table), bigg (Recon3D-embedded xrefs);
//   - protein → ENSG: ensembl and reaction_id passthrough, uniprot /
//     genesymbol / ncbigene (BioMart), ensp (two-hop via uniprot), entrez
//     (Recon3D-embedded xrefs);
//   - metabolite → HMDB: the alternative vocabulary used for coverage
//     comparison.
func NewRegistry(client *Client, log *zap.Logger) *Registry {
	log = log.Named("resolve")

	pubchemChebi := NewBulk("pubchem-chebi", UniChemLoader(client, UniChemPubchem, UniChemChebi), log)
	pubchemHMDB := NewBulk("pubchem-hmdb", UniChemLoader(client, UniChemPubchem, UniChemHMDB), log)
	recon3dMets, recon3dGenes := NewRecon3D(client)
	biomart := NewBioMart(client, log)

	uniprotEnsg := biomart.Resolver("uniprot", "uniprotswissprot", "ensembl_gene_id")
	enspUniprot := biomart.Resolver("ensp", "ensembl_peptide_id", "uniprotswissprot")

	return &Registry{
		log: log,
		metabolite: map[schemas.IDType]Resolver{
			schemas.IDTypeChebi:    Passthrough(),
			schemas.IDTypePubchem:  pubchemChebi,
			schemas.IDTypeSynonym:  NewSynonymResolver(client, pubchemChebi, log),
			schemas.IDTypeHMDB:     NewBulk("hmdb-chebi", UniChemLoader(client, UniChemHMDB, UniChemChebi), log),
			schemas.IDTypeMetAtlas: NewGEMResolver(client, "metChEBIID", log),
			schemas.IDTypeBigg:     NewBulk("bigg-chebi", recon3dMets, log),
		},
		metaboliteHMDB: map[schemas.IDType]Resolver{
			schemas.IDTypeHMDB:     Passthrough(),
			schemas.IDTypeChebi:    NewBulk("chebi-hmdb", UniChemLoader(client, UniChemChebi, UniChemHMDB), log),
			schemas.IDTypePubchem:  pubchemHMDB,
			schemas.IDTypeSynonym:  NewSynonymResolver(client, pubchemHMDB, log),
			schemas.IDTypeMetAtlas: NewGEMResolver(client, "metHMDBID", log),
		},
		protein: map[schemas.IDType]Resolver{
			schemas.IDTypeEnsembl:    Passthrough(),
			schemas.IDTypeReactionID: Passthrough(),
			schemas.IDTypeUniprot:    uniprotEnsg,
			schemas.IDTypeEnsp:       TwoHop("ensp-ensg", enspUniprot, uniprotEnsg, log),
			schemas.IDTypeGenesymbol: biomart.Resolver("genesymbol", "external_gene_name", "ensembl_gene_id"),
			schemas.IDTypeNCBIGene:   biomart.Resolver("ncbigene", "entrezgene_id", "ensembl_gene_id"),
			schemas.IDTypeEntrez:     NewBulk("entrez-ensg", recon3dGenes, log),
		},
	}
}

// NewRegistryFromMaps builds a registry from explicit resolver maps. Tests
// use this to substitute fixed dictionaries without touching process-wide
// state. metaboliteHMDB may be nil when the HMDB vocabulary is not under
// test.
func NewRegistryFromMaps(
	metabolite, metaboliteHMDB, protein map[schemas.IDType]Resolver,
	log *zap.Logger,
) *Registry {
	return &Registry{
		metabolite:     metabolite,
		metaboliteHMDB: metaboliteHMDB,
		protein:        protein,
		log:            log.Named("resolve"),
	}
}

// Metabolite returns the ChEBI-targeted resolver for an identifier scheme.
func (r *Registry) Metabolite(t schemas.IDType) (Resolver, bool) {
	res, ok := r.metabolite[t]
	return res, ok
}

// MetaboliteHMDB returns the HMDB-targeted resolver for an identifier
// scheme, if the production registry was wired with one.
func (r *Registry) MetaboliteHMDB(t schemas.IDType) (Resolver, bool) {
	res, ok := r.metaboliteHMDB[t]
	return res, ok
}

// Protein returns the ENSG-targeted resolver for an identifier scheme.
func (r *Registry) Protein(t schemas.IDType) (Resolver, bool) {
	res, ok := r.protein[t]
	return res, ok
}
