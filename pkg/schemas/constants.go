package schemas

// EntityType describes which kind of biological entity occupies an
// interaction endpoint.
type EntityType string

const (
	EntitySmallMolecule EntityType = "small_molecule"
	EntityProtein       EntityType = "protein"
)

// IDType is the identifier scheme of an interaction endpoint. Raw records
// carry source-specific schemes; translated records carry only the canonical
// schemes (ChEBI for metabolites, ENSG for genes) plus the reaction_id
// passthrough used by orphan reactions.
type IDType string

const (
	IDTypeChebi      IDType = "chebi"
	IDTypePubchem    IDType = "pubchem"
	IDTypeSynonym    IDType = "synonym"
	IDTypeHMDB       IDType = "hmdb"
	IDTypeMetAtlas   IDType = "metatlas"
	IDTypeBigg       IDType = "bigg"
	IDTypeUniprot    IDType = "uniprot"
	IDTypeEnsp       IDType = "ensp"
	IDTypeGenesymbol IDType = "genesymbol"
	IDTypeEnsembl    IDType = "ensembl"
	IDTypeEntrez     IDType = "entrez"
	IDTypeNCBIGene   IDType = "ncbigene"
	IDTypeEnsg       IDType = "ensg"
	IDTypeReactionID IDType = "reaction_id"
)

// Category is the functional class of a formatted interaction. The reaction
// index N restarts at 1 within each category.
type Category string

const (
	CategoryTransporter Category = "transporter"
	CategoryReceptor    Category = "receptor"
	CategoryOther       Category = "other"
)

// Categories lists all categories in their processing order.
var Categories = []Category{CategoryTransporter, CategoryReceptor, CategoryOther}

// Interaction type labels used by the upstream resources.
const (
	InteractionTransport   = "transport"
	InteractionLigRec      = "ligand_receptor"
	InteractionAllosteric  = "allosteric_regulation"
	InteractionCatalysis   = "catalysis"
	InteractionTransporter = "transporter"
	InteractionReceptor    = "receptor"
	InteractionOther       = "other"
)

// Resource names. GEM resources are prefixed: "GEM:<gem-name>" for metabolic
// edges and "GEM_transporter:<gem-name>" for transport edges.
const (
	ResourceSTITCH     = "STITCH"
	ResourceTCDB       = "TCDB"
	ResourceSLC        = "SLC"
	ResourceBRENDA     = "BRENDA"
	ResourceMRCLinksDB = "MRCLinksDB"
	ResourceRecon3D    = "Recon3D"

	GEMPrefix            = "GEM"
	GEMTransporterPrefix = "GEM_transporter"
)

// Synthetic constants for connector edges. Downstream consumers identify
// connector rows solely by these two values.
const (
	ConnectorResource        = "COSMOS_formatter"
	ConnectorInteractionType = "connector"
)

// Mode of regulation.
const (
	MorStimulation = 1
	MorInhibition  = -1
	MorUnknown     = 0
)

// CompartmentCytosol is the cytoplasm compartment code; the transporter
// expansion routes the exit edge through this compartment.
const CompartmentCytosol = "c"

// NodePrefixMetab and NodePrefixGene are the COSMOS node-ID prefixes. The
// downstream R tooling parses these strings, so they are bit-exact.
const (
	NodePrefixMetab = "Metab__"
	NodePrefixGene  = "Gene"
	NodeSuffixRev   = "_rev"
)
