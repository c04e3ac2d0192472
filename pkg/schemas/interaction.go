package schemas

import (
	"strings"
)

// Attrs carries resource-specific metadata attached to an interaction.
// The zero value means "no metadata". Fields marked omitempty stay out of
// exported JSON when unset.
type Attrs struct {
	// ReactionID is the upstream reaction identifier, set by GEM and
	// Recon3D records. Rows sharing a ReactionID belong to the same
	// biochemical reaction and collapse onto one reaction index N.
	ReactionID string `json:"reaction_id,omitempty"`

	// Reverse marks the reverse direction of a reversible reaction.
	Reverse bool `json:"reverse,omitempty"`

	// Orphan marks a reaction with no known gene: the reaction ID stands
	// in for the gene node and is never translated.
	Orphan bool `json:"orphan,omitempty"`

	// EnzymeComplex marks enzyme IDs composed of several subunits
	// (underscore-joined gene IDs from AND gene rules).
	EnzymeComplex bool `json:"enzyme_complex,omitempty"`

	// TransportFrom / TransportTo record the compartments a transported
	// metabolite crosses between (Recon3D).
	TransportFrom string `json:"transport_from,omitempty"`
	TransportTo   string `json:"transport_to,omitempty"`

	// CosmosFormatted is set once node-ID formatting has been applied.
	// The formatter refuses rows that already carry it: re-formatting
	// would double-prefix the node IDs.
	CosmosFormatted bool `json:"cosmos_formatted,omitempty"`
}

// Interaction is the uniform record every resource processor yields and
// every pipeline stage consumes. Stages never mutate records in place; they
// produce new tables.
type Interaction struct {
	Source          string     `json:"source"`
	Target          string     `json:"target"`
	SourceType      EntityType `json:"source_type"`
	TargetType      EntityType `json:"target_type"`
	IDTypeA         IDType     `json:"id_type_a"`
	IDTypeB         IDType     `json:"id_type_b"`
	InteractionType string     `json:"interaction_type"`
	Resource        string     `json:"resource"`
	Mor             int        `json:"mor"`
	Locations       []string   `json:"locations,omitempty"`
	Attrs           Attrs      `json:"attrs,omitempty"`
}

// MetaboliteIsSource reports whether the small-molecule endpoint is the
// source column. GEM-origin rows carry the protein on either side.
func (i Interaction) MetaboliteIsSource() bool {
	return i.SourceType == EntitySmallMolecule
}

// Clone returns a copy with its own locations slice, so callers can adjust
// compartments without aliasing the input row.
func (i Interaction) Clone() Interaction {
	out := i
	if i.Locations != nil {
		out.Locations = make([]string, len(i.Locations))
		copy(out.Locations, i.Locations)
	}
	return out
}

// IsPreExpanded reports whether the record's resource already encodes both
// the forward and reverse directions of its reactions as separate rows
// (GEM-derived resources and Recon3D). Such rows are renamed, never
// expanded, by the formatter.
func (i Interaction) IsPreExpanded() bool {
	return strings.HasPrefix(i.Resource, GEMPrefix) || i.Resource == ResourceRecon3D
}

// IsConnector reports whether the record is a synthetic connector edge.
func (i Interaction) IsConnector() bool {
	return i.Resource == ConnectorResource && i.InteractionType == ConnectorInteractionType
}

// GEMName extracts the sub-dataset name from a "<prefix>:<gem-name>"
// resource label. Returns "" when the resource carries no GEM name.
func (i Interaction) GEMName() string {
	if !strings.HasPrefix(i.Resource, GEMPrefix) {
		return ""
	}
	if idx := strings.IndexByte(i.Resource, ':'); idx >= 0 {
		return i.Resource[idx+1:]
	}
	return ""
}
