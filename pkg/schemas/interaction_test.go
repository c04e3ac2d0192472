package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaboliteIsSource(t *testing.T) {
	metFirst := Interaction{SourceType: EntitySmallMolecule, TargetType: EntityProtein}
	assert.True(t, metFirst.MetaboliteIsSource())

	geneFirst := Interaction{SourceType: EntityProtein, TargetType: EntitySmallMolecule}
	assert.False(t, geneFirst.MetaboliteIsSource())
}

func TestIsPreExpanded(t *testing.T) {
	cases := []struct {
		resource string
		want     bool
	}{
		{"GEM:Human-GEM", true},
		{"GEM_transporter:Human-GEM", true},
		{"Recon3D", true},
		{"TCDB", false},
		{"STITCH", false},
		{"SLC", false},
	}
	for _, tc := range cases {
		t.Run(tc.resource, func(t *testing.T) {
			i := Interaction{Resource: tc.resource}
			assert.Equal(t, tc.want, i.IsPreExpanded())
		})
	}
}

func TestGEMName(t *testing.T) {
	assert.Equal(t, "Human-GEM", Interaction{Resource: "GEM:Human-GEM"}.GEMName())
	assert.Equal(t, "Mouse-GEM", Interaction{Resource: "GEM_transporter:Mouse-GEM"}.GEMName())
	assert.Equal(t, "", Interaction{Resource: "TCDB"}.GEMName())
	assert.Equal(t, "", Interaction{Resource: "Recon3D"}.GEMName())
}

func TestCloneDoesNotAliasLocations(t *testing.T) {
	orig := Interaction{Locations: []string{"e", "c"}}
	cp := orig.Clone()
	cp.Locations[0] = "m"
	assert.Equal(t, "e", orig.Locations[0])
}

func TestIsConnector(t *testing.T) {
	conn := Interaction{Resource: ConnectorResource, InteractionType: ConnectorInteractionType}
	assert.True(t, conn.IsConnector())

	bio := Interaction{Resource: "TCDB", InteractionType: InteractionTransport}
	assert.False(t, bio.IsConnector())
}
