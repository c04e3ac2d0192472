package format

import (
	"strings"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// Categorize labels an interaction as transporter, receptor, or other based
// on its interaction type and originating resource. STITCH encodes the class
// in its own interaction_type values rather than the shared labels.
func Categorize(interactionType, resource string) schemas.Category {
	isSTITCH := resource == schemas.ResourceSTITCH
	switch {
	case interactionType == schemas.InteractionTransport,
		strings.HasPrefix(resource, schemas.GEMTransporterPrefix),
		isSTITCH && interactionType == schemas.InteractionTransporter:
		return schemas.CategoryTransporter
	case interactionType == schemas.InteractionLigRec,
		isSTITCH && interactionType == schemas.InteractionReceptor:
		return schemas.CategoryReceptor
	default:
		return schemas.CategoryOther
	}
}
