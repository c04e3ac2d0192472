package pkn

import (
	"context"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// Source produces raw interaction records from one upstream resource. The
// builder treats sources uniformly; resource-specific download and parsing
// logic lives behind this interface.
type Source interface {
	Name() string
	Interactions(ctx context.Context) ([]schemas.Interaction, error)
}

// StaticSource serves a fixed record set. Used for tests and for resources
// whose records were prepared out of band.
type StaticSource struct {
	name string
	rows []schemas.Interaction
}

func NewStaticSource(name string, rows []schemas.Interaction) *StaticSource {
	return &StaticSource{name: name, rows: rows}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Interactions(_ context.Context) ([]schemas.Interaction, error) {
	return s.rows, nil
}
