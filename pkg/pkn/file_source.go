package pkn

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// FileSource reads raw interaction records from a delimited file, one record
// per line with a header row. It backs offline builds and resources whose
// records were extracted by external tooling.
//
// Recognized columns: source, target, source_type, target_type, id_type_a,
// id_type_b, interaction_type, resource, mor, locations (";"-separated),
// score, reaction_id, reverse, orphan. Unknown columns are ignored.
type FileSource struct {
	name      string
	path      string
	minScore  int
	gemModels map[string]bool
}

// FileSourceOption configures per-resource record filtering.
type FileSourceOption func(*FileSource)

// WithMinScore drops records whose score column falls below min. Records
// without a score column are kept; STITCH is the only resource that carries
// a combined score. A min of 0 disables the filter.
func WithMinScore(min int) FileSourceOption {
	return func(s *FileSource) { s.minScore = min }
}

// WithGEMModels restricts GEM-labelled records ("GEM:<model>",
// "GEM_transporter:<model>") to the configured model names. Records without
// a GEM label pass through. An empty list disables the filter.
func WithGEMModels(models []string) FileSourceOption {
	return func(s *FileSource) {
		if len(models) == 0 {
			return
		}
		s.gemModels = make(map[string]bool, len(models))
		for _, m := range models {
			s.gemModels[m] = true
		}
	}
}

func NewFileSource(name, path string, opts ...FileSourceOption) *FileSource {
	s := &FileSource{name: name, path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Interactions(_ context.Context) ([]schemas.Interaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if ext := strings.ToLower(filepath.Ext(s.path)); ext == ".tsv" || ext == ".txt" {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[strings.TrimSpace(col)] = i
	}
	if _, ok := header["source"]; !ok {
		return nil, fmt.Errorf("%s: missing required column %q", s.path, "source")
	}
	if _, ok := header["target"]; !ok {
		return nil, fmt.Errorf("%s: missing required column %q", s.path, "target")
	}

	rows := make([]schemas.Interaction, 0, len(records)-1)
	for lineNo, record := range records[1:] {
		field := func(col string) string {
			i, ok := header[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := schemas.Interaction{
			Source:          field("source"),
			Target:          field("target"),
			SourceType:      schemas.EntityType(field("source_type")),
			TargetType:      schemas.EntityType(field("target_type")),
			IDTypeA:         schemas.IDType(field("id_type_a")),
			IDTypeB:         schemas.IDType(field("id_type_b")),
			InteractionType: field("interaction_type"),
			Resource:        field("resource"),
		}
		if row.Resource == "" {
			row.Resource = s.name
		}
		if v := field("mor"); v != "" {
			mor, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad mor %q", s.path, lineNo+2, v)
			}
			row.Mor = mor
		}
		if v := field("locations"); v != "" {
			row.Locations = strings.Split(v, ";")
		}
		if v := field("score"); v != "" {
			score, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad score %q", s.path, lineNo+2, v)
			}
			if s.minScore > 0 && score < s.minScore {
				continue
			}
		}
		if s.gemModels != nil {
			if m := row.GEMName(); m != "" && !s.gemModels[m] {
				continue
			}
		}
		row.Attrs.ReactionID = field("reaction_id")
		row.Attrs.Reverse = boolField(field("reverse"))
		row.Attrs.Orphan = boolField(field("orphan"))

		rows = append(rows, row)
	}
	return rows, nil
}

func boolField(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
