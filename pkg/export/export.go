// Package export writes the finished network as delimited text. The default
// layout is the minimal three-column table the downstream COSMOS tooling
// consumes; the full layout adds provenance columns for debugging.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// Options controls column selection and the field separator.
type Options struct {
	// AllColumns adds interaction_type, resource, source_type, target_type,
	// and locations after the minimal source, target, sign triple.
	AllColumns bool
	// Separator overrides the delimiter. Zero means infer from the output
	// path extension, or comma when writing to a plain io.Writer.
	Separator rune
}

var defaultColumns = []string{"source", "target", "sign"}

var allColumns = []string{
	"source", "target", "sign",
	"interaction_type", "resource",
	"source_type", "target_type",
	"locations",
}

// SeparatorFor infers the field separator from a file extension. Tab for
// .tsv and .txt, comma for everything else.
func SeparatorFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return '\t'
	default:
		return ','
	}
}

// Write emits rows to w with a header line. The mor column is exported
// under the name "sign".
func Write(w io.Writer, rows []schemas.Interaction, opts Options) error {
	cw := csv.NewWriter(w)
	if opts.Separator != 0 {
		cw.Comma = opts.Separator
	}

	columns := defaultColumns
	if opts.AllColumns {
		columns = allColumns
	}
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = fieldValue(row, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %s → %s: %w", row.Source, row.Target, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, inferring the separator from the extension
// unless Options.Separator overrides it.
func WriteFile(path string, rows []schemas.Interaction, opts Options) error {
	if opts.Separator == 0 {
		opts.Separator = SeparatorFor(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Write(f, rows, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fieldValue(row schemas.Interaction, col string) string {
	switch col {
	case "source":
		return row.Source
	case "target":
		return row.Target
	case "sign":
		return strconv.Itoa(row.Mor)
	case "interaction_type":
		return row.InteractionType
	case "resource":
		return row.Resource
	case "source_type":
		return string(row.SourceType)
	case "target_type":
		return string(row.TargetType)
	case "locations":
		return strings.Join(row.Locations, ";")
	default:
		return ""
	}
}
