// Package blacklist removes expert-curated false positives from the
// interaction table. Entries come from a YAML file; within one entry every
// field must match exactly (AND), and a row is dropped when any entry
// matches it (OR across entries).
//
// The blacklist applies after ID translation, so entries reference the
// canonical ChEBI and ENSG identifiers.
package blacklist

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// Entry is one filter: column name to exact match value. Values are
// compared as strings, so numeric columns such as mor work too.
type Entry map[string]string

type blacklistFile struct {
	Blacklist []map[string]any `yaml:"blacklist"`
}

// Load reads blacklist entries from a YAML file. A missing or empty file
// yields no entries.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading blacklist %s: %w", path, err)
	}

	var file blacklistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing blacklist %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(file.Blacklist))
	for _, m := range file.Blacklist {
		if len(m) == 0 {
			continue
		}
		entry := make(Entry, len(m))
		for col, val := range m {
			entry[col] = fmt.Sprint(val)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Apply returns rows with every blacklisted interaction removed. An entry
// field naming an unknown column is skipped with a warning; the entry's
// remaining fields still apply.
func Apply(rows []schemas.Interaction, entries []Entry, log *zap.Logger) []schemas.Interaction {
	entries = nonEmpty(entries)
	if len(entries) == 0 {
		return rows
	}

	log = log.Named("blacklist")
	kept := make([]schemas.Interaction, 0, len(rows))
	removed := 0
	for _, row := range rows {
		if matchesAny(row, entries, log) {
			removed++
			continue
		}
		kept = append(kept, row)
	}

	if removed > 0 {
		log.Info("blacklist removed interactions", zap.Int("removed", removed))
	}
	return kept
}

func nonEmpty(entries []Entry) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if len(e) > 0 {
			out = append(out, e)
		}
	}
	return out
}

func matchesAny(row schemas.Interaction, entries []Entry, log *zap.Logger) bool {
	for _, entry := range entries {
		if matches(row, entry, log) {
			return true
		}
	}
	return false
}

func matches(row schemas.Interaction, entry Entry, log *zap.Logger) bool {
	for col, want := range entry {
		got, ok := fieldValue(row, col)
		if !ok {
			log.Warn("blacklist entry references unknown column, skipping field",
				zap.String("column", col))
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func fieldValue(row schemas.Interaction, col string) (string, bool) {
	switch col {
	case "source":
		return row.Source, true
	case "target":
		return row.Target, true
	case "source_type":
		return string(row.SourceType), true
	case "target_type":
		return string(row.TargetType), true
	case "id_type_a":
		return string(row.IDTypeA), true
	case "id_type_b":
		return string(row.IDTypeB), true
	case "interaction_type":
		return row.InteractionType, true
	case "resource":
		return row.Resource, true
	case "mor":
		return strconv.Itoa(row.Mor), true
	default:
		return "", false
	}
}
