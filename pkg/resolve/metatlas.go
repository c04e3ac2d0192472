package resolve

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const metatlasRawURL = "https://raw.githubusercontent.com/SysBioChalmers/%s/main/model/metabolites.tsv"

// gemResolver translates MetAtlas metabolite IDs (e.g. MAM01039) to a
// canonical chemical vocabulary using the metabolite annotation table that
// ships with each genome-scale model. Different GEMs have different internal
// ID spaces, so one table is loaded and cached per GEM name; the GEM name
// arrives through Meta, parsed from the record's resource label.
type gemResolver struct {
	client *Client
	column string
	log    *zap.Logger
	group  singleflight.Group
	mu     sync.RWMutex
	tables map[string]Table
}

// NewGEMResolver returns a resolver over a GEM metabolite annotation table.
// column selects the target vocabulary: "metChEBIID" or "metHMDBID".
func NewGEMResolver(client *Client, column string, log *zap.Logger) CandidateResolver {
	return &gemResolver{
		client: client,
		column: column,
		log:    log.Named("metatlas"),
		tables: make(map[string]Table),
	}
}

func (g *gemResolver) Resolve(ctx context.Context, raw string, meta Meta) (string, bool) {
	return pickCandidate(g.log, raw, g.ResolveAll(ctx, raw, meta))
}

func (g *gemResolver) ResolveAll(ctx context.Context, raw string, meta Meta) []string {
	if meta.GEM == "" {
		g.log.Debug("metatlas value without GEM context", zap.String("raw", raw))
		return nil
	}
	table := g.ensure(ctx, meta.GEM)
	if table == nil {
		return nil
	}
	return table[raw]
}

func (g *gemResolver) ensure(ctx context.Context, gem string) Table {
	g.mu.RLock()
	table, loaded := g.tables[gem]
	g.mu.RUnlock()
	if loaded {
		return table
	}

	_, _, _ = g.group.Do(gem, func() (interface{}, error) {
		g.mu.RLock()
		_, done := g.tables[gem]
		g.mu.RUnlock()
		if done {
			return nil, nil
		}

		loaded, err := g.loadTable(ctx, gem)
		g.mu.Lock()
		defer g.mu.Unlock()
		if err != nil {
			// Remember the failure as an empty entry so each GEM is
			// attempted at most once per run.
			g.tables[gem] = nil
			g.log.Warn("failed to load GEM metabolite table",
				zap.String("gem", gem), zap.Error(err))
			return nil, nil
		}
		g.tables[gem] = loaded
		g.log.Info("GEM metabolite table loaded",
			zap.String("gem", gem), zap.Int("entries", len(loaded)))
		return nil, nil
	})

	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tables[gem]
}

// loadTable fetches and parses a GEM's metabolites.tsv. The file has a
// header row; metabolite IDs carry a trailing compartment letter that is
// stripped to match the compartment-free IDs used in interaction records.
func (g *gemResolver) loadTable(ctx context.Context, gem string) (Table, error) {
	url := fmt.Sprintf(metatlasRawURL, gem)
	body, err := g.client.FetchCached(ctx, url, gem+"-metabolites.tsv")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("empty metabolite table for %s", gem)
	}
	header := strings.Split(scanner.Text(), "\t")
	idCol, targetCol, compCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "mets":
			idCol = i
		case g.column:
			targetCol = i
		case "metComps", "compartment":
			compCol = i
		}
	}
	if idCol < 0 || targetCol < 0 {
		return nil, fmt.Errorf("metabolite table for %s lacks mets/%s columns", gem, g.column)
	}

	table := make(Table)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) <= idCol || len(fields) <= targetCol {
			continue
		}
		id := strings.TrimSpace(fields[idCol])
		target := strings.TrimSpace(fields[targetCol])
		if id == "" || target == "" {
			continue
		}
		comp := ""
		if compCol >= 0 && len(fields) > compCol {
			comp = strings.TrimSpace(fields[compCol])
		}
		base := stripCompartmentSuffix(id, comp)
		// One base metabolite appears once per compartment; the xref is
		// identical across compartments, so record each target once.
		if !contains(table[base], target) {
			table[base] = append(table[base], target)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading metabolite table for %s: %w", gem, err)
	}
	return table, nil
}

// stripCompartmentSuffix removes a trailing compartment code from a GEM
// metabolite ID (MAM01039c → MAM01039). When the compartment is unknown a
// single trailing lowercase letter is assumed.
func stripCompartmentSuffix(id, comp string) string {
	if comp != "" && strings.HasSuffix(id, comp) && len(id) > len(comp) {
		return id[:len(id)-len(comp)]
	}
	if comp == "" && len(id) > 1 {
		last := id[len(id)-1]
		if last >= 'a' && last <= 'z' {
			return id[:len(id)-1]
		}
	}
	return id
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
