package resolve

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// UniChem source IDs for the vocabularies this pipeline crosses between.
// https://www.ebi.ac.uk/unichem/sources
const (
	UniChemChebi   = 7
	UniChemHMDB    = 18
	UniChemPubchem = 22
)

const unichemBaseURL = "https://ftp.ebi.ac.uk/pub/databases/chembl/UniChem/data/wholeSourceMapping"

// UniChemLoader builds a from→to cross-reference table from a UniChem
// whole-source mapping dump. The dump is published once per source pair
// (lower source ID first); when the requested direction is the reverse of
// the published one the table is inverted while loading.
//
// The dump is tab-separated with a single header line; ChEBI accessions
// appear with their "CHEBI:" prefix, PubChem CIDs and HMDB accessions bare.
func UniChemLoader(client *Client, fromSrc, toSrc int) TableLoader {
	return func(ctx context.Context) (Table, error) {
		lo, hi := fromSrc, toSrc
		invert := false
		if lo > hi {
			lo, hi = hi, lo
			invert = true
		}
		name := fmt.Sprintf("src%dsrc%d.txt", lo, hi)
		url := fmt.Sprintf("%s/src_id%d/%s", unichemBaseURL, lo, name)

		body, err := client.FetchCached(ctx, url, name)
		if err != nil {
			return nil, err
		}
		defer body.Close()

		table := make(Table)
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		first := true
		for scanner.Scan() {
			if first {
				first = false
				continue
			}
			from, to, ok := strings.Cut(scanner.Text(), "\t")
			if !ok || from == "" || to == "" {
				continue
			}
			if invert {
				from, to = to, from
			}
			table[from] = append(table[from], to)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return table, nil
	}
}
