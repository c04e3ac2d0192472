package format

import (
	"strconv"

	"github.com/omnipathdb/metabopkn/pkg/schemas"
)

// assignReactionIndex computes the per-row reaction index N used in gene
// node names.
//
// Each row gets a reaction key: pre-expanded rows carrying a reaction ID use
// that ID, so all rows of one biochemical reaction collapse onto the same N;
// every other row gets a row-unique sentinel and consumes its own N. Within
// each category, distinct keys are numbered 1, 2, 3, … in order of first
// appearance, and the counter restarts for the next category. Identical
// input in identical order therefore reproduces identical N values.
func assignReactionIndex(rows []schemas.Interaction, categories []schemas.Category) []int {
	next := make(map[schemas.Category]int, len(schemas.Categories))
	seen := make(map[schemas.Category]map[string]int)

	indices := make([]int, len(rows))
	for i, row := range rows {
		key := "__row__" + strconv.Itoa(i)
		if row.IsPreExpanded() && row.Attrs.ReactionID != "" {
			key = row.Attrs.ReactionID
		}

		cat := categories[i]
		perCat := seen[cat]
		if perCat == nil {
			perCat = make(map[string]int)
			seen[cat] = perCat
		}
		n, ok := perCat[key]
		if !ok {
			next[cat]++
			n = next[cat]
			perCat[key] = n
		}
		indices[i] = n
	}
	return indices
}
