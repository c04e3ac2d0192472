package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// pubchemNameURL is a var so tests can stand in a local server.
var pubchemNameURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug/compound/name/%s/cids/JSON"

// pubchemCIDResponse is the PUG REST payload for a name→CID query.
type pubchemCIDResponse struct {
	IdentifierList struct {
		CID []int64 `json:"CID"`
	} `json:"IdentifierList"`
}

// NewSynonymResolver resolves free-text compound names (BRENDA ligands such
// as "NAD+" or "ATP") to the canonical chemical vocabulary: the name goes
// through the PubChem PUG REST API to a CID, then through the bulk
// CID-to-canonical table. The first CID returned by PubChem is used; results
// are memoized per unique name.
func NewSynonymResolver(client *Client, cidResolver CandidateResolver, log *zap.Logger) CandidateResolver {
	lookup := func(ctx context.Context, name string, meta Meta) ([]string, error) {
		var resp pubchemCIDResponse
		reqURL := fmt.Sprintf(pubchemNameURL, url.PathEscape(name))
		if err := client.GetJSON(ctx, reqURL, &resp); err != nil {
			return nil, err
		}
		cids := resp.IdentifierList.CID
		if len(cids) == 0 {
			return nil, nil
		}
		cid := strconv.FormatInt(cids[0], 10)
		return cidResolver.ResolveAll(ctx, cid, meta), nil
	}
	return NewPerItem("synonym", lookup, log)
}
