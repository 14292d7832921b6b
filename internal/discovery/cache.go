package discovery

import (
	"github.com/goccy/go-json"

	"github.com/mselser95/polymarket-arb/pkg/types"
)

// cacheDoc is the on-disk shape of the discovery cache, per the persisted
// state layout: a timestamp, the resolved pairs, and the set of slugs known
// to have been searched so an incremental refresh can union in new ones
// without re-walking slugs already accounted for.
type cacheDoc struct {
	TimestampSecs  int64             `json:"timestamp_secs"`
	Pairs          []types.MarketPair `json:"pairs"`
	KnownPolySlugs []string          `json:"known_poly_slugs"`
}

func decodeCache(blob []byte) (cacheDoc, bool) {
	if len(blob) == 0 {
		return cacheDoc{}, false
	}
	var doc cacheDoc
	if err := json.Unmarshal(blob, &doc); err != nil {
		return cacheDoc{}, false
	}
	return doc, true
}

func encodeCache(doc cacheDoc) ([]byte, error) {
	return json.Marshal(doc)
}

func unionSlugs(known []string, fresh []string) []string {
	seen := make(map[string]struct{}, len(known)+len(fresh))
	out := make([]string, 0, len(known)+len(fresh))
	for _, s := range known {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range fresh {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
