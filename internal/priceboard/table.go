// Package priceboard holds the lock-free live market state: one atomic Row
// per market pair plus the hash indices the ingest loop uses to resolve a
// feed token to a row.
package priceboard

import (
	"hash/fnv"
	"sync"

	"github.com/mselser95/polymarket-arb/pkg/types"
)

// HashToken derives the stable hash a feed adapter uses to address a token
// without carrying the raw string through the hot path.
func HashToken(token string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return h.Sum64()
}

// Table is the append-only-at-startup price board. After Freeze, AddPair
// must not be called again: the hash indices are read-only from that point
// on and require no synchronization for concurrent lookups.
type Table struct {
	mu      sync.Mutex // guards the slices below during seeding only
	pairs   []types.MarketPair
	rows    []*Row
	yesIdx  map[uint64]int
	noIdx   map[uint64]int
	frozen  bool
}

// New creates an empty Table ready for seeding.
func New() *Table {
	return &Table{
		yesIdx: make(map[uint64]int),
		noIdx:  make(map[uint64]int),
	}
}

// AddPair inserts a new market pair and returns its dense market_id. Must
// only be called during startup seeding, before Freeze.
func (t *Table) AddPair(pair types.MarketPair) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	marketID := len(t.rows)
	t.pairs = append(t.pairs, pair)
	t.rows = append(t.rows, &Row{})
	t.yesIdx[HashToken(pair.YesToken)] = marketID
	t.noIdx[HashToken(pair.NoToken)] = marketID
	return marketID
}

// Freeze marks the table as seeded. After this call the hash indices are
// treated as read-only and require no locking for lookups.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
	MarketsSeeded.Set(float64(len(t.rows)))
}

// Len returns the number of seeded market pairs.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// GetByID returns the row for a dense market_id. Panics on an out-of-range
// id, which indicates a programming error (an id not produced by AddPair).
func (t *Table) GetByID(id int) *Row {
	return t.rows[id]
}

// PairByID returns the immutable pair identity for a market_id.
func (t *Table) PairByID(id int) types.MarketPair {
	return t.pairs[id]
}

// IDByYesHash resolves a feed token hash addressing the YES side.
func (t *Table) IDByYesHash(h uint64) (int, bool) {
	id, ok := t.yesIdx[h]
	return id, ok
}

// IDByNoHash resolves a feed token hash addressing the NO side.
func (t *Table) IDByNoHash(h uint64) (int, bool) {
	id, ok := t.noIdx[h]
	return id, ok
}

// Coverage reports how many rows currently have both sides quoted, for
// heartbeat telemetry.
func (t *Table) Coverage() (quoted, total int) {
	total = len(t.rows)
	for _, r := range t.rows {
		yes, no, _, _ := r.Load()
		if yes != NoPrice && no != NoPrice {
			quoted++
		}
	}
	return quoted, total
}
