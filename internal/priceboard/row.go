package priceboard

import (
	"sync/atomic"

	"github.com/mselser95/polymarket-arb/pkg/types"
)

// NoPrice is the sentinel value meaning "not yet quoted" for either side of
// a Row's top of book.
const NoPrice = 0

const (
	priceBits = 16
	sizeBits  = 16
	priceMask = (1 << priceBits) - 1
	sizeMask  = (1 << sizeBits) - 1
)

// Row is one market's live top-of-book state. All four fields are packed
// into a single atomic word so writers update with one atomic store and
// readers with one atomic load: a torn read is structurally impossible
// because there is only ever one word to read.
type Row struct {
	word        atomic.Uint64
	lastUpdated atomic.Int64 // unix nanos, informational only
}

func pack(yesPrice, noPrice, yesSize, noSize int) uint64 {
	return uint64(yesPrice&priceMask) |
		uint64(noPrice&priceMask)<<priceBits |
		uint64(yesSize&sizeMask)<<(2*priceBits) |
		uint64(noSize&sizeMask)<<(2*priceBits+sizeBits)
}

func unpack(w uint64) (yesPrice, noPrice, yesSize, noSize int) {
	yesPrice = int(w & priceMask)
	noPrice = int((w >> priceBits) & priceMask)
	yesSize = int((w >> (2 * priceBits)) & sizeMask)
	noSize = int((w >> (2*priceBits + sizeBits)) & sizeMask)
	return
}

// Store writes a full snapshot of the row in one atomic operation. Writes
// with unchanged values are permitted and cheap.
func (r *Row) Store(yesPrice, noPrice, yesSize, noSize int) {
	r.word.Store(pack(yesPrice, noPrice, yesSize, noSize))
}

// Load reads a consistent snapshot of the row.
func (r *Row) Load() (yesPrice, noPrice, yesSize, noSize int) {
	return unpack(r.word.Load())
}

// StoreSide updates one side of the row while preserving the other side's
// current values, used by the ingest loop when a feed event only carries
// one side's quote.
func (r *Row) StoreSide(side types.Side, price, size int, nowNanos int64) {
	for {
		old := r.word.Load()
		yesPrice, noPrice, yesSize, noSize := unpack(old)
		switch side {
		case types.SideYes:
			yesPrice, yesSize = price, size
		case types.SideNo:
			noPrice, noSize = price, size
		}
		next := pack(yesPrice, noPrice, yesSize, noSize)
		if r.word.CompareAndSwap(old, next) {
			r.lastUpdated.Store(nowNanos)
			return
		}
	}
}

// LastUpdatedNanos returns the last time either side of the row changed,
// for heartbeat telemetry. Best-effort: not synchronized with word.
func (r *Row) LastUpdatedNanos() int64 {
	return r.lastUpdated.Load()
}
