package priceboard

import (
	"sync"
	"testing"

	"github.com/mselser95/polymarket-arb/pkg/types"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	tests := []struct {
		name                         string
		yesPrice, noPrice, yesSz, noSz int
	}{
		{"all-present", 48, 50, 1000, 700},
		{"absent-both", NoPrice, NoPrice, 0, 0},
		{"max-values", 99, 99, 0xFFFF, 0xFFFF},
		{"boundary", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := pack(tt.yesPrice, tt.noPrice, tt.yesSz, tt.noSz)
			yes, no, ySz, nSz := unpack(w)
			if yes != tt.yesPrice || no != tt.noPrice || ySz != tt.yesSz&sizeMask || nSz != tt.noSz&sizeMask {
				t.Errorf("round trip mismatch: got (%d,%d,%d,%d)", yes, no, ySz, nSz)
			}
		})
	}
}

func TestRowStoreLoadNoTornRead(t *testing.T) {
	var row Row
	row.Store(48, 50, 1000, 700)

	yes, no, yesSz, noSz := row.Load()
	if yes != 48 || no != 50 || yesSz != 1000 || noSz != 700 {
		t.Fatalf("unexpected snapshot: %d %d %d %d", yes, no, yesSz, noSz)
	}
}

func TestRowStoreSidePreservesOtherSide(t *testing.T) {
	var row Row
	row.Store(48, NoPrice, 1000, 0)

	row.StoreSide(types.SideNo, 50, 700, 1)

	yes, no, yesSz, noSz := row.Load()
	if yes != 48 || yesSz != 1000 {
		t.Errorf("yes side should be preserved, got price=%d size=%d", yes, yesSz)
	}
	if no != 50 || noSz != 700 {
		t.Errorf("no side not applied, got price=%d size=%d", no, noSz)
	}
}

func TestRowConcurrentStoreSideNoTornRead(t *testing.T) {
	var row Row
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			row.StoreSide(types.SideYes, 1+n%99, n%1000, int64(n))
		}(i)
		go func(n int) {
			defer wg.Done()
			row.StoreSide(types.SideNo, 1+n%99, n%1000, int64(n))
		}(i)
	}
	wg.Wait()

	yes, no, _, _ := row.Load()
	if yes < 1 || yes > 99 || no < 1 || no > 99 {
		t.Fatalf("torn read detected: yes=%d no=%d", yes, no)
	}
}

func TestTableAddPairAndLookup(t *testing.T) {
	table := New()
	pair := types.MarketPair{PairID: "p1", YesToken: "yes-tok", NoToken: "no-tok"}
	id := table.AddPair(pair)
	table.Freeze()

	if table.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", table.Len())
	}

	yesID, ok := table.IDByYesHash(HashToken("yes-tok"))
	if !ok || yesID != id {
		t.Errorf("yes hash lookup failed: id=%d ok=%v", yesID, ok)
	}

	noID, ok := table.IDByNoHash(HashToken("no-tok"))
	if !ok || noID != id {
		t.Errorf("no hash lookup failed: id=%d ok=%v", noID, ok)
	}

	_, ok = table.IDByYesHash(HashToken("unknown"))
	if ok {
		t.Error("expected lookup miss for unknown token")
	}
}

func TestTableCoverage(t *testing.T) {
	table := New()
	id1 := table.AddPair(types.MarketPair{PairID: "p1", YesToken: "y1", NoToken: "n1"})
	id2 := table.AddPair(types.MarketPair{PairID: "p2", YesToken: "y2", NoToken: "n2"})
	table.Freeze()

	table.GetByID(id1).Store(48, 50, 100, 100)
	table.GetByID(id2).Store(NoPrice, 50, 0, 100)

	quoted, total := table.Coverage()
	if total != 2 {
		t.Errorf("expected total=2, got %d", total)
	}
	if quoted != 1 {
		t.Errorf("expected quoted=1, got %d", quoted)
	}
}
