package router

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/swapforge/route-engine/internal/metrics"
)

// Blacklist is the process-wide append-only set of pool ids that yielded no
// usable quote across an entire request. The quote normalizer writes to it;
// the candidate selector of subsequent requests reads it. It is empty at
// process start and never cleared mid-request; persistence, if any, is the
// operator's concern. mapset's default set is safe for concurrent insert.
type Blacklist struct {
	ids mapset.Set[string]
}

func NewBlacklist() *Blacklist {
	return &Blacklist{ids: mapset.NewSet[string]()}
}

// Add records a failing pool. Returns true on first insertion.
func (b *Blacklist) Add(poolID string) bool {
	added := b.ids.Add(poolID)
	if added {
		metrics.BlacklistedPools.Inc()
	}
	return added
}

func (b *Blacklist) Contains(poolID string) bool {
	return b.ids.Contains(poolID)
}

func (b *Blacklist) Size() int {
	return b.ids.Cardinality()
}
