package router

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/swapforge/route-engine/internal/domain"
)

// Route is the multiplex route tree: a direct swap leaf, a batch of
// alternatives sharing one input, or a hop-to-hop chain. The interface is
// sealed so the three variants are the only implementations; consumers
// type-switch and treat any other dynamic type as a programming error.
type Route interface {
	Input() domain.Asset
	Output() domain.Asset
	// PoolIDs is the flattened union of every pool id reachable beneath
	// this node, used for overlap detection in the split search.
	PoolIDs() mapset.Set[string]
	// PoolCount is the number of pool traversals one unit of flow makes
	// through this route; the gas model charges per traversal.
	PoolCount() int

	sealedRoute()
}

// DirectSwap trades input for output through exactly one pool.
type DirectSwap struct {
	Pool     *domain.Pool
	TokenIn  domain.Asset
	TokenOut domain.Asset

	poolIDs mapset.Set[string]
}

func NewDirectSwap(pool *domain.Pool, tokenIn, tokenOut domain.Asset) *DirectSwap {
	return &DirectSwap{
		Pool:     pool,
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		poolIDs:  mapset.NewThreadUnsafeSet(pool.ID),
	}
}

func (d *DirectSwap) Input() domain.Asset          { return d.TokenIn }
func (d *DirectSwap) Output() domain.Asset         { return d.TokenOut }
func (d *DirectSwap) PoolIDs() mapset.Set[string]  { return d.poolIDs }
func (d *DirectSwap) PoolCount() int               { return 1 }
func (d *DirectSwap) sealedRoute()                 {}

// Batch is an ordered set of sibling routes sharing the same input asset.
// Outputs align positionally with Routes. Depending on context a batch is
// "choose one of these" (a hop's pool alternatives) or "split across
// these" (the top level).
type Batch struct {
	TokenIn domain.Asset
	Routes  []Route
	Outputs []domain.Asset

	poolIDs mapset.Set[string]
}

func NewBatch(tokenIn domain.Asset, routes []Route) *Batch {
	ids := mapset.NewThreadUnsafeSet[string]()
	outputs := make([]domain.Asset, len(routes))
	for i, r := range routes {
		ids = ids.Union(r.PoolIDs())
		outputs[i] = r.Output()
	}
	return &Batch{TokenIn: tokenIn, Routes: routes, Outputs: outputs, poolIDs: ids}
}

func (b *Batch) Input() domain.Asset { return b.TokenIn }

// Output of a batch is only well-defined when all alternatives end in the
// same asset, which composition guarantees for hop-level batches.
func (b *Batch) Output() domain.Asset        { return b.Outputs[0] }
func (b *Batch) PoolIDs() mapset.Set[string] { return b.poolIDs }
func (b *Batch) sealedRoute()                {}

func (b *Batch) PoolCount() int {
	max := 0
	for _, r := range b.Routes {
		if n := r.PoolCount(); n > max {
			max = n
		}
	}
	return max
}

// MultiHop chains sub-routes along a fixed token sequence: the output of
// Hops[i] is the input of Hops[i+1].
type MultiHop struct {
	Hops      []Route
	TokenPath []domain.Asset

	poolIDs mapset.Set[string]
}

func NewMultiHop(hops []Route, tokenPath []domain.Asset) *MultiHop {
	if len(tokenPath) != len(hops)+1 {
		panic(fmt.Sprintf("multi-hop: %d hops need %d tokens, got %d", len(hops), len(hops)+1, len(tokenPath)))
	}
	ids := mapset.NewThreadUnsafeSet[string]()
	for _, h := range hops {
		ids = ids.Union(h.PoolIDs())
	}
	return &MultiHop{Hops: hops, TokenPath: tokenPath, poolIDs: ids}
}

func (m *MultiHop) Input() domain.Asset         { return m.TokenPath[0] }
func (m *MultiHop) Output() domain.Asset        { return m.TokenPath[len(m.TokenPath)-1] }
func (m *MultiHop) PoolIDs() mapset.Set[string] { return m.poolIDs }
func (m *MultiHop) sealedRoute()                {}

func (m *MultiHop) PoolCount() int {
	n := 0
	for _, h := range m.Hops {
		n += h.PoolCount()
	}
	return n
}

// RouteWithValidQuote is a quoted, gas-adjusted instance of a route: the
// unit the optimizer compares and assembles into plans. Quoted instances
// are immutable except for the one sanctioned mutation: the trailing leg of
// a final plan absorbs rounding dust (see reconcileAmounts).
type RouteWithValidQuote struct {
	// Amount actually assigned to this route and the share of the total
	// it represents.
	Amount  domain.AssetAmount
	Percent int

	Route Route

	// RawQuote is the collaborator's quote; AdjustedQuote folds in the
	// estimated execution cost (subtracted for exact-in, added for
	// exact-out). Both are denominated in the quote-side asset.
	RawQuote      domain.AssetAmount
	AdjustedQuote domain.AssetAmount

	// SubQuotes are the chosen child quotes for composite routes: per-hop
	// choices for a multi-hop, legs for a split plan. Empty for leaves.
	SubQuotes []*RouteWithValidQuote

	TradeType domain.TradeType
}

// PoolIDs is the pool set this quote actually occupies: for a leaf the
// pool's own id, for composites the union over the chosen children. The
// underlying route tree is wider: it also contains the alternatives that
// were not picked.
func (q *RouteWithValidQuote) PoolIDs() mapset.Set[string] {
	if len(q.SubQuotes) == 0 {
		return q.Route.PoolIDs()
	}
	ids := mapset.NewThreadUnsafeSet[string]()
	for _, sub := range q.SubQuotes {
		ids = ids.Union(sub.PoolIDs())
	}
	return ids
}

// better reports whether a beats b under the trade-type comparator:
// exact-input prefers the larger gas-adjusted quote, exact-output the
// smaller.
func better(tradeType domain.TradeType, a, b *RouteWithValidQuote) bool {
	if b == nil {
		return true
	}
	if a == nil {
		return false
	}
	if tradeType == domain.ExactInput {
		return a.AdjustedQuote.Cmp(b.AdjustedQuote) > 0
	}
	return a.AdjustedQuote.Cmp(b.AdjustedQuote) < 0
}
