package router

import (
	"math/big"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/metrics"
)

// splitState is one node of the split search: the legs committed so far,
// the pools they occupy, the percent still unassigned, and the highest
// breakpoint index the next leg may use. Constraining successors to
// breakpoints at or before the frontier index makes each percent partition
// reachable exactly once (as a non-increasing percent sequence).
type splitState struct {
	chosen    []*RouteWithValidQuote
	used      mapset.Set[string]
	remaining int
	frontier  int
}

// BestSwapSplit partitions amount across percent breakpoints and candidate
// routes, respecting the non-overlapping-pool constraint and the split
// budget, and returns the best-valued full partition as a Batch quote.
//
// The search is a greedy frontier expansion, not exhaustive: at each step
// only the single best-ranked non-conflicting candidate per breakpoint is
// tried. That bounds the state space across pool alternatives, so the
// result is the best plan found under the pruning policy rather than a
// provable global optimum.
//
// percents must be ascending and candidates' Percent fields must be drawn
// from it. The returned plan's leg amounts sum to amount exactly: rounding
// dust from the percent grid is folded into the last leg (the one
// sanctioned quote-size approximation).
func BestSwapSplit(
	amount domain.AssetAmount,
	percents []int,
	candidates []*RouteWithValidQuote,
	tradeType domain.TradeType,
	minSplits, maxSplits int,
) (*RouteWithValidQuote, error) {
	byPercent := make(map[int][]*RouteWithValidQuote, len(percents))
	for _, c := range candidates {
		byPercent[c.Percent] = append(byPercent[c.Percent], c)
	}
	// Best-first within each percent group; the stable sort keeps
	// arrival order on ties, so identical inputs yield identical plans.
	for _, group := range byPercent {
		sort.SliceStable(group, func(i, j int) bool {
			return better(tradeType, group[i], group[j])
		})
	}

	// Incumbent: the unsplit 100% candidate, when one exists and a
	// single leg satisfies the lower split bound. Every accepted
	// multi-leg plan must beat it.
	var bestLegs []*RouteWithValidQuote
	var bestTotal *big.Int
	if minSplits <= 1 {
		if group := byPercent[100]; len(group) > 0 {
			bestLegs = []*RouteWithValidQuote{group[0]}
			bestTotal = group[0].AdjustedQuote.Amount
		}
	}

	// One seed per breakpoint, largest first.
	var queue []*splitState
	for i := len(percents) - 1; i >= 0; i-- {
		p := percents[i]
		group := byPercent[p]
		if p >= 100 || len(group) == 0 {
			continue
		}
		queue = append(queue, &splitState{
			chosen:    []*RouteWithValidQuote{group[0]},
			used:      group[0].PoolIDs(),
			remaining: 100 - p,
			frontier:  i,
		})
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		// Both completing and extending add a leg; a state already at
		// the budget has no admissible successors.
		if len(state.chosen) >= maxSplits {
			continue
		}

		for i := state.frontier; i >= 0; i-- {
			p := percents[i]
			if p > state.remaining {
				continue
			}

			next := firstNonConflicting(byPercent[p], state.used)
			if next == nil {
				continue
			}

			if state.remaining-p == 0 {
				if len(state.chosen)+1 < minSplits {
					continue
				}
				total := new(big.Int).Set(state.chosen[0].AdjustedQuote.Amount)
				for _, leg := range state.chosen[1:] {
					total.Add(total, leg.AdjustedQuote.Amount)
				}
				total.Add(total, next.AdjustedQuote.Amount)
				if betterTotal(tradeType, total, bestTotal) {
					bestLegs = append(append([]*RouteWithValidQuote(nil), state.chosen...), next)
					bestTotal = total
				}
				continue
			}

			queue = append(queue, &splitState{
				chosen:    append(append([]*RouteWithValidQuote(nil), state.chosen...), next),
				used:      state.used.Union(next.PoolIDs()),
				remaining: state.remaining - p,
				frontier:  i,
			})
		}
	}

	if bestLegs == nil {
		return nil, ErrNoValidSplit
	}

	metrics.PlanLegCount.Observe(float64(len(bestLegs)))
	return assemblePlan(amount, bestLegs, tradeType), nil
}

// firstNonConflicting returns the best-ranked candidate whose pool set is
// disjoint from used. This is the greedy pruning rule.
func firstNonConflicting(group []*RouteWithValidQuote, used mapset.Set[string]) *RouteWithValidQuote {
	for _, c := range group {
		if disjoint(c.PoolIDs(), used) {
			return c
		}
	}
	return nil
}

func disjoint(a, b mapset.Set[string]) bool {
	conflict := false
	a.Each(func(id string) bool {
		if b.Contains(id) {
			conflict = true
			return true // stop iteration
		}
		return false
	})
	return !conflict
}

func betterTotal(tradeType domain.TradeType, total, best *big.Int) bool {
	if best == nil {
		return true
	}
	if tradeType == domain.ExactInput {
		return total.Cmp(best) > 0
	}
	return total.Cmp(best) < 0
}

// assemblePlan builds the final Batch quote from the winning legs and
// reconciles rounding dust: when the percent grid does not tile the amount
// exactly, the remainder is added to the last leg so leg amounts sum to
// the requested amount precisely. The last leg's quote was sampled at a
// marginally smaller size, an accepted approximation.
func assemblePlan(amount domain.AssetAmount, legs []*RouteWithValidQuote, tradeType domain.TradeType) *RouteWithValidQuote {
	assigned := new(big.Int)
	for _, leg := range legs {
		assigned.Add(assigned, leg.Amount.Amount)
	}
	if dust := new(big.Int).Sub(amount.Amount, assigned); dust.Sign() != 0 {
		last := legs[len(legs)-1]
		last.Amount = domain.NewAssetAmount(last.Amount.Asset, new(big.Int).Add(last.Amount.Amount, dust))
	}

	raw := legs[0].RawQuote
	adjusted := legs[0].AdjustedQuote
	routes := []Route{legs[0].Route}
	for _, leg := range legs[1:] {
		raw = raw.Add(leg.RawQuote)
		adjusted = adjusted.Add(leg.AdjustedQuote)
		routes = append(routes, leg.Route)
	}

	return &RouteWithValidQuote{
		Amount:        amount,
		Percent:       100,
		Route:         NewBatch(legs[0].Route.Input(), routes),
		RawQuote:      raw,
		AdjustedQuote: adjusted,
		SubQuotes:     legs,
		TradeType:     tradeType,
	}
}
