package router

import (
	"context"
	"fmt"

	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/metrics"
	"github.com/swapforge/route-engine/internal/services"
)

// QuoteNormalizer turns raw collaborator quotes for direct-swap legs into
// gas-adjusted RouteWithValidQuote candidates, filtering unusable quotes
// and flagging systematically failing pools.
type QuoteNormalizer struct {
	quotes    QuoteProvider
	gas       *GasModel
	blacklist *Blacklist
	log       *services.ServiceLogger
}

func NewQuoteNormalizer(quotes QuoteProvider, gas *GasModel, blacklist *Blacklist) *QuoteNormalizer {
	return &QuoteNormalizer{
		quotes:    quotes,
		gas:       gas,
		blacklist: blacklist,
		log:       services.NewServiceLogger("router.QuoteNormalizer"),
	}
}

// QuoteBatch samples every leg at every percent breakpoint of amount in a
// single batched collaborator call and returns the valid candidates.
//
// Per leg, quotes are consumed in breakpoint order and the first missing or
// non-positive quote aborts the leg: pools quote monotonically, so failure
// at one fill size implies failure above it. A leg that produced no
// positive quote at any breakpoint gets its pool blacklisted for future
// requests (not fatal to this one). Valid quotes are gas-adjusted:
// exact-input subtracts the execution cost and drops breakpoints whose
// quote would net-lose against it, exact-output adds the cost
// unconditionally.
func (n *QuoteNormalizer) QuoteBatch(
	ctx context.Context,
	legs []*DirectSwap,
	amount domain.AssetAmount,
	percents []int,
	tradeType domain.TradeType,
	blockNumber uint64,
) ([]*RouteWithValidQuote, error) {
	if len(legs) == 0 {
		return nil, nil
	}

	amounts := make([]domain.AssetAmount, len(percents))
	for i, p := range percents {
		amounts[i] = domain.NewAssetAmount(amount.Asset, percentOf(amount.Amount, p))
	}

	var rows [][]LegQuote
	var err error
	if tradeType == domain.ExactInput {
		rows, err = n.quotes.QuoteExactInput(ctx, amounts, legs, blockNumber)
	} else {
		rows, err = n.quotes.QuoteExactOutput(ctx, amounts, legs, blockNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("quote provider: %w", err)
	}
	if len(rows) != len(legs) {
		return nil, fmt.Errorf("quote provider: got %d quote rows for %d legs", len(rows), len(legs))
	}

	var candidates []*RouteWithValidQuote
	for li, leg := range legs {
		quoteAsset := leg.TokenOut
		if tradeType == domain.ExactOutput {
			quoteAsset = leg.TokenIn
		}
		gasCost := n.gas.CostInToken(ctx, leg, quoteAsset)

		positive := 0
		for i, lq := range rows[li] {
			if i >= len(percents) {
				break
			}
			if lq.Quote == nil || lq.Quote.Sign() <= 0 {
				// Monotonic pools: no point sampling larger fills.
				break
			}
			positive++

			raw := domain.NewAssetAmount(quoteAsset, lq.Quote)
			var adjusted domain.AssetAmount
			if tradeType == domain.ExactInput {
				if raw.Cmp(gasCost) < 0 {
					// Executing this size nets less than not
					// trading at all; drop the breakpoint.
					continue
				}
				adjusted = raw.Sub(gasCost)
			} else {
				adjusted = raw.Add(gasCost)
			}

			candidates = append(candidates, &RouteWithValidQuote{
				Amount:        amounts[i],
				Percent:       percents[i],
				Route:         leg,
				RawQuote:      raw,
				AdjustedQuote: adjusted,
				TradeType:     tradeType,
			})
		}

		if positive == 0 {
			if n.blacklist.Add(leg.Pool.ID) {
				n.log.Warn().Str("pool", leg.Pool.ID).Msg("pool produced no usable quote; blacklisting")
			}
		}
	}

	metrics.QuotedCandidates.Observe(float64(len(candidates)))
	return candidates, nil
}
