package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/swapforge/route-engine/internal/config"
	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/metrics"
	"github.com/swapforge/route-engine/internal/services"
)

// Engine orchestrates one routing request end to end: candidate selection,
// path enumeration, route composition, quoting, and the split search. The
// engine holds no per-request state, so one instance serves concurrent
// requests.
type Engine struct {
	selector  *CandidateSelector
	quotes    QuoteProvider
	gasPrices GasPriceProvider
	reserves  ReserveLookup
	blacklist *Blacklist
	defaults  config.RoutingConfig
	log       *services.ServiceLogger
}

func NewEngine(
	selector *CandidateSelector,
	quotes QuoteProvider,
	gasPrices GasPriceProvider,
	reserves ReserveLookup,
	blacklist *Blacklist,
	defaults config.RoutingConfig,
) *Engine {
	return &Engine{
		selector:  selector,
		quotes:    quotes,
		gasPrices: gasPrices,
		reserves:  reserves,
		blacklist: blacklist,
		defaults:  defaults,
		log:       services.NewServiceLogger("router.Engine"),
	}
}

// Route finds the best split plan for trading amount against quoteAsset.
// For exact-input trades amount is the input and quoteAsset the desired
// output; for exact-output the roles flip. overrides, when non-nil,
// replaces the engine's default routing config for this request only.
//
// "No route" outcomes (no candidate pools, no connecting path, no valid
// split) come back as the sentinel errors recognized by IsNoRoute; any
// other error is a collaborator failure.
func (e *Engine) Route(
	ctx context.Context,
	amount domain.AssetAmount,
	quoteAsset domain.Asset,
	tradeType domain.TradeType,
	overrides *config.RoutingConfig,
) (*RouteWithValidQuote, error) {
	start := time.Now()
	plan, err := e.route(ctx, amount, quoteAsset, tradeType, overrides)

	status := "success"
	switch {
	case err == nil:
	case IsNoRoute(err):
		status = "no_route"
	default:
		status = "error"
	}
	metrics.RouteRequests.WithLabelValues(tradeType.String(), status).Inc()
	metrics.RouteDuration.WithLabelValues(tradeType.String()).Observe(time.Since(start).Seconds())
	return plan, err
}

func (e *Engine) route(
	ctx context.Context,
	amount domain.AssetAmount,
	quoteAsset domain.Asset,
	tradeType domain.TradeType,
	overrides *config.RoutingConfig,
) (*RouteWithValidQuote, error) {
	cfg := e.defaults
	if overrides != nil {
		cfg = *overrides
	}

	tokenIn, tokenOut := amount.Asset, quoteAsset
	if tradeType == domain.ExactOutput {
		tokenIn, tokenOut = quoteAsset, amount.Asset
	}

	gasPrice, block, err := e.gasPrices.GetGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	// Pin all collaborator reads to one block so the plan is computed
	// against a consistent chain state.
	if cfg.BlockNumber == 0 {
		cfg.BlockNumber = block
	}

	candidates, err := e.selector.Select(ctx, tokenIn.Address, tokenOut.Address, tradeType, &cfg)
	if err != nil {
		return nil, err
	}
	if len(candidates.Pools) == 0 {
		return nil, ErrNoPoolFound
	}

	paths := EnumeratePaths(tokenIn, tokenOut, candidates.Pools, cfg.MaxHops)
	metrics.PathsEnumerated.Observe(float64(len(paths)))
	if len(paths) == 0 {
		return nil, ErrNoRoute
	}
	top := ComposeRoutes(paths)

	gasModel := NewGasModel(e.nativeAsset(candidates, tokenIn, tokenOut), gasPrice, e.reserves, candidates.GasRefPool)
	normalizer := NewQuoteNormalizer(e.quotes, gasModel, e.blacklist)

	outer := distributionPercents(cfg.DistributionPercent)
	cells := e.quoteAllRoutes(ctx, normalizer, &cfg, top.Routes, amount, outer, tradeType)

	quoted := make([]*RouteWithValidQuote, 0, len(cells))
	for _, c := range cells {
		if c.err != nil {
			if IsNoRoute(c.err) {
				continue
			}
			return nil, c.err
		}
		quoted = append(quoted, c.quote)
	}
	if len(quoted) == 0 {
		return nil, ErrNoRoute
	}

	e.log.Debug().
		Int("pools", len(candidates.Pools)).
		Int("paths", len(paths)).
		Int("quoted", len(quoted)).
		Str("trade_type", tradeType.String()).
		Msg("running split search")

	return BestSwapSplit(amount, outer, quoted, tradeType, cfg.MinSplits, cfg.MaxSplits)
}

// nativeAsset resolves full metadata for the wrapped native token, needed
// by the gas model. The trade tokens and the candidate metadata are checked
// in turn; a request that never touches the native asset falls back to a
// bare identity, which the gas model only ever compares by address.
func (e *Engine) nativeAsset(candidates *CandidateSet, tokenIn, tokenOut domain.Asset) domain.Asset {
	native := e.selector.wrappedNative
	if tokenIn.Address == native {
		return tokenIn
	}
	if tokenOut.Address == native {
		return tokenOut
	}
	if a, ok := candidates.Asset(native); ok {
		return a
	}
	return domain.Asset{ChainID: tokenIn.ChainID, Address: native, Decimals: 18}
}

type quoteCell struct {
	quote *RouteWithValidQuote
	err   error
}

// quoteAllRoutes prices every (route, outer percent) combination. Cells are
// independent so they fan out on goroutines, one per combination; each
// writes its own slot, so the only synchronization is the WaitGroup. The
// returned slice is in deterministic (route, percent) order regardless of
// goroutine scheduling.
func (e *Engine) quoteAllRoutes(
	ctx context.Context,
	normalizer *QuoteNormalizer,
	cfg *config.RoutingConfig,
	routes []Route,
	amount domain.AssetAmount,
	percents []int,
	tradeType domain.TradeType,
) []quoteCell {
	cells := make([]quoteCell, len(routes)*len(percents))
	var wg sync.WaitGroup
	for ri, route := range routes {
		for pi, percent := range percents {
			wg.Add(1)
			go func(idx int, r Route, p int) {
				defer wg.Done()
				amt := domain.NewAssetAmount(amount.Asset, percentOf(amount.Amount, p))
				q, err := e.quoteRoute(ctx, normalizer, cfg, r, amt, p, tradeType)
				cells[idx] = quoteCell{quote: q, err: err}
			}(ri*len(percents)+pi, route, percent)
		}
	}
	wg.Wait()
	return cells
}

// quoteRoute prices one composed route at one assigned amount and returns
// it as a split-search candidate tagged with its outer percent.
func (e *Engine) quoteRoute(
	ctx context.Context,
	normalizer *QuoteNormalizer,
	cfg *config.RoutingConfig,
	route Route,
	amount domain.AssetAmount,
	percent int,
	tradeType domain.TradeType,
) (*RouteWithValidQuote, error) {
	var (
		q   *RouteWithValidQuote
		err error
	)
	switch r := route.(type) {
	case *DirectSwap:
		q, err = e.quoteHop(ctx, normalizer, cfg, NewBatch(r.TokenIn, []Route{r}), amount, tradeType)
	case *Batch:
		q, err = e.quoteHop(ctx, normalizer, cfg, r, amount, tradeType)
	case *MultiHop:
		q, err = e.quoteMultiHop(ctx, normalizer, cfg, r, amount, tradeType)
	default:
		panic(fmt.Sprintf("unexpected route type %T", route))
	}
	if err != nil {
		return nil, err
	}
	q.Percent = percent
	return q, nil
}

// quoteHop prices a single-hop batch: every pool alternative shares the
// batch's input and output, so the hop reduces to quoting the direct-swap
// legs on the inner percent grid and running the split search over them
// with the hop-local split bound.
func (e *Engine) quoteHop(
	ctx context.Context,
	normalizer *QuoteNormalizer,
	cfg *config.RoutingConfig,
	hop *Batch,
	amount domain.AssetAmount,
	tradeType domain.TradeType,
) (*RouteWithValidQuote, error) {
	legs := make([]*DirectSwap, len(hop.Routes))
	for i, r := range hop.Routes {
		leg, ok := r.(*DirectSwap)
		if !ok {
			panic(fmt.Sprintf("hop batch contains %T, want *DirectSwap", r))
		}
		legs[i] = leg
	}

	inner := distributionPercents(cfg.InnerDistributionPercent)
	candidates, err := normalizer.QuoteBatch(ctx, legs, amount, inner, tradeType, cfg.BlockNumber)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoRoute
	}
	return BestSwapSplit(amount, inner, candidates, tradeType, 1, cfg.MaxSplits)
}

// quoteMultiHop chains hop quotes along the route's token path. Exact-input
// walks forward, feeding each hop's gas-adjusted output into the next as
// its input; exact-output walks backward, feeding each hop's gas-adjusted
// required input into the previous hop as its target output. Each hop is
// optimized locally; no global search across hop combinations is
// performed.
func (e *Engine) quoteMultiHop(
	ctx context.Context,
	normalizer *QuoteNormalizer,
	cfg *config.RoutingConfig,
	route *MultiHop,
	amount domain.AssetAmount,
	tradeType domain.TradeType,
) (*RouteWithValidQuote, error) {
	hopQuotes := make([]*RouteWithValidQuote, len(route.Hops))

	if tradeType == domain.ExactInput {
		current := amount
		for i, hop := range route.Hops {
			q, err := e.quoteHop(ctx, normalizer, cfg, hop.(*Batch), current, tradeType)
			if err != nil {
				return nil, err
			}
			hopQuotes[i] = q
			current = q.AdjustedQuote
		}
	} else {
		current := amount
		for i := len(route.Hops) - 1; i >= 0; i-- {
			q, err := e.quoteHop(ctx, normalizer, cfg, route.Hops[i].(*Batch), current, tradeType)
			if err != nil {
				return nil, err
			}
			hopQuotes[i] = q
			current = q.AdjustedQuote
		}
	}

	// The route's overall quote is the terminal hop's: the last hop for
	// exact-input (final output), the first for exact-output (required
	// input).
	terminal := hopQuotes[len(hopQuotes)-1]
	if tradeType == domain.ExactOutput {
		terminal = hopQuotes[0]
	}

	return &RouteWithValidQuote{
		Amount:        amount,
		Route:         route,
		RawQuote:      terminal.RawQuote,
		AdjustedQuote: terminal.AdjustedQuote,
		SubQuotes:     hopQuotes,
		TradeType:     tradeType,
	}, nil
}
