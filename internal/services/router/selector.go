package router

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapforge/route-engine/internal/config"
	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/metrics"
	"github.com/swapforge/route-engine/internal/services"
)

// CandidateSet is the bounded, metadata-resolved pool subset one routing
// request searches over.
type CandidateSet struct {
	Pools  []*domain.Pool
	Assets map[common.Address]domain.Asset

	// GasRefPool is the highest-liquidity pool connecting the wrapped
	// native asset to the trade's quote-side token, reserved for gas
	// pricing. Nil when the quote side is the native asset itself or no
	// such pool exists.
	GasRefPool *domain.Pool
}

func (cs *CandidateSet) Asset(addr common.Address) (domain.Asset, bool) {
	a, ok := cs.Assets[addr]
	return a, ok
}

// CandidateSelector filters the full catalog down to a high-signal subset
// for one (tokenIn, tokenOut) query using several overlapping
// liquidity-ranked heuristics.
type CandidateSelector struct {
	catalog       PoolCatalogProvider
	tokens        TokenMetadataProvider
	blacklist     *Blacklist
	wrappedNative common.Address
	baseTokens    []common.Address
	log           *services.ServiceLogger
}

func NewCandidateSelector(
	catalog PoolCatalogProvider,
	tokens TokenMetadataProvider,
	blacklist *Blacklist,
	wrappedNative common.Address,
	baseTokens []common.Address,
) *CandidateSelector {
	return &CandidateSelector{
		catalog:       catalog,
		tokens:        tokens,
		blacklist:     blacklist,
		wrappedNative: wrappedNative,
		baseTokens:    baseTokens,
		log:           services.NewServiceLogger("router.CandidateSelector"),
	}
}

// selection accumulates pools in pick order with id-level dedup.
type selection struct {
	pools []domain.RawPool
	ids   map[string]bool
}

func newSelection() *selection {
	return &selection{ids: make(map[string]bool)}
}

func (s *selection) add(p domain.RawPool) bool {
	if s.ids[p.ID] {
		return false
	}
	s.ids[p.ID] = true
	s.pools = append(s.pools, p)
	return true
}

func (s *selection) addAll(ps []domain.RawPool) {
	for _, p := range ps {
		s.add(p)
	}
}

func (s *selection) has(id string) bool { return s.ids[id] }

// Select builds the candidate set for one request. tradeType decides which
// side of the trade the gas reference pool is anchored to (the quote-side
// token, which is where gas costs are denominated).
func (s *CandidateSelector) Select(
	ctx context.Context,
	tokenIn, tokenOut common.Address,
	tradeType domain.TradeType,
	cfg *config.RoutingConfig,
) (*CandidateSet, error) {
	raw, err := s.catalog.GetPools(ctx, cfg.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("pool catalog: %w", err)
	}

	// Liquidity order, ties broken by catalog order. The stable sort is
	// what makes two identical requests produce identical plans.
	byLiquidity := make([]domain.RawPool, 0, len(raw))
	for _, p := range raw {
		if s.blacklist.Contains(p.ID) || !cfg.ProtocolAllowed(p.Protocol) {
			continue
		}
		byLiquidity = append(byLiquidity, p)
	}
	sort.SliceStable(byLiquidity, func(i, j int) bool {
		return byLiquidity[i].LiquidityScore > byLiquidity[j].LiquidityScore
	})

	// (1)+(2) top pools pairing each trade token with each base asset.
	inBase := s.topWithBaseTokens(byLiquidity, tokenIn, cfg)
	outBase := s.topWithBaseTokens(byLiquidity, tokenOut, cfg)

	final := newSelection()
	final.addAll(inBase)
	final.addAll(outBase)

	// Exclusion set for the later heuristics. Folding the base-pair picks
	// in pushes steps (4)-(6) toward pools the base heuristics missed.
	exclude := newSelection()
	if cfg.FoldBaseSelections {
		exclude.addAll(inBase)
		exclude.addAll(outBase)
	}

	// (3) gas reference pool: wrapped native <-> quote-side token.
	quoteSide := tokenOut
	if tradeType == domain.ExactOutput {
		quoteSide = tokenIn
	}
	var gasRefID string
	if quoteSide != s.wrappedNative {
		for _, p := range byLiquidity {
			if p.InvolvesAddress(s.wrappedNative) && p.InvolvesAddress(quoteSide) {
				gasRefID = p.ID
				final.add(p)
				exclude.add(p)
				break
			}
		}
	}

	// (4) top pools by raw liquidity.
	taken := 0
	for _, p := range byLiquidity {
		if taken >= cfg.TopN {
			break
		}
		if exclude.has(p.ID) {
			continue
		}
		exclude.add(p)
		final.add(p)
		taken++
	}

	// (5) top pools touching each trade token directly.
	touchingIn := s.topTouching(byLiquidity, tokenIn, cfg.TopNTokenInOut, exclude)
	touchingOut := s.topTouching(byLiquidity, tokenOut, cfg.TopNTokenInOut, exclude)
	final.addAll(touchingIn)
	final.addAll(touchingOut)

	// (6) second-hop extension: pools reachable through the "other" token
	// of each step-(5) pick.
	for _, p := range append(append([]domain.RawPool(nil), touchingIn...), touchingOut...) {
		for _, t := range p.Tokens {
			addr := common.HexToAddress(t.Address)
			if addr == tokenIn || addr == tokenOut {
				continue
			}
			final.addAll(s.topTouching(byLiquidity, addr, cfg.TopNSecondHop, exclude))
		}
	}

	return s.resolve(ctx, final.pools, gasRefID, cfg.BlockNumber)
}

// topWithBaseTokens picks the top pools pairing token with each base asset,
// then caps the union by liquidity.
func (s *CandidateSelector) topWithBaseTokens(byLiquidity []domain.RawPool, token common.Address, cfg *config.RoutingConfig) []domain.RawPool {
	union := newSelection()
	for _, base := range s.baseTokens {
		taken := 0
		for _, p := range byLiquidity {
			if taken >= cfg.TopNWithEachBaseToken {
				break
			}
			if p.InvolvesAddress(token) && p.InvolvesAddress(base) {
				if union.add(p) {
					taken++
				}
			}
		}
	}
	// The union preserves per-base pick order; re-rank by liquidity
	// before applying the global cap.
	capped := append([]domain.RawPool(nil), union.pools...)
	sort.SliceStable(capped, func(i, j int) bool {
		return capped[i].LiquidityScore > capped[j].LiquidityScore
	})
	if len(capped) > cfg.TopNWithBaseToken {
		capped = capped[:cfg.TopNWithBaseToken]
	}
	return capped
}

func (s *CandidateSelector) topTouching(byLiquidity []domain.RawPool, token common.Address, n int, exclude *selection) []domain.RawPool {
	var picked []domain.RawPool
	for _, p := range byLiquidity {
		if len(picked) >= n {
			break
		}
		if exclude.has(p.ID) || !p.InvolvesAddress(token) {
			continue
		}
		exclude.add(p)
		picked = append(picked, p)
	}
	return picked
}

// resolve joins the selected raw pools with full asset metadata. Pools with
// unresolvable tokens are dropped and logged, never fatal.
func (s *CandidateSelector) resolve(ctx context.Context, raw []domain.RawPool, gasRefID string, blockNumber uint64) (*CandidateSet, error) {
	addrSet := make(map[common.Address]bool)
	var addrs []common.Address
	for _, p := range raw {
		for _, t := range p.Tokens {
			addr := common.HexToAddress(t.Address)
			if !addrSet[addr] {
				addrSet[addr] = true
				addrs = append(addrs, addr)
			}
		}
	}

	assets, err := s.tokens.GetAssets(ctx, addrs, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("token metadata: %w", err)
	}

	cs := &CandidateSet{Assets: assets}
	for _, rp := range raw {
		tokens := make([]domain.AssetAmount, 0, len(rp.Tokens))
		resolved := true
		for _, t := range rp.Tokens {
			asset, ok := assets[common.HexToAddress(t.Address)]
			if !ok {
				resolved = false
				break
			}
			tokens = append(tokens, domain.NewAssetAmount(asset, nil))
		}
		if !resolved {
			s.log.Warn().Str("pool", rp.ID).Msg("dropping pool with unresolved token metadata")
			continue
		}
		pool := domain.NewPool(rp.ID, rp.Protocol, tokens, rp.LiquidityScore)
		cs.Pools = append(cs.Pools, pool)
		if pool.ID == gasRefID {
			cs.GasRefPool = pool
		}
	}

	metrics.CandidatePoolCount.Observe(float64(len(cs.Pools)))
	return cs, nil
}
