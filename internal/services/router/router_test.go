package router

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/swapforge/route-engine/internal/config"
	"github.com/swapforge/route-engine/internal/domain"
)

func engineFixture(pools []domain.RawPool, quoter *fakeQuoter, assets ...domain.Asset) *Engine {
	native := asset("WETH", 10)
	tokens := newFakeTokens(append(assets, native)...)
	blacklist := NewBlacklist()
	selector := NewCandidateSelector(&fakeCatalog{pools: pools}, tokens, blacklist, native.Address, []common.Address{native.Address})

	cfg := config.DefaultRoutingConfig()
	cfg.DistributionPercent = 50
	cfg.InnerDistributionPercent = 50
	cfg.MaxHops = 2

	return NewEngine(selector, quoter, fakeGasPrice{price: big.NewInt(0), block: 7}, &fakeReserves{}, blacklist, cfg)
}

func TestRouteSplitsAcrossParallelPools(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	pools := []domain.RawPool{
		rawPoolOf("p1", 100, tokenA, tokenB),
		rawPoolOf("p2", 90, tokenA, tokenB),
	}
	// Shallow identical pools: price impact makes a 50/50 split strictly
	// better than sending everything through one pool.
	quoter := newFakeQuoter()
	quoter.setReserves("p1", tokenA.Address, 2_000_000, tokenB.Address, 2_000_000)
	quoter.setReserves("p2", tokenA.Address, 2_000_000, tokenB.Address, 2_000_000)

	engine := engineFixture(pools, quoter, tokenA, tokenB)
	plan, err := engine.Route(context.Background(), amountOf(tokenA, 1_000_000), tokenB, domain.ExactInput, nil)
	require.NoError(t, err)

	// Unsplit: 1e6*2e6/3e6 = 666_666. Split 500k each: 400_000 per pool.
	require.Equal(t, int64(800_000), plan.AdjustedQuote.Amount.Int64())
	require.Equal(t, tokenB, plan.AdjustedQuote.Asset)
	require.Zero(t, plan.Amount.Amount.Cmp(big.NewInt(1_000_000)))
	require.Equal(t, 2, plan.PoolIDs().Cardinality())
	require.True(t, plan.PoolIDs().Contains("p1", "p2"))
}

func TestRouteMultiHop(t *testing.T) {
	tokenA, tokenB, tokenC := asset("A", 1), asset("B", 2), asset("C", 3)
	pools := []domain.RawPool{
		rawPoolOf("pab", 100, tokenA, tokenB),
		rawPoolOf("pbc", 90, tokenB, tokenC),
	}
	quoter := newFakeQuoter()
	quoter.setReserves("pab", tokenA.Address, 1_000_000_000_000, tokenB.Address, 1_000_000_000_000)
	quoter.setReserves("pbc", tokenB.Address, 1_000_000_000_000, tokenC.Address, 1_000_000_000_000)

	engine := engineFixture(pools, quoter, tokenA, tokenB, tokenC)
	plan, err := engine.Route(context.Background(), amountOf(tokenA, 1_000_000), tokenC, domain.ExactInput, nil)
	require.NoError(t, err)

	require.Len(t, plan.SubQuotes, 1)
	leg := plan.SubQuotes[0]
	require.IsType(t, &MultiHop{}, leg.Route)
	require.Len(t, leg.SubQuotes, 2)

	// Deep pools: output stays within rounding of the input.
	require.Positive(t, plan.AdjustedQuote.Amount.Int64())
	require.Less(t, plan.AdjustedQuote.Amount.Int64(), int64(1_000_000))
	require.Greater(t, plan.AdjustedQuote.Amount.Int64(), int64(999_000))
	require.True(t, plan.PoolIDs().Contains("pab", "pbc"))
}

func TestRouteExactOutput(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	pools := []domain.RawPool{rawPoolOf("p1", 100, tokenA, tokenB)}
	quoter := newFakeQuoter()
	quoter.setReserves("p1", tokenA.Address, 2_000_000, tokenB.Address, 2_000_000)

	engine := engineFixture(pools, quoter, tokenA, tokenB)
	plan, err := engine.Route(context.Background(), amountOf(tokenB, 1_000_000), tokenA, domain.ExactOutput, nil)
	require.NoError(t, err)

	// Required input for 1e6 out of a 2e6/2e6 pool: 2e6*1e6/1e6 + 1.
	require.Equal(t, int64(2_000_001), plan.AdjustedQuote.Amount.Int64())
	require.Equal(t, tokenA, plan.AdjustedQuote.Asset)
	require.Equal(t, domain.ExactOutput, plan.TradeType)
}

func TestRouteNoPoolsFound(t *testing.T) {
	engine := engineFixture(nil, newFakeQuoter(), asset("A", 1), asset("B", 2))

	_, err := engine.Route(context.Background(), amountOf(asset("A", 1), 1000), asset("B", 2), domain.ExactInput, nil)
	require.ErrorIs(t, err, ErrNoPoolFound)
	require.True(t, IsNoRoute(err))
}

func TestRouteNoPathBetweenTokens(t *testing.T) {
	tokenC, tokenD := asset("C", 3), asset("D", 4)
	pools := []domain.RawPool{rawPoolOf("pcd", 100, tokenC, tokenD)}

	engine := engineFixture(pools, newFakeQuoter(), asset("A", 1), asset("B", 2), tokenC, tokenD)
	_, err := engine.Route(context.Background(), amountOf(asset("A", 1), 1000), asset("B", 2), domain.ExactInput, nil)
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestRouteGasPriceFailurePropagates(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	pools := []domain.RawPool{rawPoolOf("p1", 100, tokenA, tokenB)}

	native := asset("WETH", 10)
	tokens := newFakeTokens(tokenA, tokenB, native)
	blacklist := NewBlacklist()
	selector := NewCandidateSelector(&fakeCatalog{pools: pools}, tokens, blacklist, native.Address, nil)
	engine := NewEngine(selector, newFakeQuoter(), fakeGasPrice{err: errUpstream}, &fakeReserves{}, blacklist, config.DefaultRoutingConfig())

	_, err := engine.Route(context.Background(), amountOf(tokenA, 1000), tokenB, domain.ExactInput, nil)
	require.ErrorIs(t, err, errUpstream)
	require.False(t, IsNoRoute(err))
}

func TestRouteOverridesReplaceDefaults(t *testing.T) {
	tokenA, tokenB, tokenC := asset("A", 1), asset("B", 2), asset("C", 3)
	pools := []domain.RawPool{
		rawPoolOf("pab", 100, tokenA, tokenB),
		rawPoolOf("pbc", 90, tokenB, tokenC),
	}
	quoter := newFakeQuoter()
	quoter.setReserves("pab", tokenA.Address, 1_000_000_000_000, tokenB.Address, 1_000_000_000_000)
	quoter.setReserves("pbc", tokenB.Address, 1_000_000_000_000, tokenC.Address, 1_000_000_000_000)

	engine := engineFixture(pools, quoter, tokenA, tokenB, tokenC)

	// Reaching C needs two hops; capping at one must yield no route.
	cfg := config.DefaultRoutingConfig()
	cfg.DistributionPercent = 50
	cfg.InnerDistributionPercent = 50
	cfg.MaxHops = 1
	_, err := engine.Route(context.Background(), amountOf(tokenA, 1_000_000), tokenC, domain.ExactInput, &cfg)
	require.ErrorIs(t, err, ErrNoRoute)
}
