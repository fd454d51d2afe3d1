package router

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swapforge/route-engine/internal/domain"
)

func TestBestSwapSplitPrefersBetterSplit(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	p1 := poolOf("p1", 100, tokenA, tokenB)
	p2 := poolOf("p2", 90, tokenA, tokenB)
	amount := amountOf(tokenA, 1_000_000)

	percents := []int{25, 50, 75, 100}
	candidates := []*RouteWithValidQuote{
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 1_000_000), 100, 600, domain.ExactInput),
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 500_000), 50, 400, domain.ExactInput),
		directQuote(p2, tokenA, tokenB, amountOf(tokenA, 500_000), 50, 380, domain.ExactInput),
	}

	plan, err := BestSwapSplit(amount, percents, candidates, domain.ExactInput, 1, 7)
	require.NoError(t, err)
	require.Len(t, plan.SubQuotes, 2)
	require.Equal(t, int64(780), plan.AdjustedQuote.Amount.Int64())
	require.Equal(t, 100, plan.Percent)

	// Legs occupy disjoint pools and their amounts tile the request.
	require.True(t, plan.SubQuotes[0].PoolIDs().Intersect(plan.SubQuotes[1].PoolIDs()).IsEmpty())
	total := new(big.Int).Add(plan.SubQuotes[0].Amount.Amount, plan.SubQuotes[1].Amount.Amount)
	require.Zero(t, total.Cmp(amount.Amount))
}

func TestBestSwapSplitRejectsOverlappingPools(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	p1 := poolOf("p1", 100, tokenA, tokenB)
	amount := amountOf(tokenA, 1_000_000)

	// Both 50% candidates ride the same pool, so no two-leg plan exists
	// even though their sum beats the unsplit quote.
	percents := []int{50, 100}
	candidates := []*RouteWithValidQuote{
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 1_000_000), 100, 600, domain.ExactInput),
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 500_000), 50, 400, domain.ExactInput),
	}

	plan, err := BestSwapSplit(amount, percents, candidates, domain.ExactInput, 1, 7)
	require.NoError(t, err)
	require.Len(t, plan.SubQuotes, 1)
	require.Equal(t, int64(600), plan.AdjustedQuote.Amount.Int64())
}

func TestBestSwapSplitMinSplits(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	p1 := poolOf("p1", 100, tokenA, tokenB)
	amount := amountOf(tokenA, 1_000_000)

	percents := []int{50, 100}
	candidates := []*RouteWithValidQuote{
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 1_000_000), 100, 600, domain.ExactInput),
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 500_000), 50, 400, domain.ExactInput),
	}

	// A floor of two legs rules out the unsplit plan, and the only 50%
	// candidates overlap.
	_, err := BestSwapSplit(amount, percents, candidates, domain.ExactInput, 2, 7)
	require.ErrorIs(t, err, ErrNoValidSplit)
}

func TestBestSwapSplitMaxSplits(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	amount := amountOf(tokenA, 1_000_000)

	// Completing requires four 25% legs but the budget stops at three.
	percents := []int{25, 50, 75, 100}
	var candidates []*RouteWithValidQuote
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		p := poolOf(id, float64(100-i), tokenA, tokenB)
		candidates = append(candidates, directQuote(p, tokenA, tokenB, amountOf(tokenA, 250_000), 25, 100, domain.ExactInput))
	}

	_, err := BestSwapSplit(amount, percents, candidates, domain.ExactInput, 1, 3)
	require.ErrorIs(t, err, ErrNoValidSplit)

	plan, err := BestSwapSplit(amount, percents, candidates, domain.ExactInput, 1, 4)
	require.NoError(t, err)
	require.Len(t, plan.SubQuotes, 4)
	require.Equal(t, int64(400), plan.AdjustedQuote.Amount.Int64())
}

func TestBestSwapSplitFoldsDustIntoLastLeg(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	p1 := poolOf("p1", 100, tokenA, tokenB)
	p2 := poolOf("p2", 90, tokenA, tokenB)

	// 50% of 1,000,001 truncates to 500,000 per leg; the lost unit must
	// land in the final leg.
	amount := amountOf(tokenA, 1_000_001)
	percents := []int{50, 100}
	candidates := []*RouteWithValidQuote{
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 1_000_001), 100, 100, domain.ExactInput),
		directQuote(p1, tokenA, tokenB, amountOf(tokenA, 500_000), 50, 400, domain.ExactInput),
		directQuote(p2, tokenA, tokenB, amountOf(tokenA, 500_000), 50, 380, domain.ExactInput),
	}

	plan, err := BestSwapSplit(amount, percents, candidates, domain.ExactInput, 1, 7)
	require.NoError(t, err)
	require.Len(t, plan.SubQuotes, 2)

	total := new(big.Int)
	for _, leg := range plan.SubQuotes {
		total.Add(total, leg.Amount.Amount)
	}
	require.Zero(t, total.Cmp(amount.Amount))
	require.Equal(t, int64(500_001), plan.SubQuotes[1].Amount.Amount.Int64())
}

func TestBestSwapSplitExactOutputPrefersSmaller(t *testing.T) {
	tokenA, tokenB := asset("A", 1), asset("B", 2)
	p1 := poolOf("p1", 100, tokenA, tokenB)
	p2 := poolOf("p2", 90, tokenA, tokenB)
	amount := amountOf(tokenB, 1_000_000)

	percents := []int{50, 100}
	candidates := []*RouteWithValidQuote{
		directQuote(p1, tokenA, tokenB, amountOf(tokenB, 1_000_000), 100, 600, domain.ExactOutput),
		directQuote(p1, tokenA, tokenB, amountOf(tokenB, 500_000), 50, 200, domain.ExactOutput),
		directQuote(p2, tokenA, tokenB, amountOf(tokenB, 500_000), 50, 250, domain.ExactOutput),
	}

	plan, err := BestSwapSplit(amount, percents, candidates, domain.ExactOutput, 1, 7)
	require.NoError(t, err)
	require.Len(t, plan.SubQuotes, 2)
	require.Equal(t, int64(450), plan.AdjustedQuote.Amount.Int64())
}

func TestBestSwapSplitNoCandidates(t *testing.T) {
	tokenA := asset("A", 1)
	_, err := BestSwapSplit(amountOf(tokenA, 1000), []int{50, 100}, nil, domain.ExactInput, 1, 7)
	require.ErrorIs(t, err, ErrNoValidSplit)
}
