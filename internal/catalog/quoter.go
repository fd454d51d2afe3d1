package catalog

import (
	"context"
	"math/big"

	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/services"
	"github.com/swapforge/route-engine/internal/services/router"
)

// defaultFeeBps applies when a pool's snapshot omits its fee tier.
const defaultFeeBps = 30

const bpsDenominator = 10_000

// ReferenceQuoter prices direct-swap legs against the catalog's snapshot
// reserves with the constant-product formula. It serves local development
// and tests; a production deployment substitutes an on-chain quoter behind
// the same interface.
type ReferenceQuoter struct {
	catalog *Catalog
	log     *services.ServiceLogger
}

func NewReferenceQuoter(c *Catalog) *ReferenceQuoter {
	return &ReferenceQuoter{
		catalog: c,
		log:     services.NewServiceLogger("catalog.ReferenceQuoter"),
	}
}

func (q *ReferenceQuoter) QuoteExactInput(ctx context.Context, amounts []domain.AssetAmount, legs []*router.DirectSwap, blockNumber uint64) ([][]router.LegQuote, error) {
	return q.quote(amounts, legs, true), nil
}

func (q *ReferenceQuoter) QuoteExactOutput(ctx context.Context, amounts []domain.AssetAmount, legs []*router.DirectSwap, blockNumber uint64) ([][]router.LegQuote, error) {
	return q.quote(amounts, legs, false), nil
}

func (q *ReferenceQuoter) quote(amounts []domain.AssetAmount, legs []*router.DirectSwap, exactIn bool) [][]router.LegQuote {
	rows := make([][]router.LegQuote, len(legs))
	for i, leg := range legs {
		reserveIn, reserveOut, ok := q.catalog.tokenReserves(leg.Pool.ID, leg.TokenIn.Address, leg.TokenOut.Address)
		fee := q.catalog.poolFeeBps(leg.Pool.ID)

		row := make([]router.LegQuote, len(amounts))
		for j, amt := range amounts {
			var quote *big.Int
			if ok {
				if exactIn {
					quote = constantProductOut(amt.Amount, reserveIn, reserveOut, fee)
				} else {
					quote = constantProductIn(amt.Amount, reserveIn, reserveOut, fee)
				}
			}
			row[j] = router.LegQuote{Amount: amt, Quote: quote}
		}
		rows[i] = row
	}
	return rows
}

// constantProductOut is the exact-input formula: the fee is taken from the
// input, then out = inAfterFee*reserveOut / (reserveIn + inAfterFee).
// Returns nil when the pool cannot produce a positive output.
func constantProductOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint16) *big.Int {
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil
	}
	inAfterFee := new(big.Int).Mul(amountIn, big.NewInt(int64(bpsDenominator-feeBps)))
	num := new(big.Int).Mul(inAfterFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(bpsDenominator))
	den.Add(den, inAfterFee)
	out := num.Div(num, den)
	if out.Sign() <= 0 {
		return nil
	}
	return out
}

// constantProductIn is the exact-output inverse: the required input for a
// desired output, rounded up, with the fee grossed back in. Returns nil
// when the desired output meets or exceeds the reserve.
func constantProductIn(amountOut, reserveIn, reserveOut *big.Int, feeBps uint16) *big.Int {
	if amountOut.Sign() <= 0 || reserveIn.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil
	}
	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, big.NewInt(bpsDenominator))
	den := new(big.Int).Sub(reserveOut, amountOut)
	den.Mul(den, big.NewInt(int64(bpsDenominator-feeBps)))
	in := num.Div(num, den)
	return in.Add(in, big.NewInt(1))
}

// StaticGasPrice is a fixed-price GasPriceProvider for deployments where
// the gas price is configured rather than observed.
type StaticGasPrice struct {
	Price *big.Int
	Block uint64
}

func (g StaticGasPrice) GetGasPrice(ctx context.Context) (*big.Int, uint64, error) {
	return new(big.Int).Set(g.Price), g.Block, nil
}
