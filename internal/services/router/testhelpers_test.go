package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapforge/route-engine/internal/domain"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func asset(symbol string, b byte) domain.Asset {
	return domain.Asset{ChainID: 1, Address: addr(b), Decimals: 18, Symbol: symbol}
}

func amountOf(a domain.Asset, v int64) domain.AssetAmount {
	return domain.NewAssetAmount(a, big.NewInt(v))
}

func poolOf(id string, score float64, assets ...domain.Asset) *domain.Pool {
	tokens := make([]domain.AssetAmount, len(assets))
	for i, a := range assets {
		tokens[i] = domain.NewAssetAmount(a, nil)
	}
	return domain.NewPool(id, "uniswap-v2", tokens, score)
}

func rawPoolOf(id string, score float64, assets ...domain.Asset) domain.RawPool {
	rp := domain.RawPool{ID: id, Protocol: "uniswap-v2", LiquidityScore: score}
	for _, a := range assets {
		rp.Tokens = append(rp.Tokens, domain.RawPoolToken{Address: a.Address.Hex(), Symbol: a.Symbol})
	}
	return rp
}

type fakeCatalog struct {
	pools []domain.RawPool
	err   error
}

func (f *fakeCatalog) GetPools(ctx context.Context, blockNumber uint64) ([]domain.RawPool, error) {
	return f.pools, f.err
}

type fakeTokens struct {
	assets map[common.Address]domain.Asset
}

func newFakeTokens(assets ...domain.Asset) *fakeTokens {
	m := make(map[common.Address]domain.Asset, len(assets))
	for _, a := range assets {
		m[a.Address] = a
	}
	return &fakeTokens{assets: m}
}

func (f *fakeTokens) GetAssets(ctx context.Context, addresses []common.Address, blockNumber uint64) (map[common.Address]domain.Asset, error) {
	out := make(map[common.Address]domain.Asset, len(addresses))
	for _, a := range addresses {
		if asset, ok := f.assets[a]; ok {
			out[a] = asset
		}
	}
	return out, nil
}

// fakeQuoter prices legs with a zero-fee constant-product curve over
// configured reserves. Legs over unknown pools or directions quote nil.
type fakeQuoter struct {
	reserves map[string]map[common.Address]*big.Int
	err      error
	calls    int
}

func newFakeQuoter() *fakeQuoter {
	return &fakeQuoter{reserves: make(map[string]map[common.Address]*big.Int)}
}

func (f *fakeQuoter) setReserves(poolID string, tokenA common.Address, reserveA int64, tokenB common.Address, reserveB int64) {
	f.reserves[poolID] = map[common.Address]*big.Int{
		tokenA: big.NewInt(reserveA),
		tokenB: big.NewInt(reserveB),
	}
}

func (f *fakeQuoter) QuoteExactInput(ctx context.Context, amounts []domain.AssetAmount, legs []*DirectSwap, blockNumber uint64) ([][]LegQuote, error) {
	return f.quote(amounts, legs, true)
}

func (f *fakeQuoter) QuoteExactOutput(ctx context.Context, amounts []domain.AssetAmount, legs []*DirectSwap, blockNumber uint64) ([][]LegQuote, error) {
	return f.quote(amounts, legs, false)
}

func (f *fakeQuoter) quote(amounts []domain.AssetAmount, legs []*DirectSwap, exactIn bool) ([][]LegQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++

	rows := make([][]LegQuote, len(legs))
	for i, leg := range legs {
		row := make([]LegQuote, len(amounts))
		pool := f.reserves[leg.Pool.ID]
		for j, amt := range amounts {
			row[j] = LegQuote{Amount: amt}
			if pool == nil {
				continue
			}
			reserveIn, reserveOut := pool[leg.TokenIn.Address], pool[leg.TokenOut.Address]
			if reserveIn == nil || reserveOut == nil {
				continue
			}
			if exactIn {
				num := new(big.Int).Mul(amt.Amount, reserveOut)
				den := new(big.Int).Add(reserveIn, amt.Amount)
				if out := num.Div(num, den); out.Sign() > 0 {
					row[j].Quote = out
				}
			} else {
				if amt.Amount.Cmp(reserveOut) >= 0 {
					continue
				}
				num := new(big.Int).Mul(reserveIn, amt.Amount)
				den := new(big.Int).Sub(reserveOut, amt.Amount)
				row[j].Quote = num.Div(num, den).Add(num, big.NewInt(1))
			}
		}
		rows[i] = row
	}
	return rows, nil
}

type fakeGasPrice struct {
	price *big.Int
	block uint64
	err   error
}

func (f fakeGasPrice) GetGasPrice(ctx context.Context) (*big.Int, uint64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.price, f.block, nil
}

type fakeReserves struct {
	byPool map[string][2]*big.Int
}

func (f *fakeReserves) GetReserves(ctx context.Context, poolID string) (*big.Int, *big.Int, error) {
	r, ok := f.byPool[poolID]
	if !ok {
		return nil, nil, fmt.Errorf("no reserves for %s", poolID)
	}
	return r[0], r[1], nil
}

var errUpstream = errors.New("upstream unavailable")

// directQuote builds a leaf candidate for split-search tests. The quote is
// denominated in the quote-side asset for the trade type.
func directQuote(pool *domain.Pool, tokenIn, tokenOut domain.Asset, amount domain.AssetAmount, percent int, adjusted int64, tradeType domain.TradeType) *RouteWithValidQuote {
	quoteAsset := tokenOut
	if tradeType == domain.ExactOutput {
		quoteAsset = tokenIn
	}
	return &RouteWithValidQuote{
		Amount:        amount,
		Percent:       percent,
		Route:         NewDirectSwap(pool, tokenIn, tokenOut),
		RawQuote:      domain.NewAssetAmount(quoteAsset, big.NewInt(adjusted)),
		AdjustedQuote: domain.NewAssetAmount(quoteAsset, big.NewInt(adjusted)),
		TradeType:     tradeType,
	}
}
