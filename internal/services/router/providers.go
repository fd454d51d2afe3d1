package router

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapforge/route-engine/internal/domain"
)

// Collaborator contracts. The engine is pure with respect to these: all
// network and chain access happens behind them, and the engine never
// retries a failed call (retry policy belongs to the implementation).

// PoolCatalogProvider serves the full pool catalog at a pinned block.
type PoolCatalogProvider interface {
	GetPools(ctx context.Context, blockNumber uint64) ([]domain.RawPool, error)
}

// TokenMetadataProvider resolves token addresses to full asset metadata.
// Addresses it cannot resolve are simply absent from the result.
type TokenMetadataProvider interface {
	GetAssets(ctx context.Context, addresses []common.Address, blockNumber uint64) (map[common.Address]domain.Asset, error)
}

// LegQuote is one sampled quote for a leg: the fill amount it was sampled
// at and the raw quote, nil when the pool could not serve that size.
type LegQuote struct {
	Amount domain.AssetAmount
	Quote  *big.Int
}

// QuoteProvider prices a batch of direct-swap legs at a batch of fill
// amounts in a single call; the result is one LegQuote row per leg, aligned
// with the amounts slice. Batching is the one place round-trip cost is
// amortized, so implementations should issue a single upstream request.
type QuoteProvider interface {
	QuoteExactInput(ctx context.Context, amounts []domain.AssetAmount, legs []*DirectSwap, blockNumber uint64) ([][]LegQuote, error)
	QuoteExactOutput(ctx context.Context, amounts []domain.AssetAmount, legs []*DirectSwap, blockNumber uint64) ([][]LegQuote, error)
}

// GasPriceProvider returns the current gas price in wei and the block it
// was observed at.
type GasPriceProvider interface {
	GetGasPrice(ctx context.Context) (*big.Int, uint64, error)
}

// ReserveLookup reads a pool's reserves, in the pool's token order. Used
// only by the gas model to spot-price the native asset.
type ReserveLookup interface {
	GetReserves(ctx context.Context, poolID string) (*big.Int, *big.Int, error)
}
