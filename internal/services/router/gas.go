package router

import (
	"context"
	"math/big"

	"github.com/swapforge/route-engine/internal/domain"
	"github.com/swapforge/route-engine/internal/services"
)

// Gas unit constants, tunable per deployment. A route costs the base plus
// one increment per additional pool traversal.
const (
	BaseGasUnits   = 100_000
	PerHopGasUnits = 20_000
)

// GasModel converts a route's estimated execution cost into an amount of a
// chosen output asset, spot-pricing the native asset through the reference
// pool's reserves. Missing gas pricing never fails a request: the model
// degrades to a zero cost and logs.
type GasModel struct {
	wrappedNative domain.Asset
	gasPrice      *big.Int // wei per gas unit
	reserves      ReserveLookup
	refPool       *domain.Pool // native <-> quote-side reference, may be nil
	log           *services.ServiceLogger
}

func NewGasModel(wrappedNative domain.Asset, gasPrice *big.Int, reserves ReserveLookup, refPool *domain.Pool) *GasModel {
	return &GasModel{
		wrappedNative: wrappedNative,
		gasPrice:      gasPrice,
		reserves:      reserves,
		refPool:       refPool,
		log:           services.NewServiceLogger("router.GasModel"),
	}
}

// GasUnits estimates the computational cost of executing route.
func (g *GasModel) GasUnits(route Route) uint64 {
	pools := route.PoolCount()
	if pools < 1 {
		pools = 1
	}
	return BaseGasUnits + PerHopGasUnits*uint64(pools-1)
}

// CostInNative returns the execution cost in wrapped-native units.
func (g *GasModel) CostInNative(route Route) domain.AssetAmount {
	cost := new(big.Int).Mul(new(big.Int).SetUint64(g.GasUnits(route)), g.gasPrice)
	return domain.NewAssetAmount(g.wrappedNative, cost)
}

// CostInToken denominates the execution cost in the given asset, using the
// reference pool's reserves as a constant-product spot price.
func (g *GasModel) CostInToken(ctx context.Context, route Route, out domain.Asset) domain.AssetAmount {
	native := g.CostInNative(route)
	if out.Equal(g.wrappedNative) {
		return domain.NewAssetAmount(out, native.Amount)
	}

	// The reference pool prices native against the trade's quote-side
	// token only; for any other denomination (intermediate hop tokens)
	// there is nothing to price against and the cost degrades to zero.
	if g.refPool == nil || !g.refPool.InvolvesToken(out) {
		g.log.Debug().Str("token", out.String()).Msg("no native reference pool for token; assuming zero gas cost")
		return domain.NewAssetAmount(out, nil)
	}

	reserveA, reserveB, err := g.reserves.GetReserves(ctx, g.refPool.ID)
	if err != nil {
		g.log.Warn().Err(err).Str("pool", g.refPool.ID).Msg("reserve lookup failed; assuming zero gas cost")
		return domain.NewAssetAmount(out, nil)
	}

	// Reserves arrive in the pool's token order; orient them so the
	// division prices native in units of out.
	reserveNative, reserveOut := reserveA, reserveB
	if !g.refPool.Tokens[0].Asset.Equal(g.wrappedNative) {
		reserveNative, reserveOut = reserveB, reserveA
	}
	if reserveNative.Sign() <= 0 || reserveOut.Sign() <= 0 {
		g.log.Warn().Str("pool", g.refPool.ID).Msg("empty reference reserves; assuming zero gas cost")
		return domain.NewAssetAmount(out, nil)
	}

	return domain.NewAssetAmount(out, mulDiv(native.Amount, reserveOut, reserveNative))
}
