package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is a liquidity source supplied by an external catalog. The engine
// treats pools as read-only facts: reserve stubs and liquidity scores are
// whatever the catalog reported at the pinned block, never mutated here.
// Identity is the lower-cased id.
type Pool struct {
	ID             string
	Protocol       string
	Tokens         []AssetAmount
	LiquidityScore float64

	// Protocol-specific payload carried through untouched (fee tier,
	// tick spacing, ...). The engine never inspects it.
	Meta any
}

func NewPool(id, protocol string, tokens []AssetAmount, liquidityScore float64) *Pool {
	return &Pool{
		ID:             strings.ToLower(id),
		Protocol:       protocol,
		Tokens:         tokens,
		LiquidityScore: liquidityScore,
	}
}

func (p *Pool) InvolvesToken(asset Asset) bool {
	for _, t := range p.Tokens {
		if t.Asset.Equal(asset) {
			return true
		}
	}
	return false
}

func (p *Pool) InvolvesAddress(addr common.Address) bool {
	for _, t := range p.Tokens {
		if t.Asset.Address == addr {
			return true
		}
	}
	return false
}

// OtherTokens returns every pool token except the given one. For the common
// two-token pool this is the single counter-asset.
func (p *Pool) OtherTokens(asset Asset) []Asset {
	others := make([]Asset, 0, len(p.Tokens)-1)
	for _, t := range p.Tokens {
		if !t.Asset.Equal(asset) {
			others = append(others, t.Asset)
		}
	}
	return others
}

// RawPool is the catalog provider's wire shape: token addresses with
// optional symbols, no resolved metadata yet.
type RawPool struct {
	ID             string         `json:"id"`
	Protocol       string         `json:"protocol"`
	Tokens         []RawPoolToken `json:"tokens"`
	LiquidityScore float64        `json:"liquidityScore"`
}

type RawPoolToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol,omitempty"`
}

func (rp RawPool) InvolvesAddress(addr common.Address) bool {
	for _, t := range rp.Tokens {
		if common.HexToAddress(t.Address) == addr {
			return true
		}
	}
	return false
}
