package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is a chain-scoped fungible token identity. Two assets are the same
// token iff chain id and address match; the address is stored in its
// canonical byte form so hex-case differences in the source data never
// produce distinct assets.
type Asset struct {
	ChainID  uint64         `json:"chainId"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
	Name     string         `json:"name,omitempty"`
}

func NewAsset(chainID uint64, address string, decimals uint8, symbol string) Asset {
	return Asset{
		ChainID:  chainID,
		Address:  common.HexToAddress(address),
		Decimals: decimals,
		Symbol:   symbol,
	}
}

func (a Asset) Equal(other Asset) bool {
	return a.ChainID == other.ChainID && a.Address == other.Address
}

func (a Asset) String() string {
	if a.Symbol != "" {
		return a.Symbol
	}
	return a.Address.Hex()
}

// AssetAmount couples an asset with an integer amount in the asset's
// smallest unit. Amounts are *big.Int: realistic on-chain quantities exceed
// a machine word. Arithmetic between two AssetAmounts requires matching
// assets; mixing assets is a programming error and panics.
type AssetAmount struct {
	Asset  Asset
	Amount *big.Int
}

func NewAssetAmount(asset Asset, amount *big.Int) AssetAmount {
	if amount == nil {
		amount = new(big.Int)
	}
	return AssetAmount{Asset: asset, Amount: amount}
}

func (a AssetAmount) requireSameAsset(other AssetAmount) {
	if !a.Asset.Equal(other.Asset) {
		panic(fmt.Sprintf("asset mismatch: %s vs %s", a.Asset, other.Asset))
	}
}

func (a AssetAmount) Add(other AssetAmount) AssetAmount {
	a.requireSameAsset(other)
	return AssetAmount{Asset: a.Asset, Amount: new(big.Int).Add(a.Amount, other.Amount)}
}

func (a AssetAmount) Sub(other AssetAmount) AssetAmount {
	a.requireSameAsset(other)
	return AssetAmount{Asset: a.Asset, Amount: new(big.Int).Sub(a.Amount, other.Amount)}
}

// MulScalar and DivScalar take plain integers; scalar operands carry no
// asset and are always permitted.
func (a AssetAmount) MulScalar(n int64) AssetAmount {
	return AssetAmount{Asset: a.Asset, Amount: new(big.Int).Mul(a.Amount, big.NewInt(n))}
}

func (a AssetAmount) DivScalar(n int64) AssetAmount {
	return AssetAmount{Asset: a.Asset, Amount: new(big.Int).Div(a.Amount, big.NewInt(n))}
}

func (a AssetAmount) Cmp(other AssetAmount) int {
	a.requireSameAsset(other)
	return a.Amount.Cmp(other.Amount)
}

func (a AssetAmount) Sign() int {
	return a.Amount.Sign()
}

func (a AssetAmount) String() string {
	return fmt.Sprintf("%s %s", a.Amount.String(), a.Asset)
}
