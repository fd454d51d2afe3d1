package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssetEqualIgnoresHexCase(t *testing.T) {
	a := NewAsset(1, "0xAbCd000000000000000000000000000000000001", 18, "AAA")
	b := NewAsset(1, "0xabcd000000000000000000000000000000000001", 18, "AAA")
	require.True(t, a.Equal(b))

	otherChain := NewAsset(5, "0xAbCd000000000000000000000000000000000001", 18, "AAA")
	require.False(t, a.Equal(otherChain))
}

func TestAssetAmountArithmetic(t *testing.T) {
	a := NewAsset(1, "0x01", 18, "AAA")
	x := NewAssetAmount(a, big.NewInt(100))
	y := NewAssetAmount(a, big.NewInt(40))

	require.Equal(t, int64(140), x.Add(y).Amount.Int64())
	require.Equal(t, int64(60), x.Sub(y).Amount.Int64())
	require.Equal(t, int64(300), x.MulScalar(3).Amount.Int64())
	require.Equal(t, int64(50), x.DivScalar(2).Amount.Int64())
	require.Equal(t, 1, x.Cmp(y))

	// Operands are never mutated.
	require.Equal(t, int64(100), x.Amount.Int64())
}

func TestAssetAmountMismatchPanics(t *testing.T) {
	x := NewAssetAmount(NewAsset(1, "0x01", 18, "AAA"), big.NewInt(1))
	y := NewAssetAmount(NewAsset(1, "0x02", 18, "BBB"), big.NewInt(1))
	require.Panics(t, func() { x.Add(y) })
	require.Panics(t, func() { x.Cmp(y) })
}

func TestNewAssetAmountNilDefaultsToZero(t *testing.T) {
	x := NewAssetAmount(NewAsset(1, "0x01", 18, "AAA"), nil)
	require.Zero(t, x.Sign())
}

func TestNewPoolLowercasesID(t *testing.T) {
	a := NewAsset(1, "0x01", 18, "AAA")
	b := NewAsset(1, "0x02", 6, "BBB")
	p := NewPool("0xPoolMIXED", "uniswap-v2", []AssetAmount{NewAssetAmount(a, nil), NewAssetAmount(b, nil)}, 1)

	require.Equal(t, "0xpoolmixed", p.ID)
	require.True(t, p.InvolvesToken(a))
	require.True(t, p.InvolvesAddress(b.Address))
	require.Equal(t, []Asset{b}, p.OtherTokens(a))
}

func TestParseTradeType(t *testing.T) {
	for _, s := range []string{"ExactIn", "exactIn", "EXACT_IN"} {
		tt, ok := ParseTradeType(s)
		require.True(t, ok)
		require.Equal(t, ExactInput, tt)
	}
	tt, ok := ParseTradeType("ExactOut")
	require.True(t, ok)
	require.Equal(t, ExactOutput, tt)

	_, ok = ParseTradeType("sideways")
	require.False(t, ok)
}
