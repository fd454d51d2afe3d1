package router

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	require.Equal(t, int64(333), mulDiv(big.NewInt(1000), big.NewInt(1), big.NewInt(3)).Int64())
	require.Equal(t, int64(0), mulDiv(big.NewInt(0), big.NewInt(7), big.NewInt(3)).Int64())

	// Intermediate product past 256 bits exercises the big.Int fallback.
	x := new(big.Int).Lsh(big.NewInt(1), 200)
	num := new(big.Int).Lsh(big.NewInt(1), 200)
	den := new(big.Int).Lsh(big.NewInt(1), 100)
	expected := new(big.Int).Lsh(big.NewInt(1), 300)
	require.Zero(t, mulDiv(x, num, den).Cmp(expected))

	require.Panics(t, func() { mulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0)) })
}

func TestPercentOfTruncates(t *testing.T) {
	require.Equal(t, int64(333), percentOf(big.NewInt(1001), 33).Int64())
	require.Equal(t, int64(1001), percentOf(big.NewInt(1001), 100).Int64())
}

func TestDistributionPercents(t *testing.T) {
	require.Equal(t, []int{25, 50, 75, 100}, distributionPercents(25))
	require.Equal(t, []int{100}, distributionPercents(100))
}
