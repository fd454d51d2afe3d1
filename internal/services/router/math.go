package router

import (
	"math/big"

	"github.com/holiman/uint256"
)

// mulDiv computes x*num/den (truncating). The uint256 fast path covers
// every realistic amount; the big.Int fallback keeps the result exact when
// an intermediate product overflows 256 bits.
func mulDiv(x, num, den *big.Int) *big.Int {
	if den.Sign() == 0 {
		panic("mulDiv: division by zero")
	}
	xr, overflow := uint256.FromBig(x)
	if !overflow {
		nr, nOverflow := uint256.FromBig(num)
		dr, dOverflow := uint256.FromBig(den)
		if !nOverflow && !dOverflow {
			var p uint256.Int
			if _, carry := p.MulOverflow(xr, nr); !carry {
				p.Div(&p, dr)
				return p.ToBig()
			}
		}
	}
	p := new(big.Int).Mul(x, num)
	return p.Div(p, den)
}

// percentOf returns amount*percent/100, truncating. Truncation dust is
// reconciled into the last leg of a final plan, never lost.
func percentOf(amount *big.Int, percent int) *big.Int {
	return mulDiv(amount, big.NewInt(int64(percent)), big.NewInt(100))
}

// distributionPercents expands a grid step into the breakpoint list
// step, 2*step, ..., 100. Validated config guarantees step divides 100.
func distributionPercents(step int) []int {
	percents := make([]int, 0, 100/step)
	for p := step; p <= 100; p += step {
		percents = append(percents, p)
	}
	return percents
}
