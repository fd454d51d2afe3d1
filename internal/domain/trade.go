package domain

// TradeType selects which side of the trade is fixed.
type TradeType uint8

const (
	// ExactInput fixes the input amount; the engine maximizes the
	// gas-adjusted output.
	ExactInput TradeType = iota
	// ExactOutput fixes the output amount; the engine minimizes the
	// gas-adjusted input.
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "ExactIn"
	case ExactOutput:
		return "ExactOut"
	default:
		return "UNKNOWN"
	}
}

func ParseTradeType(s string) (TradeType, bool) {
	switch s {
	case "ExactIn", "exactIn", "EXACT_IN":
		return ExactInput, true
	case "ExactOut", "exactOut", "EXACT_OUT":
		return ExactOutput, true
	default:
		return ExactInput, false
	}
}
