// internal/curve/slippage.go
package curve

import "math"

// MaxSlippage is the validation ceiling for the slippage fraction (5.0 = 500%).
// It is a configuration ceiling inherited from upstream programs, not a sane
// default; callers normally run with a few percent.
var MaxSlippage = 5.0

// ApplySlippageUp returns amount + floor(amount*slippage): the most SOL a buyer
// is willing to actually send once price movement is accounted for.
func ApplySlippageUp(amount uint64, slippage float64) (uint64, error) {
	if slippage <= 0 || slippage >= MaxSlippage {
		return 0, ErrInvalidSlippage
	}
	return amount + uint64(math.Floor(float64(amount)*slippage)), nil
}

// ApplySlippageDown returns amount - floor(amount*slippage): the on-chain
// minimum-amount-out guard. Slippage of 100% or more floors the bound at zero
// rather than wrapping the subtraction.
func ApplySlippageDown(amount uint64, slippage float64) (uint64, error) {
	if slippage <= 0 || slippage >= MaxSlippage {
		return 0, ErrInvalidSlippage
	}
	cut := uint64(math.Floor(float64(amount) * slippage))
	if cut >= amount {
		return 0, nil
	}
	return amount - cut, nil
}
