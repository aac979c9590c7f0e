// internal/curve/errors.go
package curve

import "errors"

var (
	// ErrZeroReserves is returned when a price or swap computation is attempted
	// against a curve with a non-positive reserve on either side.
	ErrZeroReserves = errors.New("curve has non-positive reserves")

	// ErrInvalidSlippage is returned for a slippage parameter outside (0, MaxSlippage).
	ErrInvalidSlippage = errors.New("slippage out of allowed range")

	// ErrZeroAmount is returned when the input amount of a swap computation is zero.
	ErrZeroAmount = errors.New("swap amount must be greater than zero")
)
