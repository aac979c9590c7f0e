// internal/curve/sqrt_price.go
package curve

import "math/big"

// sqrtPriceScale is 2^128: the square of the 64.64 fixed-point scale used by
// the sqrt_price encoding. Squaring a Q64.64 sqrt price yields a Q128.128-style
// price, which is why the numerator is shifted by 128 bits and not 64. The
// relationship is pinned by tests rather than assumed.
var sqrtPriceScale = new(big.Int).Lsh(big.NewInt(1), 128)

// TokensForSolSqrt computes the token output for a SOL input against a
// sqrt-price curve: floor(solIn * 2^128 / sqrtPrice^2).
func TokensForSolSqrt(solIn uint64, sqrtPriceX64 *big.Int) (uint64, error) {
	if sqrtPriceX64 == nil || sqrtPriceX64.Sign() <= 0 {
		return 0, ErrZeroReserves
	}
	if solIn == 0 {
		return 0, ErrZeroAmount
	}

	num := new(big.Int).Mul(new(big.Int).SetUint64(solIn), sqrtPriceScale)
	den := new(big.Int).Mul(sqrtPriceX64, sqrtPriceX64)
	return new(big.Int).Div(num, den).Uint64(), nil
}

// SqrtPriceFromReserves derives the Q64.64 sqrt price implied by a reserve
// snapshot: sqrt(solReserves * 2^128 / tokenReserves). Venues that publish
// reserves instead of a sqrt price go through this before quoting.
func SqrtPriceFromReserves(r Reserves) (*big.Int, error) {
	if r.SolReserves == 0 || r.TokenReserves == 0 {
		return nil, ErrZeroReserves
	}
	ratio := new(big.Int).Mul(new(big.Int).SetUint64(r.SolReserves), sqrtPriceScale)
	ratio.Div(ratio, new(big.Int).SetUint64(r.TokenReserves))
	return ratio.Sqrt(ratio), nil
}

// SolForTokensSqrt is the symmetric reverse: floor(tokenIn * sqrtPrice^2 / 2^128).
func SolForTokensSqrt(tokenIn uint64, sqrtPriceX64 *big.Int) (uint64, error) {
	if sqrtPriceX64 == nil || sqrtPriceX64.Sign() <= 0 {
		return 0, ErrZeroReserves
	}
	if tokenIn == 0 {
		return 0, ErrZeroAmount
	}

	num := new(big.Int).Mul(new(big.Int).SetUint64(tokenIn), new(big.Int).Mul(sqrtPriceX64, sqrtPriceX64))
	return new(big.Int).Div(num, sqrtPriceScale).Uint64(), nil
}
