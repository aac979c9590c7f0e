// internal/curve/constant_product.go
package curve

import (
	"math"
	"math/big"
)

// Reserves is a snapshot of a constant-product curve: the quote-side (SOL,
// lamports) and base-side (token, raw units) virtual reserves plus the
// proportional fee rate charged by the program (0.01 = 1%).
type Reserves struct {
	SolReserves   uint64
	TokenReserves uint64
	FeeRate       float64
}

// TokensForSol computes how many raw token units a SOL input buys on a
// constant-product curve with a proportional fee taken from the input.
//
// The product solReserves*tokenReserves can exceed 64 bits, so the invariant
// is carried in big.Int. The final "+1" on the new token reserves slightly
// under-credits the buyer; it keeps integer-division drift from ever pushing
// the invariant below k and must not be removed.
func TokensForSol(solIn uint64, r Reserves) (uint64, error) {
	if r.SolReserves == 0 || r.TokenReserves == 0 {
		return 0, ErrZeroReserves
	}
	if solIn == 0 {
		return 0, ErrZeroAmount
	}

	fee := uint64(math.Floor(float64(solIn) * r.FeeRate))
	netIn := solIn - fee

	k := new(big.Int).Mul(
		new(big.Int).SetUint64(r.SolReserves),
		new(big.Int).SetUint64(r.TokenReserves),
	)
	newSol := new(big.Int).SetUint64(r.SolReserves + netIn)

	newTokens := new(big.Int).Div(k, newSol)
	newTokens.Add(newTokens, big.NewInt(1))

	if newTokens.Cmp(new(big.Int).SetUint64(r.TokenReserves)) >= 0 {
		// Input too small to move the curve past the rounding bias.
		return 0, nil
	}

	out := new(big.Int).Sub(new(big.Int).SetUint64(r.TokenReserves), newTokens)
	return out.Uint64(), nil
}

// SolForTokens computes the lamports received for selling tokenIn raw units
// back into the curve.
//
// Fee policy: the fee is applied to the gross constant-product output, not
// pre-subtracted from the input. The buy side deducts the fee from the input
// before the division; the two directions are intentionally asymmetric and
// both are covered by tests.
func SolForTokens(tokenIn uint64, r Reserves) (uint64, error) {
	if r.SolReserves == 0 || r.TokenReserves == 0 {
		return 0, ErrZeroReserves
	}
	if tokenIn == 0 {
		return 0, ErrZeroAmount
	}

	num := new(big.Int).Mul(
		new(big.Int).SetUint64(tokenIn),
		new(big.Int).SetUint64(r.SolReserves),
	)
	den := new(big.Int).Add(
		new(big.Int).SetUint64(r.TokenReserves),
		new(big.Int).SetUint64(tokenIn),
	)
	gross := new(big.Int).Div(num, den).Uint64()

	fee := uint64(math.Floor(float64(gross) * r.FeeRate))
	return gross - fee, nil
}

// AfterBuy returns the reserves the curve would hold after a buy of solIn,
// without touching the receiver. Used as the fast-path estimate between real
// chain reads.
func (r Reserves) AfterBuy(solIn uint64) (Reserves, error) {
	tokensOut, err := TokensForSol(solIn, r)
	if err != nil {
		return Reserves{}, err
	}
	fee := uint64(math.Floor(float64(solIn) * r.FeeRate))
	return Reserves{
		SolReserves:   r.SolReserves + (solIn - fee),
		TokenReserves: r.TokenReserves - tokensOut,
		FeeRate:       r.FeeRate,
	}, nil
}

// AfterSell returns the reserves after selling tokenIn raw units.
func (r Reserves) AfterSell(tokenIn uint64) (Reserves, error) {
	solOut, err := SolForTokens(tokenIn, r)
	if err != nil {
		return Reserves{}, err
	}
	return Reserves{
		SolReserves:   r.SolReserves - solOut,
		TokenReserves: r.TokenReserves + tokenIn,
		FeeRate:       r.FeeRate,
	}, nil
}
