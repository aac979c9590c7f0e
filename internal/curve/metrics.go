// internal/curve/metrics.go
package curve

import "math"

const (
	// LamportsPerSol is the quote unit scale.
	LamportsPerSol = 1_000_000_000
)

// PriceInSol returns the spot price of one whole token in SOL, derived from
// the reserve ratio and the token's decimal scale.
func PriceInSol(r Reserves, tokenDecimals uint8) (float64, error) {
	if r.SolReserves == 0 || r.TokenReserves == 0 {
		return 0, ErrZeroReserves
	}
	solSide := float64(r.SolReserves) / LamportsPerSol
	tokenSide := float64(r.TokenReserves) / math.Pow10(int(tokenDecimals))
	return solSide / tokenSide, nil
}

// MarketCapSol returns the SOL-denominated market cap for the given total
// supply (raw units).
func MarketCapSol(r Reserves, totalSupply uint64, tokenDecimals uint8) (float64, error) {
	price, err := PriceInSol(r, tokenDecimals)
	if err != nil {
		return 0, err
	}
	return price * float64(totalSupply) / math.Pow10(int(tokenDecimals)), nil
}

// MarketCapUSD converts a SOL market cap using an externally supplied fiat rate.
func MarketCapUSD(marketCapSol, solPriceUSD float64) float64 {
	return marketCapSol * solPriceUSD
}
