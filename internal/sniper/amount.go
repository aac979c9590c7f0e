// internal/sniper/amount.go
package sniper

import (
	"math"
	"math/rand"
	"time"

	"github.com/Deezzir/SolanaBot-sub000/internal/curve"
)

const (
	// SnipeMinBuy is the hard floor on a sized buy, in SOL. Anything smaller
	// is not worth the transaction fee.
	SnipeMinBuy = 0.0001

	// amountDecimals fixes the sizing precision: buys land on 5 decimal
	// places so spendings accounting stays exact in display units.
	amountDecimals = 1e5

	// spendMargin keeps sized buys under the remaining limit: fees and
	// slippage can push the real cost past the quoted amount.
	spendMargin = 0.95
)

// NextBuyAmount sizes the next buy in SOL. The size is drawn from a normal
// distribution centred between the configured bounds, clamped into them,
// capped to the remaining spend budget, and floored to fixed precision.
// Returns 0 when no viable buy remains.
func NextBuyAmount(rng *rand.Rand, minBuy, maxBuy, spendLimit, spent float64) float64 {
	var amount float64
	if maxBuy > minBuy {
		mean := (minBuy + maxBuy) / 2
		stddev := (maxBuy - minBuy) / 4
		amount = rng.NormFloat64()*stddev + mean
		amount = math.Max(minBuy, math.Min(maxBuy, amount))
	} else {
		amount = minBuy
	}

	remaining := (spendLimit - spent) * spendMargin
	amount = math.Min(amount, remaining)
	amount = math.Floor(amount*amountDecimals) / amountDecimals

	if amount < SnipeMinBuy {
		return 0
	}
	return amount
}

// randomInterval draws a trade-loop sleep from normal(mean, mean/2), clamped
// so jitter never produces a non-positive or runaway wait.
func randomInterval(rng *rand.Rand, mean time.Duration) time.Duration {
	if mean <= 0 {
		return 0
	}
	d := time.Duration(rng.NormFloat64()*float64(mean)/2 + float64(mean))
	if d < mean/10 {
		d = mean / 10
	}
	if d > 3*mean {
		d = 3 * mean
	}
	return d
}

// lamports converts a SOL amount to lamports.
func lamports(sol float64) uint64 {
	return uint64(math.Round(sol * curve.LamportsPerSol))
}

// scaleByPercent computes floor(amount * percent) in raw integer units
// without routing the raw amount through a float.
func scaleByPercent(amount uint64, percent float64) uint64 {
	if percent >= 1 {
		return amount
	}
	bps := uint64(math.Round(percent * 10_000))
	if bps == 0 {
		return 0
	}
	// Split to avoid overflowing amount*bps for large raw balances.
	return amount/10_000*bps + amount%10_000*bps/10_000
}
