// internal/trader/meta.go
package trader

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/Deezzir/SolanaBot-sub000/internal/curve"
)

// ErrIncompleteMintMeta is returned when a required address field of a
// MintMeta is zero. Instruction building fails fast on it: a partially built
// instruction list must never be submitted.
var ErrIncompleteMintMeta = errors.New("mint meta is missing a required address")

// MintMeta is an immutable snapshot of one token's market state. Workers
// receive it by broadcast and must never mutate it; updates replace the whole
// value. The only derived values produced without a chain read come from
// EstimateAfterBuy / EstimateAfterSell, which return fresh copies.
type MintMeta struct {
	Mint         solana.PublicKey
	Curve        solana.PublicKey // bonding curve account (pre-migration)
	Pool         solana.PublicKey // standalone AMM pool (post-migration)
	FeeRecipient solana.PublicKey
	GlobalConfig solana.PublicKey
	BaseVault    solana.PublicKey
	QuoteVault   solana.PublicKey

	SolReserves   uint64
	TokenReserves uint64
	TotalSupply   uint64
	FeeRate       float64
	Decimals      uint8

	MarketCapSol float64
	MarketCapUSD float64

	// Complete flips true exactly once, when liquidity migrates from the
	// bonding curve to the standalone AMM pool.
	Complete bool

	Name   string
	Symbol string
}

// Reserves projects the curve-relevant fields.
func (m *MintMeta) Reserves() curve.Reserves {
	return curve.Reserves{
		SolReserves:   m.SolReserves,
		TokenReserves: m.TokenReserves,
		FeeRate:       m.FeeRate,
	}
}

// Validate checks the address fields the current trade path requires.
func (m *MintMeta) Validate() error {
	if m.Mint.IsZero() {
		return fmt.Errorf("%w: mint", ErrIncompleteMintMeta)
	}
	if m.Complete {
		if m.Pool.IsZero() {
			return fmt.Errorf("%w: pool", ErrIncompleteMintMeta)
		}
		if m.BaseVault.IsZero() || m.QuoteVault.IsZero() {
			return fmt.Errorf("%w: pool vaults", ErrIncompleteMintMeta)
		}
		return nil
	}
	// Pre-migration: one trading account must be known. Curve-based venues
	// derive a bonding curve, pool-based venues a pool PDA.
	if m.Curve.IsZero() && m.Pool.IsZero() {
		return fmt.Errorf("%w: bonding curve or pool", ErrIncompleteMintMeta)
	}
	if !m.Curve.IsZero() && m.FeeRecipient.IsZero() {
		return fmt.Errorf("%w: fee recipient", ErrIncompleteMintMeta)
	}
	return nil
}

// EstimateAfterBuy returns a new snapshot with reserves advanced past a
// simulated buy of solIn lamports. The receiver is left untouched.
func (m *MintMeta) EstimateAfterBuy(solIn uint64) (*MintMeta, error) {
	next, err := m.Reserves().AfterBuy(solIn)
	if err != nil {
		return nil, err
	}
	out := *m
	out.SolReserves = next.SolReserves
	out.TokenReserves = next.TokenReserves
	return &out, nil
}

// EstimateAfterSell returns a new snapshot past a simulated sell of tokenIn
// raw units.
func (m *MintMeta) EstimateAfterSell(tokenIn uint64) (*MintMeta, error) {
	next, err := m.Reserves().AfterSell(tokenIn)
	if err != nil {
		return nil, err
	}
	out := *m
	out.SolReserves = next.SolReserves
	out.TokenReserves = next.TokenReserves
	return &out, nil
}

// WithMarketCaps returns a copy with market cap metrics recomputed from the
// current reserves and the given SOL/USD rate.
func (m *MintMeta) WithMarketCaps(solPriceUSD float64) (*MintMeta, error) {
	mcap, err := curve.MarketCapSol(m.Reserves(), m.TotalSupply, m.Decimals)
	if err != nil {
		return nil, err
	}
	out := *m
	out.MarketCapSol = mcap
	out.MarketCapUSD = curve.MarketCapUSD(mcap, solPriceUSD)
	return &out, nil
}
