// internal/trader/trader.go
//
// Package trader defines the venue-neutral trading surface. Each supported
// launch platform implements Trader; everything above (workers, coordinator)
// talks to this interface only.
package trader

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

// TradeResult reports what a confirmed trade did.
type TradeResult struct {
	Signature solana.Signature
	// TokensOut is the estimated token amount for a buy, raw units.
	TokensOut uint64
	// SolOut is the estimated lamport proceeds for a sell.
	SolOut uint64
}

// TradeOptions carries the per-trade knobs a worker resolves from its config.
type TradeOptions struct {
	// Slippage is a fraction in (0, MaxSlippage): bounds on the executed amount.
	Slippage float64
	Submit   chain.SubmitOptions
}

// Trader executes trades for one mint on one venue. Implementations are safe
// for concurrent use: all mutable market state flows through MintMeta values.
type Trader interface {
	// Name identifies the venue ("pump.fun", "launchlab").
	Name() string

	// DefaultMeta returns a meta snapshot seeded with the venue's initial
	// virtual reserves, for trading a mint before its curve account is
	// readable.
	DefaultMeta(mint solana.PublicKey) *MintMeta

	// UpdateMeta re-reads on-chain state and returns a fresh snapshot. After
	// migration it resolves the AMM pool instead of the bonding curve.
	UpdateMeta(ctx context.Context, meta *MintMeta) (*MintMeta, error)

	// BuyInstructions builds the instruction list for buying with solIn
	// lamports, without submitting. maxSolCost carries the slippage bound.
	BuyInstructions(meta *MintMeta, buyer *wallet.Wallet, solIn, tokensOut, maxSolCost uint64) ([]solana.Instruction, error)

	// SellInstructions builds the instruction list for selling tokenIn raw
	// units. minSolOut carries the slippage bound.
	SellInstructions(meta *MintMeta, seller *wallet.Wallet, tokenIn, minSolOut uint64) ([]solana.Instruction, error)

	// Buy spends solIn lamports on tokens and waits for confirmation.
	Buy(ctx context.Context, meta *MintMeta, buyer *wallet.Wallet, solIn uint64, opts TradeOptions) (*TradeResult, error)

	// Sell liquidates tokenIn raw units and waits for confirmation.
	Sell(ctx context.Context, meta *MintMeta, seller *wallet.Wallet, tokenIn uint64, opts TradeOptions) (*TradeResult, error)
}
