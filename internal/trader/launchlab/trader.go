// internal/trader/launchlab/trader.go
//
// Package launchlab trades launches on a sqrt-price launchpad pool. Unlike the
// bonding curve venues, the pool publishes reserves directly; quoting derives
// the Q64.64 sqrt price from them on each trade.
package launchlab

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/curve"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

// VenueName is the registry key for this venue.
const VenueName = "launchlab"

// ErrMigrated is returned for trades against a pool whose liquidity has moved
// to the downstream AMM.
var ErrMigrated = errors.New("launchpad pool has migrated")

func init() {
	trader.Register(VenueName, New)
}

// Venue implements trader.Trader for the launchpad.
type Venue struct {
	client    *chain.Client
	submitter *chain.Submitter
	logger    *zap.Logger
}

// New builds the venue from shared dependencies.
func New(deps trader.Deps) (trader.Trader, error) {
	if deps.Client == nil || deps.Submitter == nil {
		return nil, fmt.Errorf("launchlab: missing chain client or submitter")
	}
	return &Venue{
		client:    deps.Client,
		submitter: deps.Submitter,
		logger:    deps.Logger.Named("launchlab"),
	}, nil
}

func (v *Venue) Name() string { return VenueName }

// DefaultMeta seeds a snapshot with the launch-time virtual reserves and the
// derived pool addresses.
func (v *Venue) DefaultMeta(mint solana.PublicKey) *trader.MintMeta {
	meta := &trader.MintMeta{
		Mint:          mint,
		GlobalConfig:  GlobalConfig,
		SolReserves:   InitialVirtualSolReserves,
		TokenReserves: InitialVirtualTokenReserves,
		TotalSupply:   InitialTokenSupply,
		FeeRate:       PoolFeeRate,
		Decimals:      TokenDecimals,
	}

	pool, err := PoolAddress(mint)
	if err != nil {
		v.logger.Warn("failed to derive pool address",
			zap.String("mint", mint.String()), zap.Error(err))
		return meta
	}
	meta.Pool = pool
	if meta.BaseVault, err = VaultAddress(pool, mint); err != nil {
		v.logger.Warn("failed to derive base vault", zap.Error(err))
	}
	if meta.QuoteVault, err = VaultAddress(pool, WSOL); err != nil {
		v.logger.Warn("failed to derive quote vault", zap.Error(err))
	}
	return meta
}

// UpdateMeta re-reads the pool account. A migrated status flips Complete;
// further trades on this venue fail with ErrMigrated.
func (v *Venue) UpdateMeta(ctx context.Context, meta *trader.MintMeta) (*trader.MintMeta, error) {
	data, err := v.client.GetAccountData(ctx, meta.Pool)
	if err != nil {
		return nil, fmt.Errorf("failed to read launchpad pool %s: %w", meta.Pool, err)
	}
	state, err := DecodePoolState(data)
	if err != nil {
		return nil, err
	}

	out := *meta
	out.SolReserves = state.VirtualQuote
	out.TokenReserves = state.VirtualBase
	out.TotalSupply = state.Supply
	out.Decimals = state.BaseDecimals
	out.Complete = state.Status == statusMigrated
	return &out, nil
}

// quoteBuy estimates the token output for a gross SOL input: the fee comes off
// the input, the remainder is priced on the sqrt curve.
func (v *Venue) quoteBuy(meta *trader.MintMeta, solIn uint64) (uint64, error) {
	sqrtPrice, err := curve.SqrtPriceFromReserves(meta.Reserves())
	if err != nil {
		return 0, err
	}
	fee := uint64(math.Floor(float64(solIn) * meta.FeeRate))
	return curve.TokensForSolSqrt(solIn-fee, sqrtPrice)
}

// quoteSell estimates the lamport proceeds for a token input, fee off the
// output.
func (v *Venue) quoteSell(meta *trader.MintMeta, tokenIn uint64) (uint64, error) {
	sqrtPrice, err := curve.SqrtPriceFromReserves(meta.Reserves())
	if err != nil {
		return 0, err
	}
	gross, err := curve.SolForTokensSqrt(tokenIn, sqrtPrice)
	if err != nil {
		return 0, err
	}
	fee := uint64(math.Floor(float64(gross) * meta.FeeRate))
	return gross - fee, nil
}

// BuyInstructions builds the exact-in buy. The pool is exact-in, so tokensOut
// is passed through as the on-chain minimum-amount-out bound and maxSolCost is
// unused beyond funding the wrapped SOL account.
func (v *Venue) BuyInstructions(
	meta *trader.MintMeta,
	buyer *wallet.Wallet,
	solIn, tokensOut, maxSolCost uint64,
) ([]solana.Instruction, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if meta.Complete {
		return nil, ErrMigrated
	}

	wrapIxs, err := wrapSolInstructions(buyer, solIn)
	if err != nil {
		return nil, err
	}
	swapIx, err := buildSwapInstruction(meta, buyer, true, solIn, tokensOut)
	if err != nil {
		return nil, err
	}
	unwrapIx, err := unwrapSolInstruction(buyer)
	if err != nil {
		return nil, err
	}

	ixs := []solana.Instruction{
		createATAIdempotentInstruction(buyer.PublicKey, buyer.PublicKey, meta.Mint),
	}
	ixs = append(ixs, wrapIxs...)
	return append(ixs, swapIx, unwrapIx), nil
}

// SellInstructions builds the exact-in sell with minSolOut as the bound.
func (v *Venue) SellInstructions(
	meta *trader.MintMeta,
	seller *wallet.Wallet,
	tokenIn, minSolOut uint64,
) ([]solana.Instruction, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if meta.Complete {
		return nil, ErrMigrated
	}

	swapIx, err := buildSwapInstruction(meta, seller, false, tokenIn, minSolOut)
	if err != nil {
		return nil, err
	}
	unwrapIx, err := unwrapSolInstruction(seller)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{
		createATAIdempotentInstruction(seller.PublicKey, seller.PublicKey, WSOL),
		swapIx,
		unwrapIx,
	}, nil
}

// Buy spends solIn lamports and waits for confirmation.
func (v *Venue) Buy(
	ctx context.Context,
	meta *trader.MintMeta,
	buyer *wallet.Wallet,
	solIn uint64,
	opts trader.TradeOptions,
) (*trader.TradeResult, error) {
	tokensOut, err := v.quoteBuy(meta, solIn)
	if err != nil {
		return nil, err
	}
	minTokensOut, err := curve.ApplySlippageDown(tokensOut, opts.Slippage)
	if err != nil {
		return nil, err
	}

	ixs, err := v.BuyInstructions(meta, buyer, solIn, minTokensOut, solIn)
	if err != nil {
		return nil, err
	}
	sig, err := v.submitter.SubmitAndConfirm(ctx, ixs, buyer, opts.Submit)
	if err != nil {
		return nil, err
	}

	v.logger.Info("buy confirmed",
		zap.String("wallet", buyer.Name),
		zap.String("mint", meta.Mint.String()),
		zap.Uint64("sol_in", solIn),
		zap.Uint64("tokens_out", tokensOut),
		zap.String("signature", sig.String()))
	return &trader.TradeResult{Signature: sig, TokensOut: tokensOut}, nil
}

// Sell liquidates tokenIn raw units and waits for confirmation.
func (v *Venue) Sell(
	ctx context.Context,
	meta *trader.MintMeta,
	seller *wallet.Wallet,
	tokenIn uint64,
	opts trader.TradeOptions,
) (*trader.TradeResult, error) {
	solOut, err := v.quoteSell(meta, tokenIn)
	if err != nil {
		return nil, err
	}
	minSolOut, err := curve.ApplySlippageDown(solOut, opts.Slippage)
	if err != nil {
		return nil, err
	}

	ixs, err := v.SellInstructions(meta, seller, tokenIn, minSolOut)
	if err != nil {
		return nil, err
	}
	sig, err := v.submitter.SubmitAndConfirm(ctx, ixs, seller, opts.Submit)
	if err != nil {
		return nil, err
	}

	v.logger.Info("sell confirmed",
		zap.String("wallet", seller.Name),
		zap.String("mint", meta.Mint.String()),
		zap.Uint64("token_in", tokenIn),
		zap.Uint64("sol_out", solOut),
		zap.String("signature", sig.String()))
	return &trader.TradeResult{Signature: sig, SolOut: solOut}, nil
}
