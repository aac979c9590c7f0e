// internal/trader/pumpfun/trader.go
//
// Package pumpfun trades launches on the pump.fun bonding curve and, once
// liquidity migrates, on its standalone AMM. The curve path and the AMM path
// share one Trader: the MintMeta Complete flag selects between them.
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/curve"
	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

// VenueName is the registry key for this venue.
const VenueName = "pump.fun"

// AMMFeeRate is the proportional fee of the migrated pool.
const AMMFeeRate = 0.0025

func init() {
	trader.Register(VenueName, New)
}

// Venue implements trader.Trader for pump.fun.
type Venue struct {
	client    *chain.Client
	submitter *chain.Submitter
	logger    *zap.Logger
}

// New builds the venue from shared dependencies.
func New(deps trader.Deps) (trader.Trader, error) {
	if deps.Client == nil || deps.Submitter == nil {
		return nil, fmt.Errorf("pumpfun: missing chain client or submitter")
	}
	return &Venue{
		client:    deps.Client,
		submitter: deps.Submitter,
		logger:    deps.Logger.Named("pumpfun"),
	}, nil
}

func (v *Venue) Name() string { return VenueName }

// DefaultMeta seeds a snapshot with the launch-time virtual reserves, so a
// worker can race the very first block before the curve account is readable.
func (v *Venue) DefaultMeta(mint solana.PublicKey) *trader.MintMeta {
	curveAddr, err := CurveAddress(mint)
	if err != nil {
		// PDA derivation only fails on a pathological mint key; surface it as
		// an incomplete meta that Validate rejects.
		v.logger.Warn("failed to derive bonding curve address",
			zap.String("mint", mint.String()), zap.Error(err))
	}
	return &trader.MintMeta{
		Mint:          mint,
		Curve:         curveAddr,
		FeeRecipient:  FeeRecipient,
		GlobalConfig:  GlobalAccount,
		SolReserves:   InitialVirtualSolReserves,
		TokenReserves: InitialVirtualTokenReserves,
		TotalSupply:   InitialTokenSupply,
		FeeRate:       CurveFeeRate,
		Decimals:      TokenDecimals,
	}
}

// UpdateMeta re-reads on-chain state. Before migration it decodes the bonding
// curve account; when the Complete flag flips it resolves the AMM pool once
// and afterwards refreshes from the pool vaults.
func (v *Venue) UpdateMeta(ctx context.Context, meta *trader.MintMeta) (*trader.MintMeta, error) {
	if meta.Complete {
		return v.refreshFromPool(ctx, meta)
	}

	data, err := v.client.GetAccountData(ctx, meta.Curve)
	if err != nil {
		return nil, fmt.Errorf("failed to read bonding curve %s: %w", meta.Curve, err)
	}
	state, err := DecodeBondingCurve(data)
	if err != nil {
		return nil, err
	}

	out := *meta
	out.SolReserves = state.VirtualSolReserves
	out.TokenReserves = state.VirtualTokenReserves
	out.TotalSupply = state.TokenTotalSupply
	if !state.Complete {
		return &out, nil
	}

	// Migration: locate the pool and switch the snapshot to the AMM path.
	pool, poolAddr, err := findPoolWithRetry(ctx, v.client, meta.Mint, v.logger)
	if err != nil {
		return nil, fmt.Errorf("curve complete but pool not found: %w", err)
	}
	out.Complete = true
	out.Pool = poolAddr
	out.BaseVault = pool.PoolBaseTokenAccount
	out.QuoteVault = pool.PoolQuoteTokenAccount
	out.FeeRate = AMMFeeRate
	return v.refreshFromPool(ctx, &out)
}

func (v *Venue) refreshFromPool(ctx context.Context, meta *trader.MintMeta) (*trader.MintMeta, error) {
	pool := &PoolState{
		PoolBaseTokenAccount:  meta.BaseVault,
		PoolQuoteTokenAccount: meta.QuoteVault,
	}
	sol, tokens, err := poolReserves(ctx, v.client, pool)
	if err != nil {
		return nil, err
	}
	out := *meta
	out.SolReserves = sol
	out.TokenReserves = tokens
	return &out, nil
}

// BuyInstructions builds the full buy instruction list without submitting.
func (v *Venue) BuyInstructions(
	meta *trader.MintMeta,
	buyer *wallet.Wallet,
	solIn, tokensOut, maxSolCost uint64,
) ([]solana.Instruction, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	ixs := []solana.Instruction{
		createATAIdempotentInstruction(buyer.PublicKey, buyer.PublicKey, meta.Mint),
	}
	if !meta.Complete {
		buyIx, err := buildCurveBuyInstruction(meta, buyer, tokensOut, maxSolCost)
		if err != nil {
			return nil, err
		}
		return append(ixs, buyIx), nil
	}

	// AMM path: the quote side is wrapped SOL, funded up to the slippage
	// ceiling and unwrapped afterwards so leftovers return to the wallet.
	wrapIxs, err := wrapSolInstructions(buyer, maxSolCost)
	if err != nil {
		return nil, err
	}
	swapIx, err := buildAMMSwapInstruction(meta, buyer, true, tokensOut, maxSolCost)
	if err != nil {
		return nil, err
	}
	unwrapIx, err := unwrapSolInstruction(buyer)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, wrapIxs...)
	return append(ixs, swapIx, unwrapIx), nil
}

// SellInstructions builds the full sell instruction list without submitting.
func (v *Venue) SellInstructions(
	meta *trader.MintMeta,
	seller *wallet.Wallet,
	tokenIn, minSolOut uint64,
) ([]solana.Instruction, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	if !meta.Complete {
		sellIx, err := buildCurveSellInstruction(meta, seller, tokenIn, minSolOut)
		if err != nil {
			return nil, err
		}
		return []solana.Instruction{sellIx}, nil
	}

	swapIx, err := buildAMMSwapInstruction(meta, seller, false, tokenIn, minSolOut)
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
	tokensOut, err := curve.TokensForSol(solIn, meta.Reserves())
	if err != nil {
		return nil, err
	}
	maxSolCost, err := curve.ApplySlippageUp(solIn, opts.Slippage)
	if err != nil {
		return nil, err
	}

	ixs, err := v.BuyInstructions(meta, buyer, solIn, tokensOut, maxSolCost)
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
		zap.Bool("amm", meta.Complete),
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
	solOut, err := curve.SolForTokens(tokenIn, meta.Reserves())
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
		zap.Bool("amm", meta.Complete),
		zap.String("signature", sig.String()))
	return &trader.TradeResult{Signature: sig, SolOut: solOut}, nil
}
