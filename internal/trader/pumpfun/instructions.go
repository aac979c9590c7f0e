// internal/trader/pumpfun/instructions.go
package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

// buildCurveBuyInstruction builds the bonding curve buy instruction.
// tokensOut is the expected token amount, maxSolCost the slippage-padded
// lamport ceiling the program enforces.
func buildCurveBuyInstruction(
	meta *trader.MintMeta,
	buyer *wallet.Wallet,
	tokensOut, maxSolCost uint64,
) (solana.Instruction, error) {
	data := make([]byte, 8, 24)
	copy(data, buyDiscriminator)
	data = binary.LittleEndian.AppendUint64(data, tokensOut)
	data = binary.LittleEndian.AppendUint64(data, maxSolCost)

	buyerATA, err := buyer.ATA(meta.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive buyer token account: %w", err)
	}
	curveATA, err := CurveATA(meta.Curve, meta.Mint)
	if err != nil {
		return nil, err
	}

	// Account order is fixed by the program.
	accounts := []*solana.AccountMeta{
		{PublicKey: GlobalAccount, IsSigner: false, IsWritable: false},
		{PublicKey: meta.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: meta.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: meta.Curve, IsSigner: false, IsWritable: true},
		{PublicKey: curveATA, IsSigner: false, IsWritable: true},
		{PublicKey: buyerATA, IsSigner: false, IsWritable: true},
		{PublicKey: buyer.PublicKey, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// buildCurveSellInstruction builds the bonding curve sell instruction.
func buildCurveSellInstruction(
	meta *trader.MintMeta,
	seller *wallet.Wallet,
	tokenIn, minSolOut uint64,
) (solana.Instruction, error) {
	data := make([]byte, 8, 24)
	copy(data, sellDiscriminator)
	data = binary.LittleEndian.AppendUint64(data, tokenIn)
	data = binary.LittleEndian.AppendUint64(data, minSolOut)

	sellerATA, err := seller.ATA(meta.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive seller token account: %w", err)
	}
	curveATA, err := CurveATA(meta.Curve, meta.Mint)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: GlobalAccount, IsSigner: false, IsWritable: false},
		{PublicKey: meta.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: meta.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: meta.Curve, IsSigner: false, IsWritable: true},
		{PublicKey: curveATA, IsSigner: false, IsWritable: true},
		{PublicKey: sellerATA, IsSigner: false, IsWritable: true},
		{PublicKey: seller.PublicKey, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenPID, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// createATAIdempotentInstruction builds a CreateIdempotent on the associated
// token program: a no-op when the account already exists, so it can be
// prepended to every trade without a prior existence check.
func createATAIdempotentInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	ata, _, _ := solana.FindAssociatedTokenAddress(owner, mint)
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(AssociatedTokenPID, accounts, []byte{1})
}

// wrapSolInstructions funds the owner's WSOL account with lamports: create the
// account if missing, transfer, then SyncNative so the token balance reflects
// the lamports.
func wrapSolInstructions(owner *wallet.Wallet, lamports uint64) ([]solana.Instruction, error) {
	wsolATA, err := owner.ATA(WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapped SOL account: %w", err)
	}
	return []solana.Instruction{
		createATAIdempotentInstruction(owner.PublicKey, owner.PublicKey, WSOL),
		system.NewTransferInstruction(lamports, owner.PublicKey, wsolATA).Build(),
		token.NewSyncNativeInstruction(wsolATA).Build(),
	}, nil
}

// unwrapSolInstruction closes the WSOL account, returning its lamports to the
// owner.
func unwrapSolInstruction(owner *wallet.Wallet) (solana.Instruction, error) {
	wsolATA, err := owner.ATA(WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapped SOL account: %w", err)
	}
	return token.NewCloseAccountInstruction(
		wsolATA, owner.PublicKey, owner.PublicKey, nil,
	).Build(), nil
}

// buildAMMSwapInstruction builds a swap on the migrated pool. For a buy,
// amount1 is the base amount out and amount2 the max quote in; for a sell,
// amount1 is the base amount in and amount2 the min quote out.
func buildAMMSwapInstruction(
	meta *trader.MintMeta,
	user *wallet.Wallet,
	isBuy bool,
	amount1, amount2 uint64,
) (solana.Instruction, error) {
	data := make([]byte, 8, 24)
	if isBuy {
		copy(data, ammBuyDiscriminator)
	} else {
		copy(data, ammSellDiscriminator)
	}
	data = binary.LittleEndian.AppendUint64(data, amount1)
	data = binary.LittleEndian.AppendUint64(data, amount2)

	userBaseATA, err := user.ATA(meta.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user token account: %w", err)
	}
	userQuoteATA, err := user.ATA(WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapped SOL account: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: meta.Pool, IsSigner: false, IsWritable: false},
		{PublicKey: user.PublicKey, IsSigner: true, IsWritable: true},
		{PublicKey: AMMGlobalConfig, IsSigner: false, IsWritable: false},
		{PublicKey: meta.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: WSOL, IsSigner: false, IsWritable: false},
		{PublicKey: userBaseATA, IsSigner: false, IsWritable: true},
		{PublicKey: userQuoteATA, IsSigner: false, IsWritable: true},
		{PublicKey: meta.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: meta.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: AMMFeeRecipient, IsSigner: false, IsWritable: false},
		{PublicKey: AMMFeeRecipientATA, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenPID, IsSigner: false, IsWritable: false},
		{PublicKey: AMMEventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: AMMProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(AMMProgramID, accounts, data), nil
}
