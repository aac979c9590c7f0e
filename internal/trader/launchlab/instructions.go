// internal/trader/launchlab/instructions.go
package launchlab

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

var associatedTokenPID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// buildSwapInstruction builds buy_exact_in or sell_exact_in. amountIn is the
// exact input (quote lamports for buy, base units for sell); minAmountOut
// carries the slippage bound. shareFeeRate stays zero: no referral split.
func buildSwapInstruction(
	meta *trader.MintMeta,
	user *wallet.Wallet,
	isBuy bool,
	amountIn, minAmountOut uint64,
) (solana.Instruction, error) {
	data := make([]byte, 8, 32)
	if isBuy {
		copy(data, buyExactInDiscriminator)
	} else {
		copy(data, sellExactInDiscriminator)
	}
	data = binary.LittleEndian.AppendUint64(data, amountIn)
	data = binary.LittleEndian.AppendUint64(data, minAmountOut)
	data = binary.LittleEndian.AppendUint64(data, 0) // share_fee_rate

	userBaseATA, err := user.ATA(meta.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user token account: %w", err)
	}
	userQuoteATA, err := user.ATA(WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapped SOL account: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: user.PublicKey, IsSigner: true, IsWritable: true},
		{PublicKey: Authority, IsSigner: false, IsWritable: false},
		{PublicKey: GlobalConfig, IsSigner: false, IsWritable: false},
		{PublicKey: PlatformConfig, IsSigner: false, IsWritable: false},
		{PublicKey: meta.Pool, IsSigner: false, IsWritable: true},
		{PublicKey: userBaseATA, IsSigner: false, IsWritable: true},
		{PublicKey: userQuoteATA, IsSigner: false, IsWritable: true},
		{PublicKey: meta.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: meta.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: meta.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: WSOL, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// createATAIdempotentInstruction is CreateIdempotent on the associated token
// program: safe to prepend to every trade.
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
	return solana.NewInstruction(associatedTokenPID, accounts, []byte{1})
}

// wrapSolInstructions funds the owner's WSOL account with lamports.
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

// unwrapSolInstruction closes the WSOL account back into the owner.
func unwrapSolInstruction(owner *wallet.Wallet) (solana.Instruction, error) {
	wsolATA, err := owner.ATA(WSOL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapped SOL account: %w", err)
	}
	return token.NewCloseAccountInstruction(
		wsolATA, owner.PublicKey, owner.PublicKey, nil,
	).Build(), nil
}
