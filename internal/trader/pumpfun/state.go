// internal/trader/pumpfun/state.go
package pumpfun

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// BondingCurveState mirrors the on-chain BondingCurve account layout.
type BondingCurveState struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// DecodeBondingCurve parses a raw bonding curve account.
func DecodeBondingCurve(data []byte) (*BondingCurveState, error) {
	var state BondingCurveState
	if err := bin.NewBinDecoder(data).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode bonding curve account: %w", err)
	}
	if !bytes.Equal(state.Discriminator[:], curveDiscriminator) {
		return nil, fmt.Errorf("account is not a bonding curve (discriminator mismatch)")
	}
	return &state, nil
}

// CurveAddress derives the bonding curve PDA for a mint.
func CurveAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{curveSeed, mint.Bytes()}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve address: %w", err)
	}
	return addr, nil
}

// CurveATA derives the curve's own associated token account, which holds the
// real token reserves.
func CurveATA(curve, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(curve, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive curve token account: %w", err)
	}
	return ata, nil
}

// PoolState mirrors the on-chain AMM Pool account layout.
type PoolState struct {
	Discriminator         [8]byte
	PoolBump              uint8
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	LpMint                solana.PublicKey
	PoolBaseTokenAccount  solana.PublicKey
	PoolQuoteTokenAccount solana.PublicKey
	LpSupply              uint64
	CoinCreator           solana.PublicKey
}

// DecodePool parses a raw AMM pool account.
func DecodePool(data []byte) (*PoolState, error) {
	var state PoolState
	if err := bin.NewBinDecoder(data).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode pool account: %w", err)
	}
	if !bytes.Equal(state.Discriminator[:], poolDiscriminator) {
		return nil, fmt.Errorf("account is not a pool (discriminator mismatch)")
	}
	return &state, nil
}

// poolBaseMintOffset is where BaseMint sits inside the Pool account:
// 8 discriminator + 1 bump + 2 index + 32 creator.
const poolBaseMintOffset = 43
