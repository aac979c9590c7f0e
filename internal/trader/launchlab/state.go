// internal/trader/launchlab/state.go
package launchlab

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// PoolState is the leading portion of the on-chain launchpad pool account.
// Trailing fields (vesting, platform fees) are not needed and left undecoded.
type PoolState struct {
	Discriminator [8]byte
	Epoch         uint64
	AuthBump      uint8
	Status        uint8
	BaseDecimals  uint8
	QuoteDecimals uint8
	MigrateType   uint8
	Supply        uint64
	TotalBaseSell uint64
	VirtualBase   uint64
	VirtualQuote  uint64
	RealBase      uint64
	RealQuote     uint64
}

// DecodePoolState parses a raw pool account prefix.
func DecodePoolState(data []byte) (*PoolState, error) {
	var state PoolState
	if err := bin.NewBinDecoder(data).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode launchpad pool account: %w", err)
	}
	if !bytes.Equal(state.Discriminator[:], poolStateDiscriminator) {
		return nil, fmt.Errorf("account is not a launchpad pool (discriminator mismatch)")
	}
	return &state, nil
}

// PoolAddress derives the pool PDA for a base mint quoted in SOL.
func PoolAddress(baseMint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{poolSeed, baseMint.Bytes(), WSOL.Bytes()}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	return addr, nil
}

// VaultAddress derives one of the pool's token vaults.
func VaultAddress(pool, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{vaultSeed, pool.Bytes(), mint.Bytes()}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool vault: %w", err)
	}
	return addr, nil
}
