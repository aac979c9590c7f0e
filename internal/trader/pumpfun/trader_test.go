// internal/trader/pumpfun/trader_test.go
package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/trader"
	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.New("w", solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

func TestDefaultMetaSeedsLaunchState(t *testing.T) {
	venue := &Venue{logger: zap.NewNop()}
	mint := solana.NewWallet().PublicKey()

	meta := venue.DefaultMeta(mint)
	assert.Equal(t, mint, meta.Mint)
	assert.Equal(t, uint64(InitialVirtualSolReserves), meta.SolReserves)
	assert.Equal(t, uint64(InitialVirtualTokenReserves), meta.TokenReserves)
	assert.Equal(t, uint64(InitialTokenSupply), meta.TotalSupply)
	assert.Equal(t, CurveFeeRate, meta.FeeRate)
	assert.False(t, meta.Complete)
	assert.NoError(t, meta.Validate())

	want, err := CurveAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, want, meta.Curve)
}

func TestCurveBuyInstructions(t *testing.T) {
	venue := &Venue{logger: zap.NewNop()}
	buyer := testWallet(t)
	meta := venue.DefaultMeta(solana.NewWallet().PublicKey())

	ixs, err := venue.BuyInstructions(meta, buyer, 1_000_000_000, 34_000_000_000_000, 1_150_000_000)
	require.NoError(t, err)
	require.Len(t, ixs, 2, "create ATA then buy on the curve path")

	buyIx := ixs[1]
	assert.Equal(t, ProgramID, buyIx.ProgramID())

	data, err := buyIx.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, buyDiscriminator, data[:8])
	assert.Equal(t, uint64(34_000_000_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_150_000_000), binary.LittleEndian.Uint64(data[16:24]))

	accounts := buyIx.Accounts()
	require.Len(t, accounts, 12)
	assert.Equal(t, GlobalAccount, accounts[0].PublicKey)
	assert.Equal(t, meta.FeeRecipient, accounts[1].PublicKey)
	assert.Equal(t, meta.Curve, accounts[3].PublicKey)
	assert.Equal(t, buyer.PublicKey, accounts[6].PublicKey)
	assert.True(t, accounts[6].IsSigner)
}

func TestCurveSellInstructions(t *testing.T) {
	venue := &Venue{logger: zap.NewNop()}
	seller := testWallet(t)
	meta := venue.DefaultMeta(solana.NewWallet().PublicKey())

	ixs, err := venue.SellInstructions(meta, seller, 5_000_000, 1_000)
	require.NoError(t, err)
	require.Len(t, ixs, 1, "selling needs no account setup on the curve path")

	data, err := ixs[0].Data()
	require.NoError(t, err)
	assert.Equal(t, sellDiscriminator, data[:8])
	assert.Equal(t, uint64(5_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestAMMBuyInstructions(t *testing.T) {
	venue := &Venue{logger: zap.NewNop()}
	buyer := testWallet(t)

	meta := venue.DefaultMeta(solana.NewWallet().PublicKey())
	meta.Complete = true
	meta.Pool = solana.NewWallet().PublicKey()
	meta.BaseVault = solana.NewWallet().PublicKey()
	meta.QuoteVault = solana.NewWallet().PublicKey()
	meta.FeeRate = AMMFeeRate

	// Create ATA, create WSOL ATA, fund, sync, swap, close.
	ixs, err := venue.BuyInstructions(meta, buyer, 1_000_000_000, 34_000_000_000_000, 1_150_000_000)
	require.NoError(t, err)
	require.Len(t, ixs, 6)

	var swap solana.Instruction
	for _, ix := range ixs {
		if ix.ProgramID().Equals(AMMProgramID) {
			swap = ix
		}
	}
	require.NotNil(t, swap, "swap targets the AMM program after migration")

	data, err := swap.Data()
	require.NoError(t, err)
	assert.Equal(t, ammBuyDiscriminator, data[:8])
}

func TestInstructionsRejectIncompleteMeta(t *testing.T) {
	venue := &Venue{logger: zap.NewNop()}
	w := testWallet(t)

	meta := &trader.MintMeta{Mint: solana.NewWallet().PublicKey()}
	_, err := venue.BuyInstructions(meta, w, 1, 1, 1)
	assert.ErrorIs(t, err, trader.ErrIncompleteMintMeta)

	migrated := venue.DefaultMeta(solana.NewWallet().PublicKey())
	migrated.Complete = true // no pool resolved yet
	_, err = venue.SellInstructions(migrated, w, 1, 1)
	assert.ErrorIs(t, err, trader.ErrIncompleteMintMeta)
}
