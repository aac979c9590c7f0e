// internal/trader/pumpfun/state_test.go
package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeCurveAccount(state BondingCurveState) []byte {
	data := append([]byte(nil), state.Discriminator[:]...)
	data = binary.LittleEndian.AppendUint64(data, state.VirtualTokenReserves)
	data = binary.LittleEndian.AppendUint64(data, state.VirtualSolReserves)
	data = binary.LittleEndian.AppendUint64(data, state.RealTokenReserves)
	data = binary.LittleEndian.AppendUint64(data, state.RealSolReserves)
	data = binary.LittleEndian.AppendUint64(data, state.TokenTotalSupply)
	if state.Complete {
		return append(data, 1)
	}
	return append(data, 0)
}

func TestDecodeBondingCurve(t *testing.T) {
	want := BondingCurveState{
		VirtualTokenReserves: InitialVirtualTokenReserves,
		VirtualSolReserves:   InitialVirtualSolReserves,
		RealTokenReserves:    793_100_000_000_000,
		RealSolReserves:      0,
		TokenTotalSupply:     InitialTokenSupply,
		Complete:             false,
	}
	copy(want.Discriminator[:], curveDiscriminator)

	state, err := DecodeBondingCurve(encodeCurveAccount(want))
	require.NoError(t, err)
	assert.Equal(t, want, *state)
}

func TestDecodeBondingCurveMigrated(t *testing.T) {
	want := BondingCurveState{
		VirtualTokenReserves: 0,
		VirtualSolReserves:   0,
		TokenTotalSupply:     InitialTokenSupply,
		Complete:             true,
	}
	copy(want.Discriminator[:], curveDiscriminator)

	state, err := DecodeBondingCurve(encodeCurveAccount(want))
	require.NoError(t, err)
	assert.True(t, state.Complete)
}

func TestDecodeBondingCurveRejects(t *testing.T) {
	_, err := DecodeBondingCurve(nil)
	assert.Error(t, err)

	// Wrong discriminator, plausible body.
	var bad BondingCurveState
	copy(bad.Discriminator[:], []byte{9, 9, 9, 9, 9, 9, 9, 9})
	_, err = DecodeBondingCurve(encodeCurveAccount(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discriminator")

	// Right discriminator, truncated body.
	_, err = DecodeBondingCurve(append([]byte(nil), curveDiscriminator...))
	assert.Error(t, err)
}

func encodePoolAccount(state PoolState) []byte {
	data := append([]byte(nil), state.Discriminator[:]...)
	data = append(data, state.PoolBump)
	data = binary.LittleEndian.AppendUint16(data, state.Index)
	for _, key := range []solana.PublicKey{
		state.Creator, state.BaseMint, state.QuoteMint, state.LpMint,
		state.PoolBaseTokenAccount, state.PoolQuoteTokenAccount,
	} {
		data = append(data, key.Bytes()...)
	}
	data = binary.LittleEndian.AppendUint64(data, state.LpSupply)
	return append(data, state.CoinCreator.Bytes()...)
}

func TestDecodePool(t *testing.T) {
	want := PoolState{
		PoolBump:              254,
		Index:                 0,
		Creator:               solana.NewWallet().PublicKey(),
		BaseMint:              solana.NewWallet().PublicKey(),
		QuoteMint:             WSOL,
		LpMint:                solana.NewWallet().PublicKey(),
		PoolBaseTokenAccount:  solana.NewWallet().PublicKey(),
		PoolQuoteTokenAccount: solana.NewWallet().PublicKey(),
		LpSupply:              1_000_000,
		CoinCreator:           solana.NewWallet().PublicKey(),
	}
	copy(want.Discriminator[:], poolDiscriminator)

	raw := encodePoolAccount(want)
	state, err := DecodePool(raw)
	require.NoError(t, err)
	assert.Equal(t, want, *state)

	// The memcmp filter used for pool discovery reads BaseMint at a fixed
	// offset; the struct layout must keep agreeing with it.
	assert.Equal(t, want.BaseMint.Bytes(), raw[poolBaseMintOffset:poolBaseMintOffset+32])
}

func TestDecodePoolRejectsWrongDiscriminator(t *testing.T) {
	var bad PoolState
	copy(bad.Discriminator[:], curveDiscriminator)
	_, err := DecodePool(encodePoolAccount(bad))
	assert.Error(t, err)
}

func TestCurveAddressDerivation(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	addr, err := CurveAddress(mint)
	require.NoError(t, err)

	want, _, err := solana.FindProgramAddress([][]byte{curveSeed, mint.Bytes()}, ProgramID)
	require.NoError(t, err)
	assert.Equal(t, want, addr)

	other, err := CurveAddress(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
}
