// internal/trader/pumpfun/config.go
package pumpfun

import "github.com/gagliardetto/solana-go"

// Program and well-known accounts of the pump.fun bonding curve program.
var (
	ProgramID          = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	GlobalAccount      = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	FeeRecipient       = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	EventAuthority     = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	AssociatedTokenPID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// AMM-side accounts used once liquidity migrates off the curve.
var (
	AMMProgramID       = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	AMMGlobalConfig    = solana.MustPublicKeyFromBase58("ADyA8hdefvWN2dbGGWFotbzWxrAvLW83WG6QCVXvJKqw")
	AMMEventAuthority  = solana.MustPublicKeyFromBase58("GS4CU59F31iL7aR2Q8zVS8DRrcRnXX1yjQ66TqNVQnaR")
	AMMFeeRecipient    = solana.MustPublicKeyFromBase58("62qc2CNXwrYqQScmEdiZFFAnJR262PxWEuNQtxfafNgV")
	AMMFeeRecipientATA = solana.MustPublicKeyFromBase58("94qWNrtmfn42h3ZjUZwWvK1MEo9uVmmrBPd2hpNjYDjb")
)

// WSOL is the wrapped-SOL mint: the quote side of every migrated pool.
var WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// curveSeed derives the bonding curve PDA from the mint.
var curveSeed = []byte("bonding-curve")

// Anchor instruction discriminators, extracted from the program IDL.
var (
	buyDiscriminator  = []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	sellDiscriminator = []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}

	ammBuyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	ammSellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}

	// curveDiscriminator is the account discriminator of BondingCurve state.
	curveDiscriminator = []byte{23, 183, 248, 55, 96, 216, 172, 96}
	// poolDiscriminator is the account discriminator of an AMM Pool.
	poolDiscriminator = []byte{241, 154, 109, 4, 17, 177, 109, 188}
)

// Launch-time defaults of a fresh curve. Trading can start from these before
// the curve account is even readable.
const (
	InitialVirtualSolReserves   = 30_000_000_000
	InitialVirtualTokenReserves = 1_073_000_000_000_000
	InitialTokenSupply          = 1_000_000_000_000_000
	CurveFeeRate                = 0.01
	TokenDecimals               = 6
)
