// internal/trader/launchlab/config.go
package launchlab

import "github.com/gagliardetto/solana-go"

// Program and well-known accounts of the launchpad program.
var (
	ProgramID      = solana.MustPublicKeyFromBase58("LanMV9sAd7wArD4vJFi2qDdfnVhFxYSUg6eADduJ3uj")
	Authority      = solana.MustPublicKeyFromBase58("WLHv2UAZm6z4KyaaELi5pjdbJh6RESMva1Rnn8pJVVh")
	GlobalConfig   = solana.MustPublicKeyFromBase58("6s1xP3hpbAfFoNtUNF8mfHsjr2Bd97JxFJRWLbL6aHuX")
	PlatformConfig = solana.MustPublicKeyFromBase58("FfYek5vEz23cMkWsdJwG2oa6EphsvXSHrGpdALN4g6W1")
	EventAuthority = solana.MustPublicKeyFromBase58("2DPAtwB8L12vrMRExbLuyGnC7n2J5LNoZQSejeQGpwkr")
)

// WSOL is the quote mint of every launchpad pool we trade.
var WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

var (
	poolSeed  = []byte("pool")
	vaultSeed = []byte("pool_vault")
)

// Instruction discriminators from the program IDL.
var (
	buyExactInDiscriminator  = []byte{250, 234, 13, 123, 213, 156, 19, 236}
	sellExactInDiscriminator = []byte{149, 39, 222, 155, 211, 124, 152, 26}

	poolStateDiscriminator = []byte{247, 237, 227, 245, 215, 195, 222, 70}
)

// Launch-time defaults of a fresh pool.
const (
	InitialVirtualSolReserves   = 30_000_852_951
	InitialVirtualTokenReserves = 1_073_025_605_596_382
	InitialTokenSupply          = 1_000_000_000_000_000
	PoolFeeRate                 = 0.01
	TokenDecimals               = 6
)

// Pool status values.
const (
	statusTrading  = 0
	statusMigrated = 1
)
