// internal/trader/pumpfun/amm.go
package pumpfun

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
)

// tokenAccountAmountOffset is where the u64 amount sits in an SPL token
// account.
const tokenAccountAmountOffset = 64

// findPool locates the migrated AMM pool for a mint with a filtered program
// scan: pool discriminator at offset 0, the base mint at its fixed offset.
func findPool(ctx context.Context, client *chain.Client, mint solana.PublicKey, logger *zap.Logger) (*PoolState, solana.PublicKey, error) {
	filters := []rpc.RPCFilter{
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(poolDiscriminator)}},
		{Memcmp: &rpc.RPCFilterMemcmp{Offset: poolBaseMintOffset, Bytes: solana.Base58(mint.Bytes())}},
	}
	accounts, err := client.FindProgramAccounts(ctx, AMMProgramID, filters)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("pool scan failed: %w", err)
	}

	for _, acc := range accounts {
		pool, err := DecodePool(acc.Account.Data.GetBinary())
		if err != nil {
			logger.Debug("skipping undecodable pool candidate",
				zap.String("account", acc.Pubkey.String()), zap.Error(err))
			continue
		}
		if pool.QuoteMint.Equals(WSOL) {
			return pool, acc.Pubkey, nil
		}
	}
	return nil, solana.PublicKey{}, fmt.Errorf("no SOL-quoted pool found for mint %s", mint)
}

// findPoolWithRetry wraps findPool in exponential backoff: right after
// migration the pool account can lag the Complete flag by a few slots.
func findPoolWithRetry(ctx context.Context, client *chain.Client, mint solana.PublicKey, logger *zap.Logger) (*PoolState, solana.PublicKey, error) {
	var (
		pool    *PoolState
		address solana.PublicKey
	)
	operation := func() (struct{}, error) {
		var err error
		pool, address, err = findPool(ctx, client, mint, logger)
		return struct{}{}, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(5),
	)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return pool, address, nil
}

// poolReserves reads both vault balances in a single batched request and
// returns (solReserves, tokenReserves).
func poolReserves(ctx context.Context, client *chain.Client, pool *PoolState) (uint64, uint64, error) {
	data, err := client.GetMultipleAccountData(ctx, []solana.PublicKey{
		pool.PoolQuoteTokenAccount,
		pool.PoolBaseTokenAccount,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read pool vaults: %w", err)
	}
	amounts := make([]uint64, 2)
	for i, raw := range data {
		if len(raw) < tokenAccountAmountOffset+8 {
			return 0, 0, fmt.Errorf("%w: pool vault account too short", chain.ErrMalformedAccount)
		}
		amounts[i] = binary.LittleEndian.Uint64(raw[tokenAccountAmountOffset : tokenAccountAmountOffset+8])
	}
	return amounts[0], amounts[1], nil
}
