// internal/chain/client.go
package chain

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client is a thin adapter over solana-go RPC with request rate limiting.
// It is the only component that talks to the chain; everything above it works
// with decoded values. Requests rotate round-robin across the configured
// endpoints so one degraded provider does not starve the whole session.
type Client struct {
	endpoints []*rpc.Client
	next      atomic.Uint64
	wsURL     string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient builds a Client over one or more RPC endpoints. wsURL may be
// empty if no subscription features are used.
func NewClient(rpcURLs []string, wsURL string, logger *zap.Logger) *Client {
	endpoints := make([]*rpc.Client, 0, len(rpcURLs))
	for _, rpcURL := range rpcURLs {
		endpoints = append(endpoints, rpc.New(rpcURL))
	}
	return &Client{
		endpoints: endpoints,
		wsURL:     wsURL,
		limiter:   rate.NewLimiter(rate.Limit(50), 10),
		logger:    logger.Named("chain"),
	}
}

// WSURL returns the configured websocket endpoint.
func (c *Client) WSURL() string { return c.wsURL }

// rpc returns the next endpoint in rotation.
func (c *Client) rpc() *rpc.Client {
	n := c.next.Add(1) - 1
	return c.endpoints[n%uint64(len(c.endpoints))]
}

// GetAccountData fetches the raw bytes of an account. A missing account maps
// to ErrAccountNotFound; transport failures are returned as-is.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	result, err := c.rpc().GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		c.logger.Debug("GetAccountData failed", zap.String("pubkey", pubkey.String()), zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	return result.Value.Data.GetBinary(), nil
}

// GetMultipleAccountData fetches raw bytes for several accounts in one request.
// Missing accounts yield nil slices at their positions.
func (c *Client) GetMultipleAccountData(ctx context.Context, pubkeys []solana.PublicKey) ([][]byte, error) {
	if len(pubkeys) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.rpc().GetMultipleAccountsWithOpts(ctx, pubkeys, &rpc.GetMultipleAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		c.logger.Debug("GetMultipleAccountData failed", zap.Error(err))
		return nil, err
	}
	data := make([][]byte, len(pubkeys))
	for i, info := range res.Value {
		if info != nil {
			data[i] = info.Data.GetBinary()
		}
	}
	return data, nil
}

// FindProgramAccounts runs a filtered program-account scan: a fixed
// discriminator match at offset 0 plus arbitrary (offset, bytes) matches.
func (c *Client) FindProgramAccounts(
	ctx context.Context,
	programID solana.PublicKey,
	filters []rpc.RPCFilter,
) (rpc.GetProgramAccountsResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
		Filters:    filters,
	}
	accounts, err := c.rpc().GetProgramAccountsWithOpts(ctx, programID, opts)
	if err != nil {
		c.logger.Debug("FindProgramAccounts failed",
			zap.String("program_id", programID.String()), zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	result, err := c.rpc().GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", pubkey.String(), err)
	}
	return result.Value, nil
}

// TokenBalance is a raw token amount plus its decimal scale.
type TokenBalance struct {
	Amount   uint64
	Decimals uint8
}

// GetTokenBalance reads the owner's associated token account balance for mint.
// It tries the fast Processed commitment first, then falls back to Confirmed.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (TokenBalance, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return TokenBalance{}, fmt.Errorf("failed to derive associated token account: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return TokenBalance{}, err
	}
	result, err := c.rpc().GetTokenAccountBalance(ctx, ata, rpc.CommitmentProcessed)
	if err != nil {
		c.logger.Debug("token balance with Processed failed, retrying Confirmed",
			zap.String("ata", ata.String()), zap.Error(err))
		result, err = c.rpc().GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	}
	if err != nil {
		if IsNotFound(err) {
			return TokenBalance{}, ErrAccountNotFound
		}
		return TokenBalance{}, fmt.Errorf("failed to get token account balance: %w", err)
	}
	if result == nil || result.Value.Amount == "" {
		return TokenBalance{}, ErrAccountNotFound
	}

	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return TokenBalance{}, fmt.Errorf("%w: token amount %q", ErrMalformedAccount, result.Value.Amount)
	}
	return TokenBalance{Amount: amount, Decimals: result.Value.Decimals}, nil
}

// Blockhash is a recent blockhash and the height after which it is invalid.
type Blockhash struct {
	Hash            solana.Hash
	LastValidHeight uint64
}

// GetLatestBlockhash fetches a recent blockhash at Confirmed commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Blockhash{}, err
	}
	result, err := c.rpc().GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return Blockhash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return Blockhash{
		Hash:            result.Value.Blockhash,
		LastValidHeight: result.Value.LastValidBlockHeight,
	}, nil
}

// GetBlockHeight returns the current block height at Confirmed commitment.
func (c *Client) GetBlockHeight(ctx context.Context) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return c.rpc().GetBlockHeight(ctx, rpc.CommitmentConfirmed)
}

// SendTransaction broadcasts a signed transaction, skipping preflight: the
// amounts carry their own slippage guards and preflight only adds latency.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.rpc().SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		c.logger.Debug("SendTransaction failed", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// WaitForConfirmation polls signature status until the transaction confirms or
// the reference blockhash expires. The expiry check keeps the wait bounded:
// once the chain height passes lastValidHeight the transaction can never land.
func (c *Client) WaitForConfirmation(ctx context.Context, sig solana.Signature, lastValidHeight uint64) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			statuses, err := c.rpc().GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				c.logger.Warn("failed to get signature status", zap.Error(err))
				continue
			}
			if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
				status := statuses.Value[0]
				if status.Err != nil {
					return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
				}
				if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
					status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
					return nil
				}
			}

			height, err := c.GetBlockHeight(ctx)
			if err != nil {
				continue
			}
			if height > lastValidHeight {
				return ErrBlockhashExpired
			}
		}
	}
}
