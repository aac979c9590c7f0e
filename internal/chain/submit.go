// internal/chain/submit.go
package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"go.uber.org/zap"

	"github.com/Deezzir/SolanaBot-sub000/internal/wallet"
)

// DefaultBlockEngine is the relay endpoint used for protected submissions.
const DefaultBlockEngine = "https://mainnet.block-engine.jito.wtf/api/v1"

// relayTipAccounts are the published tip accounts of the relay network. Tipping
// any one of them routes the transaction through the front-run-resistant path.
var relayTipAccounts = []solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	solana.MustPublicKeyFromBase58("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	solana.MustPublicKeyFromBase58("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	solana.MustPublicKeyFromBase58("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	solana.MustPublicKeyFromBase58("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	solana.MustPublicKeyFromBase58("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// SubmitOptions carries the per-trade submission knobs.
type SubmitOptions struct {
	// Priority selects the compute-budget profile.
	Priority PriorityLevel
	// ProtectionTip, when non-zero (lamports), routes the transaction through
	// the relay network with a validator tip instead of direct broadcast.
	ProtectionTip uint64
}

// Submitter assembles, signs, and broadcasts trade transactions.
type Submitter struct {
	client *Client
	relay  *jitorpc.JitoJsonRpcClient
	logger *zap.Logger
}

// NewSubmitter builds a Submitter. relayEndpoint may be empty to disable the
// protected path; passing a ProtectionTip then falls back to direct broadcast.
func NewSubmitter(client *Client, relayEndpoint string, logger *zap.Logger) *Submitter {
	s := &Submitter{
		client: client,
		logger: logger.Named("submitter"),
	}
	if relayEndpoint != "" {
		s.relay = jitorpc.NewJitoJsonRpcClient(relayEndpoint, "")
	}
	return s
}

// Submit builds a transaction from the given instructions, signs it with the
// wallet, and broadcasts it. The returned Blockhash bounds any later
// confirmation wait.
func (s *Submitter) Submit(
	ctx context.Context,
	instructions []solana.Instruction,
	signer *wallet.Wallet,
	opts SubmitOptions,
) (solana.Signature, Blockhash, error) {
	if len(instructions) == 0 {
		return solana.Signature{}, Blockhash{}, fmt.Errorf("no instructions to submit")
	}

	level := opts.Priority
	if level == "" {
		level = PriorityMedium
	}
	priorityIxs, err := PriorityInstructions(level)
	if err != nil {
		return solana.Signature{}, Blockhash{}, err
	}

	all := make([]solana.Instruction, 0, len(priorityIxs)+len(instructions)+1)
	all = append(all, priorityIxs...)
	all = append(all, instructions...)

	protected := opts.ProtectionTip > 0 && s.relay != nil
	if protected {
		tip := relayTipAccounts[rand.Intn(len(relayTipAccounts))]
		all = append(all, system.NewTransferInstruction(
			opts.ProtectionTip, signer.PublicKey, tip,
		).Build())
	}

	blockhash, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, Blockhash{}, err
	}

	tx, err := solana.NewTransaction(all, blockhash.Hash, solana.TransactionPayer(signer.PublicKey))
	if err != nil {
		return solana.Signature{}, Blockhash{}, fmt.Errorf("failed to build transaction: %w", err)
	}
	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, Blockhash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	var sig solana.Signature
	if protected {
		sig, err = s.sendProtected(tx)
	} else {
		sig, err = s.client.SendTransaction(ctx, tx)
	}
	if err != nil {
		return solana.Signature{}, Blockhash{}, err
	}

	s.logger.Debug("transaction submitted",
		zap.String("signature", sig.String()),
		zap.Bool("protected", protected),
		zap.String("priority", string(level)))
	return sig, blockhash, nil
}

// SubmitAndConfirm submits and then waits for confirmation, bounded by the
// blockhash's last valid height.
func (s *Submitter) SubmitAndConfirm(
	ctx context.Context,
	instructions []solana.Instruction,
	signer *wallet.Wallet,
	opts SubmitOptions,
) (solana.Signature, error) {
	sig, blockhash, err := s.Submit(ctx, instructions, signer, opts)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := s.client.WaitForConfirmation(ctx, sig, blockhash.LastValidHeight); err != nil {
		return sig, err
	}
	return sig, nil
}

// sendProtected submits the signed transaction as a single-transaction bundle
// through the relay network.
func (s *Submitter) sendProtected(tx *solana.Transaction) (solana.Signature, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	resp, err := s.relay.SendBundle([][]string{{encoded}})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("relay submission failed: %w", err)
	}

	var bundleID string
	if err := json.Unmarshal(resp, &bundleID); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to decode relay response: %w", err)
	}
	s.logger.Debug("bundle accepted by relay", zap.String("bundle_id", bundleID))

	if len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("signed transaction has no signatures")
	}
	return tx.Signatures[0], nil
}
