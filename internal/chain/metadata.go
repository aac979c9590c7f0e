// internal/chain/metadata.go
package chain

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// TokenMeta is best-effort descriptive data for a mint. Lookups never fail the
// caller: anything unavailable degrades to placeholders.
type TokenMeta struct {
	Name     string
	Symbol   string
	Decimals uint8
	Supply   uint64
}

const (
	unknownName     = "Unknown"
	defaultDecimals = 6
)

// GetTokenMeta reads the mint account for decimals and supply. Name and symbol
// come from the creation event when the caller has one; here they default to
// the placeholder.
func (c *Client) GetTokenMeta(ctx context.Context, mint solana.PublicKey) TokenMeta {
	meta := TokenMeta{
		Name:     unknownName,
		Symbol:   unknownName,
		Decimals: defaultDecimals,
	}

	data, err := c.GetAccountData(ctx, mint)
	if err != nil {
		c.logger.Debug("token meta unavailable, using placeholders",
			zap.String("mint", mint.String()), zap.Error(err))
		return meta
	}

	var mintAcc token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mintAcc); err != nil {
		c.logger.Debug("mint account failed to decode, using placeholders",
			zap.String("mint", mint.String()), zap.Error(err))
		return meta
	}

	meta.Decimals = mintAcc.Decimals
	meta.Supply = mintAcc.Supply
	return meta
}
