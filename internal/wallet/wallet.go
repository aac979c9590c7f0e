// internal/wallet/wallet.go
package wallet

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet is one funded Solana keypair. Each sniping worker is bound to exactly
// one Wallet for the lifetime of a run.
type Wallet struct {
	Name       string
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey

	mu       sync.Mutex
	ataCache map[string]solana.PublicKey
}

// New builds a Wallet from a base58-encoded 64-byte private key.
func New(name, privateKeyBase58 string) (*Wallet, error) {
	raw, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(raw))
	}
	priv := solana.PrivateKey(raw)
	return &Wallet{
		Name:       name,
		PrivateKey: priv,
		PublicKey:  priv.PublicKey(),
		ataCache:   make(map[string]solana.PublicKey),
	}, nil
}

// Load reads wallets from a CSV file with columns [Name, PrivateKeyBase58].
// Rows that fail to parse are skipped; the file must yield at least one wallet.
func Load(path string) ([]*Wallet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallets file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read wallets CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("wallets CSV is empty or missing data rows")
	}

	wallets := make([]*Wallet, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		w, err := New(record[0], record[1])
		if err != nil {
			continue
		}
		wallets = append(wallets, w)
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("no valid wallets in %s", path)
	}
	return wallets, nil
}

// SignTransaction signs tx with this wallet's private key.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		return nil
	})
	return err
}

// ATA returns the associated token account address for the given mint,
// memoized per wallet since derivation is pure.
func (w *Wallet) ATA(mint solana.PublicKey) (solana.PublicKey, error) {
	key := mint.String()

	w.mu.Lock()
	defer w.mu.Unlock()
	if ata, ok := w.ataCache[key]; ok {
		return ata, nil
	}

	ata, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	w.ataCache[key] = ata
	return ata, nil
}

// String returns the wallet's public key in base58.
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
