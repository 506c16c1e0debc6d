// ABOUTME: Signing identity for journal transactions.
// ABOUTME: Loads a Solana CLI keypair file and signs transactions on behalf of the owner.
package wallet

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Wallet holds the owner keypair used to sign journal mutations.
type Wallet struct {
	key solana.PrivateKey
}

// New wraps an in-memory private key.
func New(key solana.PrivateKey) *Wallet {
	return &Wallet{key: key}
}

// Load reads a keypair from a Solana keygen JSON file.
func Load(path string) (*Wallet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat keypair file: %w", err)
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", path, err)
	}
	return &Wallet{key: key}, nil
}

// PublicKey returns the owner identity.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

// Signer returns the private key for the given public key, or nil when the
// wallet does not hold it. It matches the callback shape of Transaction.Sign.
func (w *Wallet) Signer(pub solana.PublicKey) *solana.PrivateKey {
	if pub.Equals(w.key.PublicKey()) {
		return &w.key
	}
	return nil
}
