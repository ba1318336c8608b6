package signing

import (
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Algorithm identifies the signing key algorithm.
type Algorithm string

const (
	AlgorithmEd25519   Algorithm = "ed25519"
	AlgorithmSecp256k1 Algorithm = "secp256k1"
)

// Key is parsed private key material.
type Key struct {
	Algorithm Algorithm

	// PublicKey is the 33-byte ledger form: 0xED prefix plus 32 bytes for
	// ed25519, compressed SEC1 for secp256k1.
	PublicKey []byte

	ed25519Private   ed25519.PrivateKey
	secp256k1Private *secp256k1.PrivateKey
}

// ParseKey parses hex private key material. Ed25519 keys carry the ED
// prefix ahead of a 32-byte seed; anything else must be a 32-byte
// secp256k1 scalar.
func ParseKey(secret string) (*Key, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("empty signing key")
	}

	if strings.HasPrefix(strings.ToUpper(secret), "ED") && len(secret) == 66 {
		seed, err := hex.DecodeString(secret[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid ed25519 seed: %w", err)
		}
		private := ed25519.NewKeyFromSeed(seed)
		public := append([]byte{0xED}, private.Public().(ed25519.PublicKey)...)
		return &Key{
			Algorithm:      AlgorithmEd25519,
			PublicKey:      public,
			ed25519Private: private,
		}, nil
	}

	raw, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secp256k1 key must be 32 bytes, got %d", len(raw))
	}
	private := secp256k1.PrivKeyFromBytes(raw)
	return &Key{
		Algorithm:        AlgorithmSecp256k1,
		PublicKey:        private.PubKey().SerializeCompressed(),
		secp256k1Private: private,
	}, nil
}

// Sign produces a signature over the message. Ed25519 signs the message
// itself; secp256k1 signs its SHA512-half digest, DER encoded.
func (k *Key) Sign(message []byte) ([]byte, error) {
	switch k.Algorithm {
	case AlgorithmEd25519:
		return ed25519.Sign(k.ed25519Private, message), nil
	case AlgorithmSecp256k1:
		digest := Sha512Half(message)
		return secpecdsa.Sign(k.secp256k1Private, digest).Serialize(), nil
	default:
		return nil, fmt.Errorf("unsupported key algorithm: %s", k.Algorithm)
	}
}

// Sha512Half returns the first 32 bytes of SHA-512, the ledger's standard
// digest.
func Sha512Half(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:32]
}
