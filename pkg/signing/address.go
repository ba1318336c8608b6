package signing

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ledger address format requires ripemd160
)

// xrplAlphabet is the base58 dictionary used for ledger addresses.
var xrplAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

// accountTypePrefix is the payload type byte for account addresses.
const accountTypePrefix = 0x00

// AccountID derives the 20-byte account id from a 33-byte public key.
func AccountID(publicKey []byte) []byte {
	inner := sha256.Sum256(publicKey)
	h := ripemd160.New()
	h.Write(inner[:])
	return h.Sum(nil)
}

// Address derives the classic address for a public key.
func Address(publicKey []byte) (string, error) {
	if len(publicKey) != 33 {
		return "", fmt.Errorf("public key must be 33 bytes, got %d", len(publicKey))
	}

	payload := append([]byte{accountTypePrefix}, AccountID(publicKey)...)

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	checksum := second[:4]

	return base58.FastBase58EncodingAlphabet(append(payload, checksum...), xrplAlphabet), nil
}
