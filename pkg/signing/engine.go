package signing

import (
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"
)

// Hash prefixes separating signing input from transaction ids.
var (
	prefixSigning = []byte("STX\x00")
	prefixTxID    = []byte("TXN\x00")
)

// Options control how a transaction is signed.
type Options struct {
	// MultiSign makes the engine attach a Signers entry instead of a
	// top-level signature.
	MultiSign bool

	// SignerAddress is the identity to sign as when multi-signing. If
	// empty it is derived from the key.
	SignerAddress string

	// Method is recorded on the signed object for origin reporting.
	Method string
}

// SignedObject is the product of a successful signing pass.
type SignedObject struct {
	SignedBlob    string `json:"signed_blob"`
	TxID          string `json:"tx_id"`
	SignMethod    string `json:"signmethod"`
	MultiSigned   bool   `json:"multisigned"`
	SignerAccount string `json:"signer_account,omitempty"`
}

// Engine signs prepared transactions. It refuses incomplete input instead
// of filling gaps: missing fee or sequence on a ledger transaction is a
// preparation bug upstream.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a signing engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Sign signs the transaction with the key and returns the blob and
// transaction id. The transaction's SigningPubKey, TxnSignature or Signers
// fields are filled in place.
func (e *Engine) Sign(tx transactions.Transaction, key *Key, opts Options) (*SignedObject, error) {
	if tx == nil {
		return nil, fmt.Errorf("cannot sign nil transaction")
	}
	if key == nil {
		return nil, fmt.Errorf("cannot sign without a key")
	}

	common := tx.Common()
	if common.Account == "" {
		return nil, fmt.Errorf("transaction has no Account")
	}
	if !tx.IsPseudo() {
		if common.Fee == "" {
			return nil, fmt.Errorf("transaction has no Fee")
		}
		if common.Sequence == nil && common.TicketSequence == nil {
			return nil, fmt.Errorf("transaction has no Sequence or TicketSequence")
		}
	}
	if common.TxnSignature != "" {
		return nil, fmt.Errorf("transaction is already signed")
	}

	method := opts.Method
	if method == "" {
		method = "OTHER"
	}

	if opts.MultiSign {
		return e.multiSign(tx, key, opts.SignerAddress, method)
	}
	return e.singleSign(tx, key, method)
}

func (e *Engine) singleSign(tx transactions.Transaction, key *Key, method string) (*SignedObject, error) {
	common := tx.Common()
	common.SigningPubKey = strings.ToUpper(hex.EncodeToString(key.PublicKey))

	unsigned, err := CanonicalJSON(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction for signing: %w", err)
	}

	signature, err := key.Sign(append(append([]byte{}, prefixSigning...), unsigned...))
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	common.TxnSignature = strings.ToUpper(hex.EncodeToString(signature))

	return e.finalize(tx, method, false, "")
}

func (e *Engine) multiSign(tx transactions.Transaction, key *Key, signerAddress, method string) (*SignedObject, error) {
	common := tx.Common()

	// Multi-signed transactions keep an empty top-level SigningPubKey;
	// each signature lives in the Signers array under its own identity.
	common.SigningPubKey = ""

	if signerAddress == "" {
		derived, err := Address(key.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to derive signer address: %w", err)
		}
		signerAddress = derived
	}

	unsigned, err := CanonicalJSON(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction for signing: %w", err)
	}

	// The signer's account id is appended to the signing input so each
	// signer produces a distinct signature over the same transaction.
	message := append(append([]byte{}, prefixSigning...), unsigned...)
	message = append(message, AccountID(key.PublicKey)...)

	signature, err := key.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to multi-sign transaction: %w", err)
	}

	common.Signers = append(common.Signers, transactions.SignerWrapper{
		Signer: transactions.Signer{
			Account:       signerAddress,
			SigningPubKey: strings.ToUpper(hex.EncodeToString(key.PublicKey)),
			TxnSignature:  strings.ToUpper(hex.EncodeToString(signature)),
		},
	})

	return e.finalize(tx, method, true, signerAddress)
}

func (e *Engine) finalize(tx transactions.Transaction, method string, multiSigned bool, signerAccount string) (*SignedObject, error) {
	signed, err := CanonicalJSON(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed transaction: %w", err)
	}

	blob := strings.ToUpper(hex.EncodeToString(signed))
	txID := strings.ToUpper(hex.EncodeToString(
		Sha512Half(append(append([]byte{}, prefixTxID...), signed...))))

	e.logger.Sugar().Debugw("Transaction signed",
		"type", tx.EventsLabel(), "tx_id", txID, "multisigned", multiSigned)

	return &SignedObject{
		SignedBlob:    blob,
		TxID:          txID,
		SignMethod:    method,
		MultiSigned:   multiSigned,
		SignerAccount: signerAccount,
	}, nil
}
