// Package signature signs and verifies RPC messages with secp256k1 keys.
//
// A message is encoded canonically as its JSON serialisation (struct fields in
// declaration order), hashed with the EIP-191 personal message prefix and signed
// as a 65-byte [R || S || V] signature.
package signature

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// CanonicalEncoding returns the bytes a signature over message commits to.
func CanonicalEncoding(message any) ([]byte, error) {
	encoded, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return encoded, nil
}

// MessageHash returns the EIP-191 hash of the canonical encoding of message.
func MessageHash(message any) ([]byte, error) {
	encoded, err := CanonicalEncoding(message)
	if err != nil {
		return nil, err
	}
	return accounts.TextHash(encoded), nil
}

// Verifier implements interfaces.MessageVerifier for the supported platforms.
// Both platforms use Ethereum-style accounts.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyMessage checks that signature over message was produced by address.
func (v *Verifier) VerifyMessage(platform interfaces.Platform, message any, signature interfaces.Signature, address interfaces.Address) error {
	switch platform {
	case interfaces.PlatformEthereum, interfaces.PlatformLocal:
	default:
		return fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, platform)
	}

	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrSignatureMismatch, err)
	}
	if recovered != address {
		return fmt.Errorf("%w: recovered %s, expected %s", interfaces.ErrSignatureMismatch, recovered, address)
	}
	return nil
}

// RecoverAddress returns the address that produced signature over message.
func RecoverAddress(message any, signature interfaces.Signature) (interfaces.Address, error) {
	if len(signature) != interfaces.SignatureLength {
		return interfaces.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}

	hash, err := MessageHash(message)
	if err != nil {
		return interfaces.Address{}, err
	}

	sig := make([]byte, interfaces.SignatureLength)
	copy(sig, signature)
	// Accept both 0/1 and 27/28 recovery ids
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubkey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return interfaces.Address{}, err
	}
	return interfaces.Address(crypto.PubkeyToAddress(*pubkey)), nil
}

// PrivateKeySigner signs messages with an in-memory secp256k1 key.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address interfaces.Address
}

// NewPrivateKeySigner parses a hex private key with or without the 0x prefix.
func NewPrivateKeySigner(hexKey string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	return NewPrivateKeySignerFromKey(key), nil
}

func NewPrivateKeySignerFromKey(key *ecdsa.PrivateKey) *PrivateKeySigner {
	return &PrivateKeySigner{
		key:     key,
		address: interfaces.Address(crypto.PubkeyToAddress(key.PublicKey)),
	}
}

// GeneratePrivateKeySigner creates a signer with a fresh random key.
func GeneratePrivateKeySigner() (*PrivateKeySigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return NewPrivateKeySignerFromKey(key), nil
}

func (s *PrivateKeySigner) Address() interfaces.Address {
	return s.address
}

// PrivateKey exposes the key for building chain transactors.
func (s *PrivateKeySigner) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}

// SignMessage signs the EIP-191 hash of the canonical encoding of message.
func (s *PrivateKeySigner) SignMessage(message any) (interfaces.Signature, error) {
	hash, err := MessageHash(message)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, err
	}
	return interfaces.Signature(sig), nil
}
