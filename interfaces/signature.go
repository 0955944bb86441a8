package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SignatureLength is the length of a recoverable secp256k1 signature.
const SignatureLength = 65

// Signature is a detached [R || S || V] signature over a canonical message encoding.
type Signature []byte

// NewSignatureFromHex decodes a 0x-prefixed or bare hex signature.
func NewSignatureFromHex(s string) (Signature, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex format: %w", err)
	}
	if len(raw) != SignatureLength {
		return nil, errors.New("invalid signature length: must be 65 bytes")
	}
	return Signature(raw), nil
}

func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s)
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hex())
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := NewSignatureFromHex(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MessageVerifier checks that a signature over message was produced by address.
type MessageVerifier interface {
	VerifyMessage(platform Platform, message any, signature Signature, address Address) error
}

// Signer produces signatures the registry's verifiers accept and exposes the
// key for self-publishing to a liveness contract.
type Signer interface {
	Address() Address
	SignMessage(message any) (Signature, error)
}
