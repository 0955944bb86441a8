package signature

import (
	"testing"

	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMessage struct {
	ClusterID string             `json:"cluster_id"`
	Address   interfaces.Address `json:"address"`
	RpcUrl    string             `json:"rpc_url"`
}

func TestSignAndVerify(t *testing.T) {
	signer, err := GeneratePrivateKeySigner()
	require.NoError(t, err)

	msg := testMessage{ClusterID: "c1", Address: signer.Address(), RpcUrl: "http://node:8000"}
	sig, err := signer.SignMessage(msg)
	require.NoError(t, err)
	assert.Len(t, sig, interfaces.SignatureLength)

	verifier := NewVerifier()
	assert.NoError(t, verifier.VerifyMessage(interfaces.PlatformEthereum, msg, sig, signer.Address()))

	// Tampered message
	tampered := msg
	tampered.RpcUrl = "http://attacker:8000"
	assert.ErrorIs(t, verifier.VerifyMessage(interfaces.PlatformEthereum, tampered, sig, signer.Address()), interfaces.ErrSignatureMismatch)

	// Someone else's address
	other, err := GeneratePrivateKeySigner()
	require.NoError(t, err)
	assert.ErrorIs(t, verifier.VerifyMessage(interfaces.PlatformEthereum, msg, sig, other.Address()), interfaces.ErrSignatureMismatch)

	// Truncated signature
	assert.ErrorIs(t, verifier.VerifyMessage(interfaces.PlatformEthereum, msg, sig[:64], signer.Address()), interfaces.ErrSignatureMismatch)
}

func TestVerify_LegacyRecoveryID(t *testing.T) {
	signer, err := GeneratePrivateKeySigner()
	require.NoError(t, err)

	msg := testMessage{ClusterID: "c1", Address: signer.Address()}
	sig, err := signer.SignMessage(msg)
	require.NoError(t, err)

	legacy := append(interfaces.Signature(nil), sig...)
	legacy[64] += 27

	recovered, err := RecoverAddress(msg, legacy)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
	// The caller's signature must not be modified
	assert.Equal(t, sig[64]+27, legacy[64])
}

func TestNewPrivateKeySigner(t *testing.T) {
	// Well-known development key
	signer, err := NewPrivateKeySigner("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	assert.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", signer.Address().Hex())

	_, err = NewPrivateKeySigner("not-a-key")
	assert.Error(t, err)
}
