package liveness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChainWithID struct {
	*fakeChain
	chainID *big.Int
	err     error
}

func (f *fakeChainWithID) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, f.err
}

type addressOnlySigner struct {
	interfaces.Signer
}

type signerSet map[interfaces.Platform]interfaces.Signer

func (s signerSet) GetSigner(platform interfaces.Platform) (interfaces.Signer, error) {
	signer, ok := s[platform]
	if !ok {
		return nil, interfaces.ErrSignerNotFound
	}
	return signer, nil
}

func TestBindSigner(t *testing.T) {
	signer, err := signature.GeneratePrivateKeySigner()
	require.NoError(t, err)
	ctx := context.Background()

	client := NewEthereumLivenessClient(testKey, &fakeChainWithID{fakeChain: &fakeChain{}, chainID: big.NewInt(1337)}, common.Address{})
	require.NoError(t, BindSigner(ctx, client, signer))
	require.NotNil(t, client.auth)
	assert.Equal(t, signer.Address().Common(), client.auth.From)

	// A signer without key material cannot transact
	client = NewEthereumLivenessClient(testKey, &fakeChainWithID{fakeChain: &fakeChain{}, chainID: big.NewInt(1337)}, common.Address{})
	assert.ErrorIs(t, BindSigner(ctx, client, addressOnlySigner{signer}), ErrSignerHasNoKey)
	assert.Nil(t, client.auth)

	// The chain id is read from the backend
	client = NewEthereumLivenessClient(testKey, &fakeChainWithID{fakeChain: &fakeChain{}, err: errors.New("down")}, common.Address{})
	assert.ErrorIs(t, BindSigner(ctx, client, signer), interfaces.ErrBackendUnavailable)
	assert.Nil(t, client.auth)

	client = NewEthereumLivenessClient(testKey, &fakeChain{}, common.Address{})
	assert.ErrorIs(t, BindSigner(ctx, client, signer), interfaces.ErrBackendUnavailable)
}

func TestClientFactory_UnreachableChainStaysReadOnly(t *testing.T) {
	signer, err := signature.GeneratePrivateKeySigner()
	require.NoError(t, err)
	factory := NewClientFactory(signerSet{interfaces.PlatformEthereum: signer}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	client, err := factory.LivenessClientFor(context.Background(), testKey, &interfaces.SequencingInfoPayload{
		LivenessRpcUrl:  "http://127.0.0.1:1",
		ContractAddress: "0x3333333333333333333333333333333333333333",
	})
	require.NoError(t, err)

	_, err = client.(*EthereumLivenessClient).RegisterSequencer("cluster-1")
	assert.ErrorIs(t, err, ErrNoTransactOpts)
}
