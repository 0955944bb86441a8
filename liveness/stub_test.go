package liveness

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubLivenessClient_History(t *testing.T) {
	stub := NewStubLivenessClient(testKey)
	ctx := context.Background()
	a := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	b := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	stub.SetMembers(interfaces.SequencerNode, "c1", 20, a, b)
	stub.SetMembers(interfaces.SequencerNode, "c1", 10, a)
	stub.SetMembers(interfaces.SequencerNode, "c1", 30, b)

	tests := []struct {
		block uint64
		want  []common.Address
	}{
		{block: 5, want: []common.Address{}},
		{block: 10, want: []common.Address{a}},
		{block: 19, want: []common.Address{a}},
		{block: 20, want: []common.Address{a, b}},
		{block: 100, want: []common.Address{b}},
	}
	for _, tt := range tests {
		got, err := stub.SequencerList(ctx, "c1", tt.block)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "block %d", tt.block)
	}

	// Tx orderer lists are independent
	orderers, err := stub.TxOrdererList(ctx, "c1", 100)
	require.NoError(t, err)
	assert.Empty(t, orderers)

	stub.SetError(errors.New("down"))
	_, err = stub.BlockNumber(ctx)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}

func TestStubClientFactory(t *testing.T) {
	factory := NewStubClientFactory()
	ctx := context.Background()
	payload := &interfaces.SequencingInfoPayload{
		LivenessRpcUrl:  "http://chain:8545",
		ContractAddress: "0x3333333333333333333333333333333333333333",
	}

	preconfigured := factory.Client(testKey)
	client, err := factory.LivenessClientFor(ctx, testKey, payload)
	require.NoError(t, err)
	assert.Same(t, preconfigured, client)
	assert.Equal(t, 1, factory.Constructions(testKey))

	localKey := interfaces.NewSequencingInfoKey(interfaces.PlatformLocal, "", interfaces.ServiceProviderLocal)
	_, err = factory.LivenessClientFor(ctx, localKey, payload)
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedPlatform)
}
