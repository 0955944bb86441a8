package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/sequencer-seeder/healthcheck"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/liveness"
	"github.com/ruteri/sequencer-seeder/registry"
	"github.com/ruteri/sequencer-seeder/signature"
	"github.com/ruteri/sequencer-seeder/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newMockedHandler wires a handler whose radius backend is a testify mock.
func newMockedHandler(t *testing.T) (*Handler, *liveness.MockLivenessClient) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine, err := storage.NewMemoryEngine()
	require.NoError(t, err)
	store := storage.NewRecordStore(engine, logger)
	t.Cleanup(func() { store.Close() })

	client := new(liveness.MockLivenessClient)
	factory := new(liveness.MockClientFactory)
	factory.On("LivenessClientFor", mock.Anything, radiusKey, mock.Anything).Return(client, nil).Once()

	handler := NewHandler(registry.NewRegistry(logger), store, factory, healthcheck.NoopHealthChecker{}, signature.NewVerifier(), logger)
	_, err = handler.AddSequencingInfo(context.Background(), &AddSequencingInfoParams{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		Payload: interfaces.SequencingInfoPayload{
			LivenessRpcUrl:  "http://chain:8545",
			ContractAddress: "0x1111111111111111111111111111111111111111",
		},
	})
	require.NoError(t, err)
	factory.AssertExpectations(t)
	return handler, client
}

func TestMembershipQueryHeights(t *testing.T) {
	handler, client := newMockedHandler(t)
	ctx := context.Background()
	node := newSigner(t)
	cluster := interfaces.ClusterID(testCluster)

	client.On("BlockNumber", mock.Anything).Return(uint64(1000), nil)
	client.On("BlockMargin", mock.Anything).Return(uint64(64), nil)

	// Registration reads the member list at head
	client.On("SequencerList", mock.Anything, cluster, uint64(1000)).Return([]common.Address{member(node)}, nil).Once()
	_, err := handler.RegisterSequencer(ctx, sign(t, node, RegisterSequencerMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         node.Address(),
		ExternalRpcUrl:  "http://node:8000",
	}))
	require.NoError(t, err)

	// Deregistration reads it at head minus the block margin
	client.On("SequencerList", mock.Anything, cluster, uint64(936)).Return([]common.Address{}, nil).Once()
	_, err = handler.DeregisterSequencer(ctx, sign(t, node, DeregisterSequencerMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         node.Address(),
	}))
	require.NoError(t, err)

	// Tx orderers are checked against their own list
	client.On("TxOrdererList", mock.Anything, cluster, uint64(1000)).Return([]common.Address{member(node)}, nil).Once()
	_, err = handler.RegisterTxOrderer(ctx, sign(t, node, RegisterTxOrdererMessage{
		Platform:         interfaces.PlatformEthereum,
		ServiceProvider:  interfaces.ServiceProviderRadius,
		ClusterID:        testCluster,
		TxOrdererAddress: node.Address(),
		ExternalRpcUrl:   "http://node:8000",
	}))
	require.NoError(t, err)

	client.AssertExpectations(t)
}
