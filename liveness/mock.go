package liveness

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockLivenessClient mocks the LivenessClient interface
type MockLivenessClient struct {
	mock.Mock
}

// Key mocks the Key method
func (m *MockLivenessClient) Key() interfaces.SequencingInfoKey {
	args := m.Called()
	return args.Get(0).(interfaces.SequencingInfoKey)
}

// BlockNumber mocks the BlockNumber method
func (m *MockLivenessClient) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// BlockMargin mocks the BlockMargin method
func (m *MockLivenessClient) BlockMargin(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// SequencerList mocks the SequencerList method
func (m *MockLivenessClient) SequencerList(ctx context.Context, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	args := m.Called(ctx, cluster, blockNumber)
	return args.Get(0).([]common.Address), args.Error(1)
}

// TxOrdererList mocks the TxOrdererList method
func (m *MockLivenessClient) TxOrdererList(ctx context.Context, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	args := m.Called(ctx, cluster, blockNumber)
	return args.Get(0).([]common.Address), args.Error(1)
}

// MockClientFactory mocks the LivenessClientFactory interface
type MockClientFactory struct {
	mock.Mock
}

// LivenessClientFor mocks the LivenessClientFor method
func (m *MockClientFactory) LivenessClientFor(ctx context.Context, key interfaces.SequencingInfoKey, payload *interfaces.SequencingInfoPayload) (interfaces.LivenessClient, error) {
	args := m.Called(ctx, key, payload)
	client, _ := args.Get(0).(interfaces.LivenessClient)
	return client, args.Error(1)
}
