package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// LivenessClient reads cluster membership from one liveness contract.
// All chain errors are wrapped with ErrBackendUnavailable.
type LivenessClient interface {
	// Key returns the backend this client was built for.
	Key() SequencingInfoKey

	// BlockNumber returns the current chain head seen by the backend RPC endpoint.
	BlockNumber(ctx context.Context) (uint64, error)

	// BlockMargin returns the confirmation lag required before trusting a
	// membership change.
	BlockMargin(ctx context.Context) (uint64, error)

	// SequencerList returns the sequencer members of a cluster at a block height.
	SequencerList(ctx context.Context, cluster ClusterID, blockNumber uint64) ([]common.Address, error)

	// TxOrdererList returns the transaction orderer members of a cluster at a block height.
	TxOrdererList(ctx context.Context, cluster ClusterID, blockNumber uint64) ([]common.Address, error)
}

// LivenessClientFactory constructs liveness clients from persisted backend configuration.
type LivenessClientFactory interface {
	LivenessClientFor(ctx context.Context, key SequencingInfoKey, payload *SequencingInfoPayload) (LivenessClient, error)
}

// MemberList dispatches to the contract list that tracks the given node kind.
func MemberList(ctx context.Context, client LivenessClient, kind NodeKind, cluster ClusterID, blockNumber uint64) ([]common.Address, error) {
	switch kind {
	case TxOrdererNode:
		return client.TxOrdererList(ctx, cluster, blockNumber)
	default:
		return client.SequencerList(ctx, cluster, blockNumber)
	}
}

// HealthChecker probes a node's externally reachable RPC endpoint.
type HealthChecker interface {
	Check(ctx context.Context, rpcURL string) error
}
