package api

import (
	"context"

	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// InternalAPI is the operator surface of the seeder.
type InternalAPI interface {
	AddSequencingInfo(ctx context.Context, params *handlers.AddSequencingInfoParams) error
	GetSequencingInfo(ctx context.Context, key interfaces.SequencingInfoKey) (*interfaces.SequencingInfoPayload, error)
	GetSequencingInfos(ctx context.Context) (map[interfaces.SequencingInfoKey]interfaces.SequencingInfoPayload, error)
	AddRollup(ctx context.Context, msg *handlers.AddRollupMessage) error
}

// RegistrationProvider lets a node operator publish and withdraw its endpoints.
// Messages are signed by the implementation before they are sent.
type RegistrationProvider interface {
	RegisterSequencer(ctx context.Context, msg *handlers.RegisterSequencerMessage) error
	DeregisterSequencer(ctx context.Context, msg *handlers.DeregisterSequencerMessage) error
	UpdateSequencerRpcUrl(ctx context.Context, msg *handlers.UpdateSequencerRpcUrlMessage) error
	RegisterTxOrderer(ctx context.Context, msg *handlers.RegisterTxOrdererMessage) error
	DeregisterTxOrderer(ctx context.Context, msg *handlers.DeregisterTxOrdererMessage) error
	UpdateRollupRpcUrl(ctx context.Context, msg *handlers.UpdateRollupRpcUrlMessage) error
}

// DiscoveryProvider resolves node addresses and clusters to endpoints.
type DiscoveryProvider interface {
	GetSequencerRpcUrl(ctx context.Context, address interfaces.Address) (*handlers.RpcUrlEntry, error)
	GetSequencerRpcUrlList(ctx context.Context, addresses []interfaces.Address) ([]handlers.RpcUrlEntry, error)
	GetSequencerRpcUrlListAtBlockHeight(ctx context.Context, params *handlers.AtBlockHeightParams) (*handlers.GetSequencerRpcUrlListAtBlockHeightResponse, error)
	GetTxOrdererRpcUrl(ctx context.Context, address interfaces.Address) (*handlers.RpcUrlEntry, error)
	GetTxOrdererRpcUrlList(ctx context.Context, addresses []interfaces.Address) ([]handlers.RpcUrlEntry, error)
	GetTxOrdererRpcUrlListAtBlockHeight(ctx context.Context, params *handlers.AtBlockHeightParams) (*handlers.GetTxOrdererRpcUrlListAtBlockHeightResponse, error)
	GetTxOrdererRpcInfo(ctx context.Context, address interfaces.Address) (*interfaces.NodeRecord, error)
	GetTxOrdererRpcInfoList(ctx context.Context, addresses []interfaces.Address) ([]interfaces.NodeRecord, error)
	GetExecutorRpcUrlList(ctx context.Context, addresses []interfaces.Address) ([]handlers.ExecutorRpcUrlEntry, error)
	GetExecutorRpcInfoList(ctx context.Context, addresses []interfaces.Address) ([]interfaces.NodeRecord, error)
	GetClusterInfo(ctx context.Context, params *handlers.GetClusterInfoParams) (*interfaces.ClusterInfo, error)
}

// ExternalAPI is the public surface of the seeder.
type ExternalAPI interface {
	RegistrationProvider
	DiscoveryProvider
}
