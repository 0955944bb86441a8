package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/storage"
)

// rpcUrlEntry looks up one node record. A missing record yields a nil RpcUrl.
func (h *Handler) rpcUrlEntry(kind interfaces.NodeKind, address interfaces.Address) (RpcUrlEntry, error) {
	record, err := storage.Get[interfaces.NodeRecord](h.store, storage.NodeRecordKey(kind, address))
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		return RpcUrlEntry{Address: address}, nil
	} else if err != nil {
		return RpcUrlEntry{}, err
	}
	return RpcUrlEntry{
		Address: address,
		RpcUrl: &RpcUrl{
			ExternalRpcUrl: record.ExternalRpcUrl,
			ClusterRpcUrl:  record.ClusterRpcUrl,
		},
	}, nil
}

func (h *Handler) rpcUrlList(kind interfaces.NodeKind, addresses []interfaces.Address) ([]RpcUrlEntry, error) {
	entries := make([]RpcUrlEntry, 0, len(addresses))
	for _, address := range addresses {
		entry, err := h.rpcUrlEntry(kind, address)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// rpcUrlListAtBlockHeight re-derives the member list at height from the
// contract and joins it with the locally known endpoints.
func (h *Handler) rpcUrlListAtBlockHeight(ctx context.Context, kind interfaces.NodeKind, p *AtBlockHeightParams) ([]RpcUrlEntry, uint64, error) {
	backend := backendRef{Platform: p.Platform, ServiceProvider: p.ServiceProvider}
	if err := backend.validate(); err != nil {
		return nil, 0, err
	}
	if err := validateCluster(p.ClusterID); err != nil {
		return nil, 0, err
	}
	height, err := p.height()
	if err != nil {
		return nil, 0, err
	}

	client, err := h.livenessClient(backend)
	if err != nil {
		return nil, 0, err
	}
	members, err := interfaces.MemberList(ctx, client, kind, interfaces.ClusterID(p.ClusterID), height)
	if err != nil {
		return nil, 0, err
	}

	addresses := make([]interfaces.Address, len(members))
	for i, member := range members {
		addresses[i] = interfaces.Address(member)
	}
	entries, err := h.rpcUrlList(kind, addresses)
	if err != nil {
		return nil, 0, err
	}
	return entries, height, nil
}

func (h *Handler) GetSequencerRpcUrl(ctx context.Context, p *GetRpcUrlParams) (any, error) {
	entry, err := h.rpcUrlEntry(interfaces.SequencerNode, p.Address)
	if err != nil {
		return nil, err
	}
	return &GetSequencerRpcUrlResponse{SequencerRpcUrl: entry}, nil
}

func (h *Handler) GetSequencerRpcUrlList(ctx context.Context, p *GetSequencerRpcUrlListParams) (any, error) {
	entries, err := h.rpcUrlList(interfaces.SequencerNode, p.SequencerAddressList)
	if err != nil {
		return nil, err
	}
	return &GetSequencerRpcUrlListResponse{SequencerRpcUrlList: entries}, nil
}

func (h *Handler) GetSequencerRpcUrlListAtBlockHeight(ctx context.Context, p *AtBlockHeightParams) (any, error) {
	entries, height, err := h.rpcUrlListAtBlockHeight(ctx, interfaces.SequencerNode, p)
	if err != nil {
		return nil, err
	}
	return &GetSequencerRpcUrlListAtBlockHeightResponse{SequencerRpcUrlList: entries, BlockHeight: height}, nil
}

func (h *Handler) GetTxOrdererRpcUrl(ctx context.Context, p *GetRpcUrlParams) (any, error) {
	entry, err := h.rpcUrlEntry(interfaces.TxOrdererNode, p.Address)
	if err != nil {
		return nil, err
	}
	return &GetTxOrdererRpcUrlResponse{TxOrdererRpcUrl: entry}, nil
}

func (h *Handler) GetTxOrdererRpcUrlList(ctx context.Context, p *TxOrdererAddressListParams) (any, error) {
	entries, err := h.rpcUrlList(interfaces.TxOrdererNode, p.TxOrdererAddressList)
	if err != nil {
		return nil, err
	}
	return &GetTxOrdererRpcUrlListResponse{TxOrdererRpcUrlList: entries}, nil
}

func (h *Handler) GetTxOrdererRpcUrlListAtBlockHeight(ctx context.Context, p *AtBlockHeightParams) (any, error) {
	entries, height, err := h.rpcUrlListAtBlockHeight(ctx, interfaces.TxOrdererNode, p)
	if err != nil {
		return nil, err
	}
	return &GetTxOrdererRpcUrlListAtBlockHeightResponse{TxOrdererRpcUrlList: entries, BlockHeight: height}, nil
}

// rpcInfoList returns the full records of the known addresses and skips the
// unknown ones.
func (h *Handler) rpcInfoList(kind interfaces.NodeKind, addresses []interfaces.Address) ([]interfaces.NodeRecord, error) {
	infos := make([]interfaces.NodeRecord, 0, len(addresses))
	for _, address := range addresses {
		record, err := storage.Get[interfaces.NodeRecord](h.store, storage.NodeRecordKey(kind, address))
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		infos = append(infos, *record)
	}
	return infos, nil
}

// GetTxOrdererRpcInfo returns the full record of one transaction orderer.
func (h *Handler) GetTxOrdererRpcInfo(ctx context.Context, p *GetTxOrdererRpcInfoParams) (any, error) {
	record, err := storage.Get[interfaces.NodeRecord](h.store, storage.NodeRecordKey(interfaces.TxOrdererNode, p.TxOrdererAddress))
	if err != nil {
		return nil, fmt.Errorf("tx orderer %s: %w", p.TxOrdererAddress.Hex(), err)
	}
	return &GetTxOrdererRpcInfoResponse{TxOrdererRpcInfo: *record}, nil
}

func (h *Handler) GetTxOrdererRpcInfoList(ctx context.Context, p *TxOrdererAddressListParams) (any, error) {
	infos, err := h.rpcInfoList(interfaces.TxOrdererNode, p.TxOrdererAddressList)
	if err != nil {
		return nil, err
	}
	return &GetTxOrdererRpcInfoListResponse{TxOrdererRpcInfoList: infos}, nil
}

func (h *Handler) GetExecutorRpcUrlList(ctx context.Context, p *GetExecutorRpcUrlListParams) (any, error) {
	entries := make([]ExecutorRpcUrlEntry, 0, len(p.ExecutorAddressList))
	for _, address := range p.ExecutorAddressList {
		entry := ExecutorRpcUrlEntry{Address: address}
		record, err := storage.Get[interfaces.NodeRecord](h.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, address))
		if err == nil {
			entry.RpcUrl = &record.ExternalRpcUrl
		} else if !errors.Is(err, interfaces.ErrRecordNotFound) {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return &GetExecutorRpcUrlListResponse{ExecutorRpcUrlList: entries}, nil
}

func (h *Handler) GetExecutorRpcInfoList(ctx context.Context, p *GetExecutorRpcUrlListParams) (any, error) {
	infos, err := h.rpcInfoList(interfaces.RollupExecutorNode, p.ExecutorAddressList)
	if err != nil {
		return nil, err
	}
	return &GetExecutorRpcInfoListResponse{ExecutorRpcInfoList: infos}, nil
}

// GetClusterInfo returns the locally known membership of a cluster.
func (h *Handler) GetClusterInfo(ctx context.Context, p *GetClusterInfoParams) (any, error) {
	backend := backendRef{Platform: p.Platform, ServiceProvider: p.ServiceProvider}
	if err := backend.validate(); err != nil {
		return nil, err
	}
	if err := validateCluster(p.ClusterID); err != nil {
		return nil, err
	}
	return h.clusterInfo(backend.key(), interfaces.ClusterID(p.ClusterID))
}
