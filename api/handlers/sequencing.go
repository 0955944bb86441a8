package handlers

import (
	"context"
	"fmt"

	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/metrics"
	"github.com/ruteri/sequencer-seeder/storage"
)

// AddSequencingInfo configures a new backend. The payload is persisted, its
// liveness client is constructed once and both are added to the registry.
// A backend can be added only once.
func (h *Handler) AddSequencingInfo(ctx context.Context, p *AddSequencingInfoParams) (any, error) {
	if err := (backendRef{Platform: p.Platform, ServiceProvider: p.ServiceProvider}).validate(); err != nil {
		return nil, err
	}
	if err := p.Payload.Validate(p.Platform); err != nil {
		return nil, jsonrpc.InvalidParams(err)
	}
	key := p.key()

	// The list guard serialises all backend additions
	list, err := storage.GetForUpdate[storage.SequencingInfoList](ctx, h.store, storage.SequencingInfoListKey())
	if err != nil {
		return nil, err
	}
	defer list.Rollback()

	if _, err := h.registry.GetSequencingInfo(key); err == nil {
		h.log.Error("publisher already exists", "key", key.String())
		return nil, fmt.Errorf("%w: %s", interfaces.ErrPublisherAlreadyExists, key)
	}

	client, err := h.factory.LivenessClientFor(ctx, key, &p.Payload)
	if err != nil {
		return nil, err
	}

	if err := storage.Put(ctx, h.store, storage.SequencingInfoPayloadKey(key), &p.Payload); err != nil {
		return nil, err
	}
	list.Value.Insert(key)
	if err := list.Commit(); err != nil {
		return nil, err
	}

	if err := h.registry.AddSequencingInfo(key, &p.Payload); err != nil {
		return nil, err
	}
	if err := h.registry.AddLivenessClient(key, client); err != nil {
		return nil, err
	}
	metrics.SequencingInfos.Set(float64(len(h.registry.SequencingInfos())))

	h.log.Info("sequencing info added",
		"key", key.String(),
		"rpcUrl", p.Payload.LivenessRpcUrl,
		"contract", p.Payload.ContractAddress)
	return nil, nil
}

func (h *Handler) GetSequencingInfo(ctx context.Context, p *GetSequencingInfoParams) (any, error) {
	if err := (backendRef{Platform: p.Platform, ServiceProvider: p.ServiceProvider}).validate(); err != nil {
		return nil, err
	}
	payload, err := h.registry.GetSequencingInfo(interfaces.NewSequencingInfoKey(p.Platform, p.SequencingFunctionType, p.ServiceProvider))
	if err != nil {
		return nil, err
	}
	return &GetSequencingInfoResponse{SequencingInfoPayload: payload}, nil
}

func (h *Handler) GetSequencingInfos(ctx context.Context, _ *struct{}) (any, error) {
	return &GetSequencingInfosResponse{SequencingInfos: h.registry.SequencingInfos()}, nil
}

// AddRollup records the endpoint of a rollup executor. Executors are not
// liveness contract members, so only the signature, the backend and the
// endpoint health are checked. An existing record is overwritten.
func (h *Handler) AddRollup(ctx context.Context, p *Signed[AddRollupMessage]) (any, error) {
	msg := &p.Message
	backend := backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider}
	if err := backend.validate(); err != nil {
		return nil, err
	}
	if err := validateCluster(msg.ClusterID); err != nil {
		return nil, err
	}
	if err := validateRpcUrl("rpc_url", msg.RpcUrl, true); err != nil {
		return nil, err
	}

	err := h.addRollup(ctx, backend, msg, p.Signature)
	metrics.ObserveRegistration(interfaces.RollupExecutorNode.String(), "add", err)
	return nil, err
}

func (h *Handler) addRollup(ctx context.Context, backend backendRef, msg *AddRollupMessage, signature interfaces.Signature) error {
	if err := h.verify(msg.Platform, msg, signature, msg.Address); err != nil {
		return err
	}

	if backend.Platform != interfaces.PlatformEthereum {
		return fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, backend.Platform)
	}
	if _, err := h.registry.GetSequencingInfo(backend.key()); err != nil {
		return err
	}

	if err := h.checkHealth(ctx, msg.RpcUrl); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	guard, err := storage.GetForUpdate[interfaces.NodeRecord](ctx, h.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, msg.Address))
	if err != nil {
		return err
	}
	defer guard.Rollback()

	if guard.Found {
		h.log.Warn("rollup executor already added, overwriting", "address", msg.Address.Hex(), "previousRpcUrl", guard.Value.ExternalRpcUrl)
	}
	guard.Value.Address = msg.Address
	guard.Value.ExternalRpcUrl = msg.RpcUrl
	guard.Value.ClusterRpcUrl = ""
	if err := guard.Commit(); err != nil {
		return err
	}

	h.log.Info("rollup executor added", "address", msg.Address.Hex(), "cluster", msg.ClusterID, "rpcUrl", msg.RpcUrl)
	return nil
}

// UpdateRollupRpcUrl replaces the endpoint of an executor added with
// add_rollup. The executor must already be known.
func (h *Handler) UpdateRollupRpcUrl(ctx context.Context, p *Signed[UpdateRollupRpcUrlMessage]) (any, error) {
	msg := &p.Message
	backend := backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider}
	if err := backend.validate(); err != nil {
		return nil, err
	}
	if err := validateCluster(msg.ClusterID); err != nil {
		return nil, err
	}
	if err := validateRpcUrl("rpc_url", msg.RpcUrl, true); err != nil {
		return nil, err
	}

	err := h.updateRollupRpcUrl(ctx, backend, msg, p.Signature)
	metrics.ObserveRegistration(interfaces.RollupExecutorNode.String(), "update", err)
	return nil, err
}

func (h *Handler) updateRollupRpcUrl(ctx context.Context, backend backendRef, msg *UpdateRollupRpcUrlMessage, signature interfaces.Signature) error {
	if err := h.verify(msg.Platform, msg, signature, msg.Address); err != nil {
		return err
	}

	if backend.Platform != interfaces.PlatformEthereum {
		return fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, backend.Platform)
	}
	if _, err := h.registry.GetSequencingInfo(backend.key()); err != nil {
		return err
	}

	if err := h.checkHealth(ctx, msg.RpcUrl); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	guard, err := storage.GetForUpdate[interfaces.NodeRecord](ctx, h.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, msg.Address))
	if err != nil {
		return err
	}
	defer guard.Rollback()

	if !guard.Found {
		return fmt.Errorf("rollup executor %s: %w", msg.Address.Hex(), interfaces.ErrRecordNotFound)
	}
	previous := guard.Value.ExternalRpcUrl
	guard.Value.ExternalRpcUrl = msg.RpcUrl
	if err := guard.Commit(); err != nil {
		return err
	}

	h.log.Info("rollup executor rpc url updated", "address", msg.Address.Hex(), "previousRpcUrl", previous, "rpcUrl", msg.RpcUrl)
	return nil
}
