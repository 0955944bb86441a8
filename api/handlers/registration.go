package handlers

import (
	"context"
	"errors"

	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/metrics"
	"github.com/ruteri/sequencer-seeder/storage"
)

// registration is the node-kind independent form of a register, deregister
// or update request.
type registration struct {
	kind           interfaces.NodeKind
	backend        backendRef
	cluster        interfaces.ClusterID
	address        interfaces.Address
	externalRpcUrl string
	clusterRpcUrl  string
}

// register admits a node whose membership the liveness contract confirms at
// the current head and whose endpoint answers a health probe. An existing
// record for the address is overwritten.
func (h *Handler) register(ctx context.Context, r *registration) error {
	client, err := h.livenessClient(r.backend)
	if err != nil {
		return err
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return err
	}
	members, err := interfaces.MemberList(ctx, client, r.kind, r.cluster, head)
	if err != nil {
		return err
	}
	if !interfaces.ContainsAddress(members, r.address) {
		h.log.Info("registration rejected, not a contract member",
			"kind", r.kind.String(), "address", r.address.Hex(), "cluster", r.cluster, "block", head)
		return interfaces.ErrNotRegisteredInContract
	}

	if err := h.checkHealth(ctx, r.externalRpcUrl); err != nil {
		return err
	}

	// Once admitted, the write-through is not cut short by the caller
	ctx = context.WithoutCancel(ctx)

	guard, err := storage.GetForUpdate[interfaces.NodeRecord](ctx, h.store, storage.NodeRecordKey(r.kind, r.address))
	if err != nil {
		return err
	}
	defer guard.Rollback()

	guard.Value.Address = r.address
	guard.Value.ExternalRpcUrl = r.externalRpcUrl
	guard.Value.ClusterRpcUrl = r.clusterRpcUrl
	if err := guard.Commit(); err != nil {
		return err
	}

	err = h.updateClusterInfo(ctx, r.backend.key(), r.cluster, func(info *interfaces.ClusterInfo) bool {
		info.Upsert(r.kind, interfaces.ClusterMember{Address: r.address, RpcUrl: r.externalRpcUrl})
		return true
	})
	if err != nil {
		return err
	}

	h.log.Info("node registered",
		"kind", r.kind.String(),
		"address", r.address.Hex(),
		"cluster", r.cluster,
		"externalRpcUrl", r.externalRpcUrl,
		"block", head)
	return nil
}

// deregister removes a node the liveness contract no longer lists at the
// finalized height, head minus the block margin. A missing record counts as
// already deregistered.
func (h *Handler) deregister(ctx context.Context, r *registration) error {
	client, err := h.livenessClient(r.backend)
	if err != nil {
		return err
	}

	target, err := finalizedBlock(ctx, client)
	if err != nil {
		return err
	}
	members, err := interfaces.MemberList(ctx, client, r.kind, r.cluster, target)
	if err != nil {
		return err
	}
	if interfaces.ContainsAddress(members, r.address) {
		h.log.Info("deregistration rejected, still a contract member",
			"kind", r.kind.String(), "address", r.address.Hex(), "cluster", r.cluster, "block", target)
		return interfaces.ErrNotDeregisteredFromContract
	}

	ctx = context.WithoutCancel(ctx)

	err = storage.Delete(ctx, h.store, storage.NodeRecordKey(r.kind, r.address))
	if errors.Is(err, interfaces.ErrRecordNotFound) {
		h.log.Warn("deregistering unknown node", "kind", r.kind.String(), "address", r.address.Hex())
	} else if err != nil {
		return err
	}

	err = h.updateClusterInfo(ctx, r.backend.key(), r.cluster, func(info *interfaces.ClusterInfo) bool {
		return info.Remove(r.kind, r.address)
	})
	if err != nil {
		return err
	}

	h.log.Info("node deregistered",
		"kind", r.kind.String(),
		"address", r.address.Hex(),
		"cluster", r.cluster,
		"block", target)
	return nil
}

// updateRpcUrl replaces the external endpoint of an already registered node.
func (h *Handler) updateRpcUrl(ctx context.Context, r *registration) error {
	client, err := h.livenessClient(r.backend)
	if err != nil {
		return err
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return err
	}
	members, err := interfaces.MemberList(ctx, client, r.kind, r.cluster, head)
	if err != nil {
		return err
	}
	if !interfaces.ContainsAddress(members, r.address) {
		return interfaces.ErrNotRegisteredInContract
	}

	if err := h.checkHealth(ctx, r.externalRpcUrl); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	guard, err := storage.GetForUpdate[interfaces.NodeRecord](ctx, h.store, storage.NodeRecordKey(r.kind, r.address))
	if err != nil {
		return err
	}
	defer guard.Rollback()

	if !guard.Found {
		return interfaces.ErrRecordNotFound
	}
	guard.Value.ExternalRpcUrl = r.externalRpcUrl
	if err := guard.Commit(); err != nil {
		return err
	}

	err = h.updateClusterInfo(ctx, r.backend.key(), r.cluster, func(info *interfaces.ClusterInfo) bool {
		info.Upsert(r.kind, interfaces.ClusterMember{Address: r.address, RpcUrl: r.externalRpcUrl})
		return true
	})
	if err != nil {
		return err
	}

	h.log.Info("node rpc url updated", "kind", r.kind.String(), "address", r.address.Hex(), "externalRpcUrl", r.externalRpcUrl)
	return nil
}

// finalizedBlock returns head minus the block margin, saturating at zero.
func finalizedBlock(ctx context.Context, client interfaces.LivenessClient) (uint64, error) {
	head, err := client.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	margin, err := client.BlockMargin(ctx)
	if err != nil {
		return 0, err
	}
	if margin > head {
		return 0, nil
	}
	return head - margin, nil
}

func (h *Handler) RegisterSequencer(ctx context.Context, p *Signed[RegisterSequencerMessage]) (any, error) {
	msg := &p.Message
	r := &registration{
		kind:           interfaces.SequencerNode,
		backend:        backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider},
		cluster:        interfaces.ClusterID(msg.ClusterID),
		address:        msg.Address,
		externalRpcUrl: msg.ExternalRpcUrl,
		clusterRpcUrl:  msg.ClusterRpcUrl,
	}
	if err := r.validateRegister(); err != nil {
		return nil, err
	}
	if err := h.verify(msg.Platform, msg, p.Signature, msg.Address); err != nil {
		return nil, err
	}

	err := h.register(ctx, r)
	metrics.ObserveRegistration(r.kind.String(), "register", err)
	return nil, err
}

func (h *Handler) DeregisterSequencer(ctx context.Context, p *Signed[DeregisterSequencerMessage]) (any, error) {
	msg := &p.Message
	r := &registration{
		kind:    interfaces.SequencerNode,
		backend: backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider},
		cluster: interfaces.ClusterID(msg.ClusterID),
		address: msg.Address,
	}
	if err := r.validateDeregister(); err != nil {
		return nil, err
	}
	if err := h.verify(msg.Platform, msg, p.Signature, msg.Address); err != nil {
		return nil, err
	}

	err := h.deregister(ctx, r)
	metrics.ObserveRegistration(r.kind.String(), "deregister", err)
	return nil, err
}

func (h *Handler) UpdateSequencerRpcUrl(ctx context.Context, p *Signed[UpdateSequencerRpcUrlMessage]) (any, error) {
	msg := &p.Message
	r := &registration{
		kind:           interfaces.SequencerNode,
		backend:        backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider},
		cluster:        interfaces.ClusterID(msg.ClusterID),
		address:        msg.Address,
		externalRpcUrl: msg.RpcUrl,
	}
	if err := r.validateDeregister(); err != nil {
		return nil, err
	}
	if err := validateRpcUrl("rpc_url", msg.RpcUrl, true); err != nil {
		return nil, err
	}
	if err := h.verify(msg.Platform, msg, p.Signature, msg.Address); err != nil {
		return nil, err
	}

	err := h.updateRpcUrl(ctx, r)
	metrics.ObserveRegistration(r.kind.String(), "update", err)
	return nil, err
}

func (h *Handler) RegisterTxOrderer(ctx context.Context, p *Signed[RegisterTxOrdererMessage]) (any, error) {
	msg := &p.Message
	r := &registration{
		kind:           interfaces.TxOrdererNode,
		backend:        backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider},
		cluster:        interfaces.ClusterID(msg.ClusterID),
		address:        msg.TxOrdererAddress,
		externalRpcUrl: msg.ExternalRpcUrl,
		clusterRpcUrl:  msg.ClusterRpcUrl,
	}
	if err := r.validateRegister(); err != nil {
		return nil, err
	}
	if err := h.verify(msg.Platform, msg, p.Signature, msg.TxOrdererAddress); err != nil {
		return nil, err
	}

	err := h.register(ctx, r)
	metrics.ObserveRegistration(r.kind.String(), "register", err)
	return nil, err
}

func (h *Handler) DeregisterTxOrderer(ctx context.Context, p *Signed[DeregisterTxOrdererMessage]) (any, error) {
	msg := &p.Message
	r := &registration{
		kind:    interfaces.TxOrdererNode,
		backend: backendRef{Platform: msg.Platform, ServiceProvider: msg.ServiceProvider},
		cluster: interfaces.ClusterID(msg.ClusterID),
		address: msg.TxOrdererAddress,
	}
	if err := r.validateDeregister(); err != nil {
		return nil, err
	}
	if err := h.verify(msg.Platform, msg, p.Signature, msg.TxOrdererAddress); err != nil {
		return nil, err
	}

	err := h.deregister(ctx, r)
	metrics.ObserveRegistration(r.kind.String(), "deregister", err)
	return nil, err
}

func (r *registration) validateDeregister() error {
	if err := r.backend.validate(); err != nil {
		return err
	}
	return validateCluster(string(r.cluster))
}

func (r *registration) validateRegister() error {
	if err := r.validateDeregister(); err != nil {
		return err
	}
	if err := validateRpcUrl("external_rpc_url", r.externalRpcUrl, true); err != nil {
		return err
	}
	return validateRpcUrl("cluster_rpc_url", r.clusterRpcUrl, false)
}
