package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/metrics"
	"github.com/ruteri/sequencer-seeder/registry"
	"github.com/ruteri/sequencer-seeder/storage"
)

// Handler implements the seeder's RPC methods on top of the shared registry
// state, the record store and the liveness backends.
type Handler struct {
	registry *registry.Registry
	store    *storage.RecordStore
	factory  interfaces.LivenessClientFactory
	checker  interfaces.HealthChecker
	verifier interfaces.MessageVerifier
	log      *slog.Logger
}

// NewHandler creates a handler with the specified dependencies.
//
// Parameters:
//   - reg: Registry core holding backends, liveness clients and cluster caches
//   - store: Record store for node records and backend configuration
//   - factory: Constructs liveness clients for newly added backends
//   - checker: Probes endpoints before they are registered
//   - verifier: Verifies signed messages
//   - log: Structured logger
func NewHandler(reg *registry.Registry, store *storage.RecordStore, factory interfaces.LivenessClientFactory, checker interfaces.HealthChecker, verifier interfaces.MessageVerifier, log *slog.Logger) *Handler {
	return &Handler{
		registry: reg,
		store:    store,
		factory:  factory,
		checker:  checker,
		verifier: verifier,
		log:      log,
	}
}

// verify checks that the message was signed by address.
func (h *Handler) verify(platform interfaces.Platform, message any, signature interfaces.Signature, address interfaces.Address) error {
	if err := h.verifier.VerifyMessage(platform, message, signature, address); err != nil {
		h.log.Warn("rejected message with invalid signature", "address", address.Hex(), "err", err)
		return err
	}
	return nil
}

// livenessClient resolves the chain liveness client of a backend. Only the
// ethereum platform has membership to check against.
func (h *Handler) livenessClient(backend backendRef) (interfaces.LivenessClient, error) {
	if backend.Platform != interfaces.PlatformEthereum {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, backend.Platform)
	}
	return h.registry.GetLivenessClient(backend.key())
}

// checkHealth probes the endpoint a node claims to serve.
func (h *Handler) checkHealth(ctx context.Context, rpcURL string) error {
	err := h.checker.Check(ctx, rpcURL)
	metrics.ObserveHealthCheck(err)
	return err
}

// updateClusterInfo applies mutate to the persisted membership of a cluster
// and refreshes the registry cache with the result, both under the key lock.
func (h *Handler) updateClusterInfo(ctx context.Context, key interfaces.SequencingInfoKey, cluster interfaces.ClusterID, mutate func(info *interfaces.ClusterInfo) bool) error {
	guard, err := storage.GetForUpdate[interfaces.ClusterInfo](ctx, h.store, storage.ClusterInfoKey(key, cluster))
	if err != nil {
		return err
	}
	defer guard.Rollback()

	if !guard.Found {
		guard.Value.ClusterID = cluster
		guard.Value.Key = key
	}
	if !mutate(guard.Value) {
		return nil
	}
	return guard.CommitThen(h.registry.AddClusterInfo)
}

// clusterInfo returns the cached membership of a cluster, loading it from the
// store on a cache miss.
func (h *Handler) clusterInfo(key interfaces.SequencingInfoKey, cluster interfaces.ClusterID) (*interfaces.ClusterInfo, error) {
	if info, err := h.registry.GetClusterInfo(key, cluster); err == nil {
		return info, nil
	}

	info, err := storage.Get[interfaces.ClusterInfo](h.store, storage.ClusterInfoKey(key, cluster))
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", interfaces.ErrClusterInfoNotFound, key, cluster, err)
	}
	return h.registry.LoadClusterInfo(info), nil
}
