package registry

import (
	"fmt"
	"log/slog"

	"github.com/ruteri/sequencer-seeder/interfaces"
)

type clusterKey struct {
	key     interfaces.SequencingInfoKey
	cluster interfaces.ClusterID
}

// Registry is the process-wide state shared by every RPC handler: configured
// backends, their liveness clients, the per-platform signers and the locally
// known cluster memberships.
type Registry struct {
	sequencingInfos *cowMap[interfaces.SequencingInfoKey, interfaces.SequencingInfoPayload]
	livenessClients *cowMap[interfaces.SequencingInfoKey, interfaces.LivenessClient]
	signers         *cowMap[interfaces.Platform, interfaces.Signer]
	clusterInfos    *cowMap[clusterKey, *interfaces.ClusterInfo]
	log             *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		sequencingInfos: newCowMap[interfaces.SequencingInfoKey, interfaces.SequencingInfoPayload](),
		livenessClients: newCowMap[interfaces.SequencingInfoKey, interfaces.LivenessClient](),
		signers:         newCowMap[interfaces.Platform, interfaces.Signer](),
		clusterInfos:    newCowMap[clusterKey, *interfaces.ClusterInfo](),
		log:             log,
	}
}

// AddSequencingInfo records a backend configuration. A key can be added only once.
func (r *Registry) AddSequencingInfo(key interfaces.SequencingInfoKey, payload *interfaces.SequencingInfoPayload) error {
	return r.sequencingInfos.update(func(next map[interfaces.SequencingInfoKey]interfaces.SequencingInfoPayload) error {
		if _, ok := next[key]; ok {
			return fmt.Errorf("%w: %s", interfaces.ErrPublisherAlreadyExists, key)
		}
		next[key] = *payload
		return nil
	})
}

func (r *Registry) GetSequencingInfo(key interfaces.SequencingInfoKey) (*interfaces.SequencingInfoPayload, error) {
	payload, ok := r.sequencingInfos.get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrSequencingInfoNotFound, key)
	}
	return &payload, nil
}

// SequencingInfos returns a copy of every configured backend.
func (r *Registry) SequencingInfos() map[interfaces.SequencingInfoKey]interfaces.SequencingInfoPayload {
	snapshot := r.sequencingInfos.snapshot()
	infos := make(map[interfaces.SequencingInfoKey]interfaces.SequencingInfoPayload, len(snapshot))
	for k, v := range snapshot {
		infos[k] = v
	}
	return infos
}

// AddLivenessClient caches the client for its backend. Clients are never replaced.
func (r *Registry) AddLivenessClient(key interfaces.SequencingInfoKey, client interfaces.LivenessClient) error {
	return r.livenessClients.update(func(next map[interfaces.SequencingInfoKey]interfaces.LivenessClient) error {
		if _, ok := next[key]; ok {
			return fmt.Errorf("%w: liveness client for %s", interfaces.ErrPublisherAlreadyExists, key)
		}
		next[key] = client
		return nil
	})
}

// GetLivenessClient returns the cached client. It never constructs one.
func (r *Registry) GetLivenessClient(key interfaces.SequencingInfoKey) (interfaces.LivenessClient, error) {
	client, ok := r.livenessClients.get(key)
	if !ok {
		return nil, fmt.Errorf("%w: no liveness client for %s", interfaces.ErrSequencingInfoNotFound, key)
	}
	return client, nil
}

// AddSigner sets the signer this node publishes with on platform.
func (r *Registry) AddSigner(platform interfaces.Platform, signer interfaces.Signer) {
	_ = r.signers.update(func(next map[interfaces.Platform]interfaces.Signer) error {
		next[platform] = signer
		return nil
	})
}

func (r *Registry) GetSigner(platform interfaces.Platform) (interfaces.Signer, error) {
	signer, ok := r.signers.get(platform)
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrSignerNotFound, platform)
	}
	return signer, nil
}

// AddClusterInfo replaces the cached membership of one cluster.
func (r *Registry) AddClusterInfo(info *interfaces.ClusterInfo) {
	clone := info.Clone()
	ck := clusterKey{key: info.Key, cluster: info.ClusterID}
	_ = r.clusterInfos.update(func(next map[clusterKey]*interfaces.ClusterInfo) error {
		next[ck] = clone
		return nil
	})
}

// LoadClusterInfo caches info unless a membership for its cluster is already
// cached, and returns whichever is cached afterwards. Readers filling the
// cache from the store never replace a newer value published by a writer.
func (r *Registry) LoadClusterInfo(info *interfaces.ClusterInfo) *interfaces.ClusterInfo {
	clone := info.Clone()
	ck := clusterKey{key: info.Key, cluster: info.ClusterID}
	_ = r.clusterInfos.update(func(next map[clusterKey]*interfaces.ClusterInfo) error {
		if cached, ok := next[ck]; ok {
			clone = cached
			return nil
		}
		next[ck] = clone
		return nil
	})
	return clone.Clone()
}

// GetClusterInfo returns a copy of the cached membership of one cluster.
func (r *Registry) GetClusterInfo(key interfaces.SequencingInfoKey, cluster interfaces.ClusterID) (*interfaces.ClusterInfo, error) {
	info, ok := r.clusterInfos.get(clusterKey{key: key, cluster: cluster})
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", interfaces.ErrClusterInfoNotFound, key, cluster)
	}
	return info.Clone(), nil
}
