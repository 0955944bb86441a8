package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/storage"
)

// Bootstrap replays the persisted backend list into the registry, constructing
// one liveness client per backend. It is called once before serving requests.
func (r *Registry) Bootstrap(ctx context.Context, store *storage.RecordStore, factory interfaces.LivenessClientFactory) error {
	list, err := storage.GetOrDefault(store, storage.SequencingInfoListKey(), func() *storage.SequencingInfoList {
		return &storage.SequencingInfoList{}
	})
	if err != nil {
		return fmt.Errorf("failed to load sequencing info list: %w", err)
	}

	for _, key := range list.Keys {
		payload, err := storage.Get[interfaces.SequencingInfoPayload](store, storage.SequencingInfoPayloadKey(key))
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			r.log.Warn("sequencing info listed but not stored, skipping", "key", key.String())
			continue
		} else if err != nil {
			return fmt.Errorf("failed to load sequencing info %s: %w", key, err)
		}

		if err := r.AddSequencingInfo(key, payload); err != nil {
			return err
		}

		client, err := factory.LivenessClientFor(ctx, key, payload)
		if err != nil {
			return fmt.Errorf("failed to create liveness client for %s: %w", key, err)
		}
		if err := r.AddLivenessClient(key, client); err != nil {
			return err
		}

		r.log.Info("sequencing info restored",
			"key", key.String(),
			"rpcUrl", payload.LivenessRpcUrl,
			"contract", payload.ContractAddress)
	}

	return nil
}
