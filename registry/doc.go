// Package registry holds the in-memory state shared by all seeder RPC handlers.
//
// A Registry keeps four independent caches: backend configurations keyed by
// SequencingInfoKey, the liveness client of each backend, the signer used per
// platform and the locally known membership of each cluster. Each cache is an
// immutable map snapshot behind an atomic pointer. Readers never lock; writers
// clone the snapshot, modify the clone and publish it with compare-and-swap,
// so writers to different keys never wait on one another's critical section.
//
// Backend configurations and liveness clients are add-only. Adding a key
// twice fails with interfaces.ErrPublisherAlreadyExists so a contract address
// cannot be rotated under live traffic. GetLivenessClient never constructs a
// client; construction happens once in Bootstrap or in the add_sequencing_info
// handler.
//
// Usage:
//
//	reg := registry.NewRegistry(log)
//	if err := reg.Bootstrap(ctx, store, liveness.NewClientFactory(reg, log)); err != nil {
//	    return err
//	}
//	client, err := reg.GetLivenessClient(key)
package registry
