// Package storage provides the seeder's Record Store: typed, CBOR-encoded
// records on top of a pluggable key-value engine.
//
// # Engine URI Format
//
// Engines are specified using URI format:
//
//	[scheme]://[host][/path]
//
// Supported URI schemes:
//
//   - leveldb:///var/lib/seeder/database
//   - bolt:///var/lib/seeder/records.db
//   - memory://
//
// # Keys
//
// Every record is addressed by a Key: a stable kind tag followed by identity
// fields, for example SequencerNodeInfo/<address> or
// ClusterInfo/<platform>/<function>/<provider>/<cluster_id>. Singleton records
// such as SequencingInfoList carry no identity fields.
//
// # Operations
//
//	Get[T](store, key)                 // exact get, ErrRecordNotFound if absent
//	GetOrDefault[T](store, key, def)   // get with default
//	GetForUpdate[T](ctx, store, key)   // exclusive guard, Commit/Delete/Rollback
//	Put[T](ctx, store, key, value)     // unconditional overwrite
//	Delete(ctx, store, key)            // ErrRecordNotFound if absent
//
// Only one guard per key can be held at a time; Put and Delete wait for it as
// well. A guard that is never committed leaves the stored value untouched:
//
//	guard, err := storage.GetForUpdate[interfaces.NodeRecord](ctx, store, key)
//	if err != nil {
//	    return err
//	}
//	defer guard.Rollback()
//	guard.Value.ExternalRpcUrl = url
//	return guard.Commit()
package storage
