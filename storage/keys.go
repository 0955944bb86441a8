package storage

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// Record kind tags. They are part of the on-disk layout and must not change.
const (
	KindSequencerNodeInfo     = "SequencerNodeInfo"
	KindTxOrdererRpcInfo      = "TxOrdererRpcInfo"
	KindRollupNodeInfo        = "RollupNodeInfo"
	KindSequencingInfoPayload = "SequencingInfoPayload"
	KindSequencingInfoList    = "SequencingInfoList"
	KindClusterInfo           = "ClusterInfo"
)

// Key identifies one record: a kind tag followed by identity fields.
type Key struct {
	Kind   string
	Fields []string
}

// NewKey builds a key for the given kind.
func NewKey(kind string, fields ...string) Key {
	return Key{Kind: kind, Fields: fields}
}

// Bytes encodes the key as a CBOR array so identity fields containing
// separators cannot collide.
func (k Key) Bytes() []byte {
	parts := make([]string, 0, len(k.Fields)+1)
	parts = append(parts, k.Kind)
	parts = append(parts, k.Fields...)
	// encoding a []string cannot fail
	raw, _ := cbor.Marshal(parts)
	return raw
}

// String is used for lock bookkeeping and logging.
func (k Key) String() string {
	return string(k.Bytes())
}

// NodeRecordKey returns the key of a node record for the given kind.
func NodeRecordKey(kind interfaces.NodeKind, addr interfaces.Address) Key {
	switch kind {
	case interfaces.TxOrdererNode:
		return NewKey(KindTxOrdererRpcInfo, addr.Hex())
	case interfaces.RollupExecutorNode:
		return NewKey(KindRollupNodeInfo, addr.Hex())
	default:
		return NewKey(KindSequencerNodeInfo, addr.Hex())
	}
}

// SequencingInfoPayloadKey returns the key of a backend's configuration.
func SequencingInfoPayloadKey(key interfaces.SequencingInfoKey) Key {
	return NewKey(KindSequencingInfoPayload,
		key.Platform.String(), key.SequencingFunctionType.String(), key.ServiceProvider.String())
}

// SequencingInfoListKey returns the key of the singleton list of configured backends.
func SequencingInfoListKey() Key {
	return NewKey(KindSequencingInfoList)
}

// ClusterInfoKey returns the key of a cluster's locally known membership.
func ClusterInfoKey(key interfaces.SequencingInfoKey, cluster interfaces.ClusterID) Key {
	return NewKey(KindClusterInfo,
		key.Platform.String(), key.SequencingFunctionType.String(), key.ServiceProvider.String(), string(cluster))
}

// SequencingInfoList is the persisted set of configured backends, in insertion order.
type SequencingInfoList struct {
	Keys []interfaces.SequencingInfoKey `cbor:"1,keyasint"`
}

// Insert adds key if it is not already present and reports whether it was added.
func (l *SequencingInfoList) Insert(key interfaces.SequencingInfoKey) bool {
	for _, existing := range l.Keys {
		if existing == key {
			return false
		}
	}
	l.Keys = append(l.Keys, key)
	return true
}
