// Package interfaces defines the domain types, error taxonomy and collaborator
// contracts shared by the seeder's packages.
//
// # Backends
//
// A backend is one (platform, sequencing function, service provider) triple,
// identified by SequencingInfoKey and configured by SequencingInfoPayload. Each
// backend is served by a LivenessClient reading the liveness contract that is
// the source of truth for cluster membership.
//
// # Records
//
// NodeRecord holds the endpoints of one sequencer, transaction orderer or rollup
// executor, keyed by its Address. ClusterInfo holds the locally known membership
// of one cluster.
//
// # Errors
//
// Every failure of the registration protocol wraps one of the sentinel errors in
// errors.go so the RPC layer can map it to a stable error code.
package interfaces
