package interfaces

import "errors"

var (
	// ErrSignatureMismatch is returned when a signed message does not recover
	// to the address it claims to come from.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrUnsupportedPlatform is returned for platforms that have no chain
	// liveness client implementation.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrSequencingInfoNotFound is returned when no backend is configured for a key.
	ErrSequencingInfoNotFound = errors.New("sequencing info not found")

	// ErrPublisherAlreadyExists is returned when a backend is added twice.
	ErrPublisherAlreadyExists = errors.New("publisher already exists")

	// ErrNotRegisteredInContract is returned when a registering node is not a
	// member of the cluster in the liveness contract.
	ErrNotRegisteredInContract = errors.New("not registered in the liveness contract")

	// ErrNotDeregisteredFromContract is returned when a deregistering node is
	// still a member of the cluster at the finalized block height.
	ErrNotDeregisteredFromContract = errors.New("not deregistered from the liveness contract")

	// ErrHealthCheckFailed is returned when the claimed endpoint is unreachable.
	ErrHealthCheckFailed = errors.New("health check failed")

	// ErrBackendUnavailable is returned when the chain RPC call itself failed.
	ErrBackendUnavailable = errors.New("liveness backend unavailable")

	// ErrRecordNotFound is returned by the record store for missing keys.
	ErrRecordNotFound = errors.New("record not found")

	// ErrSignerNotFound is returned when no signing key is cached for a platform.
	ErrSignerNotFound = errors.New("signer not found")

	// ErrClusterInfoNotFound is returned when a cluster has no local membership yet.
	ErrClusterInfoNotFound = errors.New("cluster info not found")
)

// ErrStoreFailure wraps failures of the underlying persistence engine.
var ErrStoreFailure = errors.New("record store failure")
