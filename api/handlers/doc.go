/*
Package handlers implements the seeder's JSON-RPC methods.

# Registration protocol

Register, deregister and update requests for sequencers and transaction
orderers share one flow:

 1. Verify the message signature against the claimed address.
 2. Resolve the backend's liveness client. Platforms other than ethereum fail
    with interfaces.ErrUnsupportedPlatform, unknown backends with
    interfaces.ErrSequencingInfoNotFound.
 3. Read the cluster's member list from the liveness contract. Registration
    reads at the current head and requires membership. Deregistration reads
    at head minus the contract's block margin and requires absence.
 4. Registration only: probe the claimed endpoint.
 5. Write the node record under its key lock, then update the persisted
    cluster membership and the registry cache.

Nothing is written before step 5. Deregistering a node without a record
succeeds with a warning.

# Method tables

InternalMethods and ExternalMethods return the dispatch tables served on the
internal and external listeners. ErrorFor maps registry errors to stable
JSON-RPC error codes.
*/
package handlers
