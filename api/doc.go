/*
Package api holds the server configuration and the client-facing interfaces of
the seeder's two JSON-RPC surfaces.

The internal surface (InternalAPI) configures liveness backends and admits
rollup executors. The external surface (ExternalAPI) lets node operators
register and deregister sequencers and transaction orderers, and lets clients
resolve addresses and clusters to RPC endpoints.

Subpackages:
  - jsonrpc: JSON-RPC 2.0 transport
  - handlers: method implementations and error codes
  - servers: HTTP listeners, probes and lifecycle
  - clients: typed client signing messages on behalf of an operator
*/
package api
