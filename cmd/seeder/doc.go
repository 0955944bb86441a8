/*
Seeder serves the sequencer discovery registry.

Usage:

	seeder init [--path DIR] [--force]
	seeder start [--path DIR] [flags]

init writes Config.toml and signing_key into the configuration directory
($HOME/.radius by default). start loads that directory, restores the
configured liveness backends from the record store and serves the internal
and external JSON-RPC endpoints until interrupted.

Flags given to start override the values in Config.toml:

	--seeder-external-rpc-url  public RPC url, its host:port is the listen address
	--seeder-internal-rpc-url  operator RPC url, its host:port is the listen address
	--database-uri             leveldb://<dir>, bolt://<file> or memory://
	--metrics-addr             Prometheus listen address
	--pprof                    mount pprof on the internal listener
	--drain-seconds            drain period for /drain
*/
package main
