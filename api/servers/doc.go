/*
Package servers runs the seeder's HTTP listeners.

A Server owns three listeners:

 1. External: JSON-RPC on POST / for node registration and endpoint lookups
 2. Internal: JSON-RPC on POST / for backend configuration and rollup executors
 3. Metrics: Prometheus /metrics, started only when MetricsAddr is set

Both RPC listeners serve the Kubernetes style probes /livez and /readyz along
with /drain and /undrain, which flip a readiness flag shared by the two. pprof
is mounted under /debug on the internal listener when EnablePprof is set.

Requests are logged through httplogger.LoggingMiddlewareSlog.

# Example Usage

	cfg := &api.HTTPServerConfig{
	    ExternalListenAddr:       "0.0.0.0:5000",
	    InternalListenAddr:       "127.0.0.1:6000",
	    MetricsAddr:              "127.0.0.1:8090",
	    Log:                      logger,
	    DrainDuration:            45 * time.Second,
	    GracefulShutdownDuration: 30 * time.Second,
	    ReadTimeout:              60 * time.Second,
	    WriteTimeout:             30 * time.Second,
	}

	server, err := servers.New(cfg, handler)
	if err != nil {
	    return err
	}
	server.RunInBackground()
	defer server.Shutdown()
*/
package servers
