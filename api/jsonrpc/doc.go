/*
Package jsonrpc is a small JSON-RPC 2.0 transport over HTTP POST.

A Server is a dispatch table from method name to HandlerFunc. Method adapts a
typed handler so params are decoded into a struct before the call:

	methods := map[string]jsonrpc.HandlerFunc{
	    "get_sequencer_rpc_url": jsonrpc.Method(h.GetSequencerRpcUrl),
	}
	srv := jsonrpc.NewServer("external", methods, handlers.ErrorFor, log)

Handler errors are converted to error objects by an ErrorMapper so domain
errors keep stable codes on the wire. Client is the matching caller used by
the operator CLI and the integration tests.
*/
package jsonrpc
