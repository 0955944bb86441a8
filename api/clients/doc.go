/*
Package clients provides typed clients for the seeder's JSON-RPC surfaces.

InternalClient talks to the operator listener and ExternalClient to the public
one. Registration messages and add_rollup are signed locally with the client's
interfaces.Signer before they are sent, so the private key never leaves the
caller. Errors returned by the seeder surface as *jsonrpc.Error carrying the
stable error code.

# Example Usage

	signer, err := signature.NewPrivateKeySigner(hexKey)
	if err != nil {
	    return err
	}
	client := clients.NewExternalClient("http://seeder:5000", signer, nil)
	err = client.RegisterSequencer(ctx, &handlers.RegisterSequencerMessage{
	    Platform:        interfaces.PlatformEthereum,
	    ServiceProvider: interfaces.ServiceProviderRadius,
	    ClusterID:       "cluster-1",
	    Address:         signer.Address(),
	    ExternalRpcUrl:  "http://sequencer:8000",
	})
*/
package clients
