/*
Seeder-client calls the seeder's internal and external RPC surfaces and sends
liveness contract transactions on behalf of a node operator.

Typical operator flow for a new sequencer:

	seeder-client --signing-key-file ./signing_key join-cluster --cluster-id c1
	seeder-client --signing-key-file ./signing_key register-sequencer \
	    --cluster-id c1 --rpc-url http://sequencer:8000

and to withdraw it:

	seeder-client --signing-key-file ./signing_key leave-cluster --cluster-id c1
	seeder-client --signing-key-file ./signing_key deregister-sequencer --cluster-id c1

deregister-sequencer is refused until the leave transaction is older than the
contract's block margin.
*/
package main
