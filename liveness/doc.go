/*
Package liveness provides clients for the on-chain liveness contracts that are
the source of truth for cluster membership.

EthereumLivenessClient binds the contract through go-ethereum at runtime from
LivenessABI. Membership lists are always read at an explicit block height so the
caller decides how much confirmation lag to tolerate:

	head, _ := client.BlockNumber(ctx)
	margin, _ := client.BlockMargin(ctx)
	members, _ := client.SequencerList(ctx, "cluster-1", head-margin)

Every chain or transport failure is wrapped with interfaces.ErrBackendUnavailable.
With transaction options set the same client publishes registerSequencer and
deregisterSequencer transactions for node operators.

ClientFactory builds clients from stored SequencingInfoPayload values.
StubLivenessClient and StubClientFactory provide an in-memory contract with a
block-indexed membership history for development and tests.
*/
package liveness
