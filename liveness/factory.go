package liveness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// ClientFactory builds liveness clients from persisted backend configuration.
type ClientFactory struct {
	signers SignerSource
	log     *slog.Logger
}

// NewClientFactory creates a factory. When signers is not nil, clients are
// bound to the platform's signer so they can publish membership changes.
func NewClientFactory(signers SignerSource, log *slog.Logger) *ClientFactory {
	return &ClientFactory{signers: signers, log: log}
}

// LivenessClientFor dials the backend's RPC endpoint and binds its contract.
// Only the ethereum platform has a liveness client.
func (f *ClientFactory) LivenessClientFor(ctx context.Context, key interfaces.SequencingInfoKey, payload *interfaces.SequencingInfoPayload) (interfaces.LivenessClient, error) {
	switch key.Platform {
	case interfaces.PlatformEthereum:
	default:
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, key.Platform)
	}

	if err := payload.Validate(key.Platform); err != nil {
		return nil, err
	}

	backend, err := ethclient.DialContext(ctx, payload.LivenessRpcUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", interfaces.ErrBackendUnavailable, payload.LivenessRpcUrl, err)
	}

	f.log.Info("liveness client created",
		"key", key.String(),
		"rpcUrl", payload.LivenessRpcUrl,
		"contract", payload.ContractAddress)

	client := NewEthereumLivenessClient(key, backend, common.HexToAddress(payload.ContractAddress))
	f.bindSigner(ctx, client)
	return client, nil
}

// bindSigner attaches the platform signer, if any. A client that cannot be
// bound stays read-only.
func (f *ClientFactory) bindSigner(ctx context.Context, client *EthereumLivenessClient) {
	if f.signers == nil {
		return
	}
	signer, err := f.signers.GetSigner(client.Key().Platform)
	if err != nil {
		f.log.Debug("no signer for platform, liveness client is read-only", "key", client.Key().String())
		return
	}
	if err := BindSigner(ctx, client, signer); err != nil {
		f.log.Warn("failed to bind signer, liveness client is read-only", "key", client.Key().String(), "err", err)
		return
	}
	f.log.Info("liveness client can publish", "key", client.Key().String(), "signer", signer.Address().Hex())
}
