package liveness

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// ErrSignerHasNoKey is returned when a signer cannot produce a transactor.
var ErrSignerHasNoKey = errors.New("signer does not expose a private key")

// SignerSource resolves the key this node publishes with on a platform.
// *registry.Registry satisfies it.
type SignerSource interface {
	GetSigner(platform interfaces.Platform) (interfaces.Signer, error)
}

type keyedSigner interface {
	PrivateKey() *ecdsa.PrivateKey
}

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// BindSigner makes signer the transactor of client, using the chain id its
// backend reports.
func BindSigner(ctx context.Context, client *EthereumLivenessClient, signer interfaces.Signer) error {
	keyed, ok := signer.(keyedSigner)
	if !ok {
		return ErrSignerHasNoKey
	}
	reader, ok := client.backend.(chainIDReader)
	if !ok {
		return fmt.Errorf("%w: backend does not report a chain id", interfaces.ErrBackendUnavailable)
	}
	chainID, err := reader.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: chain id: %w", interfaces.ErrBackendUnavailable, err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(keyed.PrivateKey(), chainID)
	if err != nil {
		return err
	}
	client.SetTransactOpts(auth)
	return nil
}
