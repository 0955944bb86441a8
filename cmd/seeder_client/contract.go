package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/liveness"
	"github.com/urfave/cli/v2"
)

var flagWait = &cli.BoolFlag{
	Name:  "wait",
	Value: true,
	Usage: "wait for the transaction to be mined",
}

// contractClient resolves the backend through the seeder's internal surface
// and binds its liveness contract with the signing key as transactor.
func contractClient(cCtx *cli.Context) (*liveness.EthereumLivenessClient, *ethclient.Client, error) {
	platform, provider, err := backend(cCtx)
	if err != nil {
		return nil, nil, err
	}
	if platform != interfaces.PlatformEthereum {
		return nil, nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, platform)
	}
	signer, err := loadSigner(cCtx)
	if err != nil {
		return nil, nil, err
	}

	key := interfaces.NewSequencingInfoKey(platform, interfaces.FunctionLiveness, provider)
	payload, err := internalClient(cCtx, nil).GetSequencingInfo(cCtx.Context, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve backend %s: %w", key, err)
	}

	ethClient, err := ethclient.DialContext(cCtx.Context, payload.LivenessRpcUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", payload.LivenessRpcUrl, err)
	}
	client := liveness.NewEthereumLivenessClient(key, ethClient, common.HexToAddress(payload.ContractAddress))
	if err := liveness.BindSigner(cCtx.Context, client, signer); err != nil {
		ethClient.Close()
		return nil, nil, err
	}

	return client, ethClient, nil
}

func transactCommand(name, usage string, send func(c *liveness.EthereumLivenessClient, cluster interfaces.ClusterID) (*types.Transaction, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{flagClusterID, flagWait},
		Action: func(cCtx *cli.Context) error {
			client, ethClient, err := contractClient(cCtx)
			if err != nil {
				return err
			}
			defer ethClient.Close()

			tx, err := send(client, interfaces.ClusterID(cCtx.String(flagClusterID.Name)))
			if err != nil {
				return err
			}
			fmt.Println("transaction sent:", tx.Hash().Hex())

			if !cCtx.Bool(flagWait.Name) {
				return nil
			}
			receipt, err := bind.WaitMined(cCtx.Context, ethClient, tx)
			if err != nil {
				return err
			}
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber)
			}
			fmt.Println("mined in block", receipt.BlockNumber)
			return nil
		},
	}
}

func contractCommands() []*cli.Command {
	return []*cli.Command{
		transactCommand("join-cluster", "add the signing key to a cluster's sequencer list in the liveness contract",
			(*liveness.EthereumLivenessClient).RegisterSequencer),
		transactCommand("leave-cluster", "remove the signing key from a cluster's sequencer list in the liveness contract",
			(*liveness.EthereumLivenessClient).DeregisterSequencer),
	}
}
