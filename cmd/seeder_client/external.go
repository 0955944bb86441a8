package main

import (
	"github.com/ruteri/sequencer-seeder/api/clients"
	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/urfave/cli/v2"
)

// node describes the signed request fields shared by all registration commands.
type node struct {
	platform interfaces.Platform
	provider interfaces.ServiceProvider
	cluster  string
	address  interfaces.Address
	client   *clients.ExternalClient
}

func signedCommand(name, usage string, extra []cli.Flag, run func(cCtx *cli.Context, n *node) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: append([]cli.Flag{flagClusterID}, extra...),
		Action: func(cCtx *cli.Context) error {
			platform, provider, err := backend(cCtx)
			if err != nil {
				return err
			}
			signer, err := loadSigner(cCtx)
			if err != nil {
				return err
			}
			return run(cCtx, &node{
				platform: platform,
				provider: provider,
				cluster:  cCtx.String(flagClusterID.Name),
				address:  signer.Address(),
				client:   clients.NewExternalClient(cCtx.String(flagExternalURL.Name), signer, nil),
			})
		},
	}
}

func externalCommands() []*cli.Command {
	return []*cli.Command{
		signedCommand("register-sequencer", "publish the rpc urls of a sequencer owned by the signing key",
			[]cli.Flag{flagRpcURL, flagClusterRpcURL},
			func(cCtx *cli.Context, n *node) error {
				return n.client.RegisterSequencer(cCtx.Context, &handlers.RegisterSequencerMessage{
					Platform:        n.platform,
					ServiceProvider: n.provider,
					ClusterID:       n.cluster,
					Address:         n.address,
					ExternalRpcUrl:  cCtx.String(flagRpcURL.Name),
					ClusterRpcUrl:   cCtx.String(flagClusterRpcURL.Name),
				})
			}),
		signedCommand("deregister-sequencer", "withdraw a sequencer that has left the liveness contract", nil,
			func(cCtx *cli.Context, n *node) error {
				return n.client.DeregisterSequencer(cCtx.Context, &handlers.DeregisterSequencerMessage{
					Platform:        n.platform,
					ServiceProvider: n.provider,
					ClusterID:       n.cluster,
					Address:         n.address,
				})
			}),
		signedCommand("update-sequencer-rpc-url", "replace the external rpc url of a registered sequencer",
			[]cli.Flag{flagRpcURL},
			func(cCtx *cli.Context, n *node) error {
				return n.client.UpdateSequencerRpcUrl(cCtx.Context, &handlers.UpdateSequencerRpcUrlMessage{
					Platform:        n.platform,
					ServiceProvider: n.provider,
					ClusterID:       n.cluster,
					Address:         n.address,
					RpcUrl:          cCtx.String(flagRpcURL.Name),
				})
			}),
		signedCommand("register-tx-orderer", "publish the rpc urls of a transaction orderer owned by the signing key",
			[]cli.Flag{flagRpcURL, flagClusterRpcURL},
			func(cCtx *cli.Context, n *node) error {
				return n.client.RegisterTxOrderer(cCtx.Context, &handlers.RegisterTxOrdererMessage{
					Platform:         n.platform,
					ServiceProvider:  n.provider,
					ClusterID:        n.cluster,
					TxOrdererAddress: n.address,
					ExternalRpcUrl:   cCtx.String(flagRpcURL.Name),
					ClusterRpcUrl:    cCtx.String(flagClusterRpcURL.Name),
				})
			}),
		signedCommand("deregister-tx-orderer", "withdraw a transaction orderer that has left the liveness contract", nil,
			func(cCtx *cli.Context, n *node) error {
				return n.client.DeregisterTxOrderer(cCtx.Context, &handlers.DeregisterTxOrdererMessage{
					Platform:         n.platform,
					ServiceProvider:  n.provider,
					ClusterID:        n.cluster,
					TxOrdererAddress: n.address,
				})
			}),
		signedCommand("update-rollup-rpc-url", "replace the rpc url of a rollup executor owned by the signing key",
			[]cli.Flag{flagRpcURL},
			func(cCtx *cli.Context, n *node) error {
				return n.client.UpdateRollupRpcUrl(cCtx.Context, &handlers.UpdateRollupRpcUrlMessage{
					Platform:        n.platform,
					ServiceProvider: n.provider,
					ClusterID:       n.cluster,
					Address:         n.address,
					RpcUrl:          cCtx.String(flagRpcURL.Name),
				})
			}),
		{
			Name:  "get-sequencer-rpc-url",
			Usage: "resolve one sequencer address",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				addr, err := singleAddress(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				entry, err := client.GetSequencerRpcUrl(cCtx.Context, addr)
				if err != nil {
					return err
				}
				return printJSON(entry)
			},
		},
		{
			Name:  "get-sequencer-rpc-url-list",
			Usage: "resolve several sequencer addresses",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				list, err := addresses(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				entries, err := client.GetSequencerRpcUrlList(cCtx.Context, list)
				if err != nil {
					return err
				}
				return printJSON(entries)
			},
		},
		{
			Name:  "get-sequencer-rpc-url-list-at-block-height",
			Usage: "resolve the sequencers of a cluster as listed at a block height",
			Flags: []cli.Flag{flagClusterID, flagBlockHeight},
			Action: func(cCtx *cli.Context) error {
				params, err := atBlockHeight(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				resp, err := client.GetSequencerRpcUrlListAtBlockHeight(cCtx.Context, params)
				if err != nil {
					return err
				}
				return printJSON(resp)
			},
		},
		{
			Name:  "get-tx-orderer-rpc-url",
			Usage: "resolve one transaction orderer address",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				addr, err := singleAddress(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				entry, err := client.GetTxOrdererRpcUrl(cCtx.Context, addr)
				if err != nil {
					return err
				}
				return printJSON(entry)
			},
		},
		{
			Name:  "get-tx-orderer-rpc-url-list",
			Usage: "resolve several transaction orderer addresses",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				list, err := addresses(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				entries, err := client.GetTxOrdererRpcUrlList(cCtx.Context, list)
				if err != nil {
					return err
				}
				return printJSON(entries)
			},
		},
		{
			Name:  "get-tx-orderer-rpc-url-list-at-block-height",
			Usage: "resolve the transaction orderers of a cluster as listed at a block height",
			Flags: []cli.Flag{flagClusterID, flagBlockHeight},
			Action: func(cCtx *cli.Context) error {
				params, err := atBlockHeight(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				resp, err := client.GetTxOrdererRpcUrlListAtBlockHeight(cCtx.Context, params)
				if err != nil {
					return err
				}
				return printJSON(resp)
			},
		},
		{
			Name:  "get-tx-orderer-rpc-info",
			Usage: "show the full record of one transaction orderer",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				addr, err := singleAddress(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				info, err := client.GetTxOrdererRpcInfo(cCtx.Context, addr)
				if err != nil {
					return err
				}
				return printJSON(info)
			},
		},
		{
			Name:  "get-tx-orderer-rpc-info-list",
			Usage: "show the full records of known transaction orderers",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				list, err := addresses(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				infos, err := client.GetTxOrdererRpcInfoList(cCtx.Context, list)
				if err != nil {
					return err
				}
				return printJSON(infos)
			},
		},
		{
			Name:  "get-executor-rpc-url-list",
			Usage: "resolve several rollup executor addresses",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				list, err := addresses(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				entries, err := client.GetExecutorRpcUrlList(cCtx.Context, list)
				if err != nil {
					return err
				}
				return printJSON(entries)
			},
		},
		{
			Name:  "get-executor-rpc-info-list",
			Usage: "show the full records of known rollup executors",
			Flags: []cli.Flag{flagAddresses},
			Action: func(cCtx *cli.Context) error {
				list, err := addresses(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				infos, err := client.GetExecutorRpcInfoList(cCtx.Context, list)
				if err != nil {
					return err
				}
				return printJSON(infos)
			},
		},
		{
			Name:  "get-cluster-info",
			Usage: "show the locally known membership of a cluster",
			Flags: []cli.Flag{flagClusterID},
			Action: func(cCtx *cli.Context) error {
				platform, provider, err := backend(cCtx)
				if err != nil {
					return err
				}
				client := externalClient(cCtx)
				info, err := client.GetClusterInfo(cCtx.Context, &handlers.GetClusterInfoParams{
					Platform:        platform,
					ServiceProvider: provider,
					ClusterID:       cCtx.String(flagClusterID.Name),
				})
				if err != nil {
					return err
				}
				return printJSON(info)
			},
		},
	}
}
