package main

import (
	"github.com/ruteri/sequencer-seeder/api/clients"
	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/urfave/cli/v2"
)

var flagLivenessRpcURL = &cli.StringFlag{
	Name:     "liveness-rpc-url",
	Required: true,
	Usage:    "chain rpc url of the liveness backend",
}
var flagLivenessWebsocketURL = &cli.StringFlag{
	Name:  "liveness-websocket-url",
	Usage: "chain websocket url of the liveness backend",
}
var flagContractAddress = &cli.StringFlag{
	Name:  "contract-address",
	Usage: "liveness contract address",
}

func internalClient(cCtx *cli.Context, signer interfaces.Signer) *clients.InternalClient {
	return clients.NewInternalClient(cCtx.String(flagInternalURL.Name), signer, nil)
}

func internalCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "add-sequencing-info",
			Usage: "configure a liveness backend",
			Flags: []cli.Flag{flagLivenessRpcURL, flagLivenessWebsocketURL, flagContractAddress},
			Action: func(cCtx *cli.Context) error {
				platform, provider, err := backend(cCtx)
				if err != nil {
					return err
				}
				return internalClient(cCtx, nil).AddSequencingInfo(cCtx.Context, &handlers.AddSequencingInfoParams{
					Platform:               platform,
					SequencingFunctionType: interfaces.FunctionLiveness,
					ServiceProvider:        provider,
					Payload: interfaces.SequencingInfoPayload{
						LivenessRpcUrl:       cCtx.String(flagLivenessRpcURL.Name),
						LivenessWebsocketUrl: cCtx.String(flagLivenessWebsocketURL.Name),
						ContractAddress:      cCtx.String(flagContractAddress.Name),
					},
				})
			},
		},
		{
			Name:  "get-sequencing-info",
			Usage: "show the configuration of one liveness backend",
			Action: func(cCtx *cli.Context) error {
				platform, provider, err := backend(cCtx)
				if err != nil {
					return err
				}
				key := interfaces.NewSequencingInfoKey(platform, interfaces.FunctionLiveness, provider)
				payload, err := internalClient(cCtx, nil).GetSequencingInfo(cCtx.Context, key)
				if err != nil {
					return err
				}
				return printJSON(payload)
			},
		},
		{
			Name:  "get-sequencing-infos",
			Usage: "list every configured liveness backend",
			Action: func(cCtx *cli.Context) error {
				infos, err := internalClient(cCtx, nil).GetSequencingInfos(cCtx.Context)
				if err != nil {
					return err
				}
				return printJSON(infos)
			},
		},
		{
			Name:  "add-rollup",
			Usage: "publish the rpc url of a rollup executor owned by the signing key",
			Flags: []cli.Flag{flagClusterID, flagRpcURL},
			Action: func(cCtx *cli.Context) error {
				platform, provider, err := backend(cCtx)
				if err != nil {
					return err
				}
				signer, err := loadSigner(cCtx)
				if err != nil {
					return err
				}
				return internalClient(cCtx, signer).AddRollup(cCtx.Context, &handlers.AddRollupMessage{
					Platform:        platform,
					ServiceProvider: provider,
					ClusterID:       cCtx.String(flagClusterID.Name),
					Address:         signer.Address(),
					RpcUrl:          cCtx.String(flagRpcURL.Name),
				})
			},
		},
	}
}
