package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ruteri/sequencer-seeder/api/clients"
	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/config"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/signature"
	"github.com/urfave/cli/v2"
)

var flagExternalURL = &cli.StringFlag{
	Name:  "seeder-external-rpc-url",
	Value: config.DefaultExternalRpcUrl,
	Usage: "seeder external rpc url",
}
var flagInternalURL = &cli.StringFlag{
	Name:  "seeder-internal-rpc-url",
	Value: config.DefaultInternalRpcUrl,
	Usage: "seeder internal rpc url",
}
var flagSigningKey = &cli.StringFlag{
	Name:    "signing-key",
	Usage:   "hex encoded secp256k1 key signing registration messages",
	EnvVars: []string{"SEEDER_SIGNING_KEY"},
}
var flagSigningKeyFile = &cli.StringFlag{
	Name:  "signing-key-file",
	Usage: "file holding the signing key, used when --signing-key is not set",
}
var flagPlatform = &cli.StringFlag{
	Name:  "platform",
	Value: string(interfaces.PlatformEthereum),
	Usage: "liveness backend platform: ethereum or local",
}
var flagServiceProvider = &cli.StringFlag{
	Name:  "service-provider",
	Value: string(interfaces.ServiceProviderRadius),
	Usage: "liveness backend service provider: radius or local",
}
var flagClusterID = &cli.StringFlag{
	Name:     "cluster-id",
	Required: true,
	Usage:    "cluster identifier in the liveness contract",
}
var flagRpcURL = &cli.StringFlag{
	Name:     "rpc-url",
	Required: true,
	Usage:    "external rpc url the node serves",
}
var flagClusterRpcURL = &cli.StringFlag{
	Name:  "cluster-rpc-url",
	Usage: "rpc url the node serves to other cluster members",
}
var flagAddresses = &cli.StringSliceFlag{
	Name:  "address",
	Usage: "node address, may be repeated",
}
var flagBlockHeight = &cli.Uint64Flag{
	Name:     "block-height",
	Required: true,
	Usage:    "block height to resolve the member list at",
}

const usage string = `Operator and client tool for the seeder.

Registration commands sign their message with the configured key. The
contract commands send liveness contract transactions from the same key.`

func main() {
	app := &cli.App{
		Name:  "seeder-client",
		Usage: usage,
		Flags: []cli.Flag{
			flagExternalURL,
			flagInternalURL,
			flagSigningKey,
			flagSigningKeyFile,
			flagPlatform,
			flagServiceProvider,
		},
		Commands: append(append(internalCommands(), externalCommands()...), contractCommands()...),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadSigner(cCtx *cli.Context) (*signature.PrivateKeySigner, error) {
	key := cCtx.String(flagSigningKey.Name)
	if key == "" && cCtx.String(flagSigningKeyFile.Name) != "" {
		raw, err := os.ReadFile(cCtx.String(flagSigningKeyFile.Name))
		if err != nil {
			return nil, err
		}
		key = strings.TrimSpace(string(raw))
	}
	if key == "" {
		return nil, errors.New("a signing key is required: set --signing-key or --signing-key-file")
	}
	return signature.NewPrivateKeySigner(key)
}

func backend(cCtx *cli.Context) (interfaces.Platform, interfaces.ServiceProvider, error) {
	platform, err := interfaces.ParsePlatform(cCtx.String(flagPlatform.Name))
	if err != nil {
		return "", "", err
	}
	provider, err := interfaces.ParseServiceProvider(cCtx.String(flagServiceProvider.Name))
	if err != nil {
		return "", "", err
	}
	return platform, provider, nil
}

func addresses(cCtx *cli.Context) ([]interfaces.Address, error) {
	raw := cCtx.StringSlice(flagAddresses.Name)
	list := make([]interfaces.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := interfaces.NewAddressFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", s, err)
		}
		list = append(list, addr)
	}
	return list, nil
}

// singleAddress returns the --address value, or the signer's address when
// none is given.
func singleAddress(cCtx *cli.Context) (interfaces.Address, error) {
	list, err := addresses(cCtx)
	if err != nil {
		return interfaces.Address{}, err
	}
	switch len(list) {
	case 1:
		return list[0], nil
	case 0:
		signer, err := loadSigner(cCtx)
		if err != nil {
			return interfaces.Address{}, errors.New("--address is required without a signing key")
		}
		return signer.Address(), nil
	default:
		return interfaces.Address{}, errors.New("exactly one --address is expected")
	}
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

// externalClient returns an unsigned client for lookups.
func externalClient(cCtx *cli.Context) *clients.ExternalClient {
	return clients.NewExternalClient(cCtx.String(flagExternalURL.Name), nil, nil)
}

func atBlockHeight(cCtx *cli.Context) (*handlers.AtBlockHeightParams, error) {
	platform, provider, err := backend(cCtx)
	if err != nil {
		return nil, err
	}
	height := cCtx.Uint64(flagBlockHeight.Name)
	return &handlers.AtBlockHeightParams{
		Platform:        platform,
		ServiceProvider: provider,
		ClusterID:       cCtx.String(flagClusterID.Name),
		BlockHeight:     &height,
	}, nil
}
