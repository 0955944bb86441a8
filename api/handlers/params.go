package handlers

import (
	"errors"
	"net/url"

	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// Signed wraps an RPC message with a signature over its canonical encoding.
type Signed[M any] struct {
	Message   M                    `json:"message"`
	Signature interfaces.Signature `json:"signature"`
}

type backendRef struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
}

func (b backendRef) validate() error {
	if b.Platform == "" {
		return jsonrpc.InvalidParams(errors.New("platform is required"))
	}
	if b.ServiceProvider == "" {
		return jsonrpc.InvalidParams(errors.New("service_provider is required"))
	}
	return nil
}

func (b backendRef) key() interfaces.SequencingInfoKey {
	return interfaces.NewSequencingInfoKey(b.Platform, interfaces.FunctionLiveness, b.ServiceProvider)
}

func validateCluster(cluster string) error {
	if cluster == "" {
		return jsonrpc.InvalidParams(errors.New("cluster_id is required"))
	}
	return nil
}

func validateRpcUrl(name, rpcURL string, required bool) error {
	if rpcURL == "" {
		if required {
			return jsonrpc.InvalidParams(errors.New(name + " is required"))
		}
		return nil
	}
	parsed, err := url.Parse(rpcURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return jsonrpc.InvalidParams(errors.New(name + " must be an http(s) url"))
	}
	return nil
}

// Internal surface

type AddSequencingInfoParams struct {
	Platform               interfaces.Platform               `json:"platform"`
	SequencingFunctionType interfaces.SequencingFunctionType `json:"sequencing_function_type,omitempty"`
	ServiceProvider        interfaces.ServiceProvider        `json:"service_provider"`
	Payload                interfaces.SequencingInfoPayload  `json:"payload"`
}

func (p *AddSequencingInfoParams) key() interfaces.SequencingInfoKey {
	return interfaces.NewSequencingInfoKey(p.Platform, p.SequencingFunctionType, p.ServiceProvider)
}

type GetSequencingInfoParams struct {
	Platform               interfaces.Platform               `json:"platform"`
	SequencingFunctionType interfaces.SequencingFunctionType `json:"sequencing_function_type,omitempty"`
	ServiceProvider        interfaces.ServiceProvider        `json:"service_provider"`
}

type GetSequencingInfoResponse struct {
	SequencingInfoPayload *interfaces.SequencingInfoPayload `json:"sequencing_info_payload"`
}

type GetSequencingInfosResponse struct {
	SequencingInfos map[interfaces.SequencingInfoKey]interfaces.SequencingInfoPayload `json:"sequencing_infos"`
}

type AddRollupMessage struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
	Address         interfaces.Address         `json:"address"`
	RpcUrl          string                     `json:"rpc_url"`
}

// External surface

// UpdateRollupRpcUrlMessage replaces the endpoint of an added rollup executor.
type UpdateRollupRpcUrlMessage struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
	Address         interfaces.Address         `json:"address"`
	RpcUrl          string                     `json:"rpc_url"`
}

type RegisterSequencerMessage struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
	Address         interfaces.Address         `json:"address"`
	ExternalRpcUrl  string                     `json:"external_rpc_url"`
	ClusterRpcUrl   string                     `json:"cluster_rpc_url"`
}

type DeregisterSequencerMessage struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
	Address         interfaces.Address         `json:"address"`
}

type UpdateSequencerRpcUrlMessage struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
	Address         interfaces.Address         `json:"address"`
	RpcUrl          string                     `json:"rpc_url"`
}

type RegisterTxOrdererMessage struct {
	Platform         interfaces.Platform        `json:"platform"`
	ServiceProvider  interfaces.ServiceProvider `json:"service_provider"`
	ClusterID        string                     `json:"cluster_id"`
	TxOrdererAddress interfaces.Address         `json:"tx_orderer_address"`
	ExternalRpcUrl   string                     `json:"external_rpc_url"`
	ClusterRpcUrl    string                     `json:"cluster_rpc_url"`
}

type DeregisterTxOrdererMessage struct {
	Platform         interfaces.Platform        `json:"platform"`
	ServiceProvider  interfaces.ServiceProvider `json:"service_provider"`
	ClusterID        string                     `json:"cluster_id"`
	TxOrdererAddress interfaces.Address         `json:"tx_orderer_address"`
}

type GetRpcUrlParams struct {
	Address interfaces.Address `json:"address"`
}

// RpcUrl is the pair of endpoints a sequencer or transaction orderer serves.
type RpcUrl struct {
	ExternalRpcUrl string `json:"external_rpc_url"`
	ClusterRpcUrl  string `json:"cluster_rpc_url"`
}

// RpcUrlEntry is one lookup result. RpcUrl is null when the address has no record.
type RpcUrlEntry struct {
	Address interfaces.Address `json:"address"`
	RpcUrl  *RpcUrl            `json:"rpc_url"`
}

type GetSequencerRpcUrlResponse struct {
	SequencerRpcUrl RpcUrlEntry `json:"sequencer_rpc_url"`
}

type GetSequencerRpcUrlListParams struct {
	SequencerAddressList []interfaces.Address `json:"sequencer_address_list"`
}

type GetSequencerRpcUrlListResponse struct {
	SequencerRpcUrlList []RpcUrlEntry `json:"sequencer_rpc_url_list"`
}

// AtBlockHeightParams selects a cluster's membership at a historical height.
// block_number is accepted as an alias of block_height.
type AtBlockHeightParams struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
	BlockHeight     *uint64                    `json:"block_height,omitempty"`
	BlockNumber     *uint64                    `json:"block_number,omitempty"`
}

func (p *AtBlockHeightParams) height() (uint64, error) {
	switch {
	case p.BlockHeight != nil:
		return *p.BlockHeight, nil
	case p.BlockNumber != nil:
		return *p.BlockNumber, nil
	default:
		return 0, jsonrpc.InvalidParams(errors.New("block_height is required"))
	}
}

type GetSequencerRpcUrlListAtBlockHeightResponse struct {
	SequencerRpcUrlList []RpcUrlEntry `json:"sequencer_rpc_url_list"`
	BlockHeight         uint64        `json:"block_height"`
}

type GetTxOrdererRpcUrlResponse struct {
	TxOrdererRpcUrl RpcUrlEntry `json:"tx_orderer_rpc_url"`
}

type TxOrdererAddressListParams struct {
	TxOrdererAddressList []interfaces.Address `json:"tx_orderer_address_list"`
}

type GetTxOrdererRpcUrlListResponse struct {
	TxOrdererRpcUrlList []RpcUrlEntry `json:"tx_orderer_rpc_url_list"`
}

type GetTxOrdererRpcUrlListAtBlockHeightResponse struct {
	TxOrdererRpcUrlList []RpcUrlEntry `json:"tx_orderer_rpc_url_list"`
	BlockHeight         uint64        `json:"block_height"`
}

type GetTxOrdererRpcInfoParams struct {
	TxOrdererAddress interfaces.Address `json:"tx_orderer_address"`
}

type GetTxOrdererRpcInfoResponse struct {
	TxOrdererRpcInfo interfaces.NodeRecord `json:"tx_orderer_rpc_info"`
}

type GetTxOrdererRpcInfoListResponse struct {
	TxOrdererRpcInfoList []interfaces.NodeRecord `json:"tx_orderer_rpc_info_list"`
}

type GetExecutorRpcUrlListParams struct {
	ExecutorAddressList []interfaces.Address `json:"executor_address_list"`
}

// ExecutorRpcUrlEntry is one executor lookup result. RpcUrl is null when unknown.
type ExecutorRpcUrlEntry struct {
	Address interfaces.Address `json:"address"`
	RpcUrl  *string            `json:"rpc_url"`
}

type GetExecutorRpcUrlListResponse struct {
	ExecutorRpcUrlList []ExecutorRpcUrlEntry `json:"executor_rpc_url_list"`
}

type GetExecutorRpcInfoListResponse struct {
	ExecutorRpcInfoList []interfaces.NodeRecord `json:"executor_rpc_info_list"`
}

type GetClusterInfoParams struct {
	Platform        interfaces.Platform        `json:"platform"`
	ServiceProvider interfaces.ServiceProvider `json:"service_provider"`
	ClusterID       string                     `json:"cluster_id"`
}
