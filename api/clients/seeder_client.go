package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ruteri/sequencer-seeder/api"
	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

var (
	_ api.InternalAPI = (*InternalClient)(nil)
	_ api.ExternalAPI = (*ExternalClient)(nil)
)

// ExternalClient calls the public seeder surface. Registration messages are
// signed with the configured signer; lookups need no signer.
type ExternalClient struct {
	rpc    *jsonrpc.Client
	signer interfaces.Signer
}

// NewExternalClient creates a client for the external endpoint at url. signer
// may be nil when only lookups are made.
func NewExternalClient(url string, signer interfaces.Signer, httpClient *http.Client) *ExternalClient {
	return &ExternalClient{rpc: jsonrpc.NewClient(url, httpClient), signer: signer}
}

// sign wraps msg into a signed request.
func sign[M any](signer interfaces.Signer, msg *M) (*handlers.Signed[M], error) {
	if signer == nil {
		return nil, fmt.Errorf("a signer is required to send %T", *msg)
	}
	sig, err := signer.SignMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return &handlers.Signed[M]{Message: *msg, Signature: sig}, nil
}

func callSigned[M any](ctx context.Context, rpc *jsonrpc.Client, signer interfaces.Signer, method string, msg *M) error {
	req, err := sign(signer, msg)
	if err != nil {
		return err
	}
	return rpc.Call(ctx, method, req, nil)
}

func (c *ExternalClient) RegisterSequencer(ctx context.Context, msg *handlers.RegisterSequencerMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "register_sequencer", msg)
}

func (c *ExternalClient) DeregisterSequencer(ctx context.Context, msg *handlers.DeregisterSequencerMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "deregister_sequencer", msg)
}

func (c *ExternalClient) UpdateSequencerRpcUrl(ctx context.Context, msg *handlers.UpdateSequencerRpcUrlMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "update_sequencer_rpc_url", msg)
}

func (c *ExternalClient) RegisterTxOrderer(ctx context.Context, msg *handlers.RegisterTxOrdererMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "register_tx_orderer", msg)
}

func (c *ExternalClient) DeregisterTxOrderer(ctx context.Context, msg *handlers.DeregisterTxOrdererMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "deregister_tx_orderer", msg)
}

func (c *ExternalClient) GetSequencerRpcUrl(ctx context.Context, address interfaces.Address) (*handlers.RpcUrlEntry, error) {
	var resp handlers.GetSequencerRpcUrlResponse
	if err := c.rpc.Call(ctx, "get_sequencer_rpc_url", &handlers.GetRpcUrlParams{Address: address}, &resp); err != nil {
		return nil, err
	}
	return &resp.SequencerRpcUrl, nil
}

func (c *ExternalClient) GetSequencerRpcUrlList(ctx context.Context, addresses []interfaces.Address) ([]handlers.RpcUrlEntry, error) {
	var resp handlers.GetSequencerRpcUrlListResponse
	if err := c.rpc.Call(ctx, "get_sequencer_rpc_url_list", &handlers.GetSequencerRpcUrlListParams{SequencerAddressList: addresses}, &resp); err != nil {
		return nil, err
	}
	return resp.SequencerRpcUrlList, nil
}

func (c *ExternalClient) GetSequencerRpcUrlListAtBlockHeight(ctx context.Context, params *handlers.AtBlockHeightParams) (*handlers.GetSequencerRpcUrlListAtBlockHeightResponse, error) {
	var resp handlers.GetSequencerRpcUrlListAtBlockHeightResponse
	if err := c.rpc.Call(ctx, "get_sequencer_rpc_url_list_at_block_height", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ExternalClient) GetTxOrdererRpcUrl(ctx context.Context, address interfaces.Address) (*handlers.RpcUrlEntry, error) {
	var resp handlers.GetTxOrdererRpcUrlResponse
	if err := c.rpc.Call(ctx, "get_tx_orderer_rpc_url", &handlers.GetRpcUrlParams{Address: address}, &resp); err != nil {
		return nil, err
	}
	return &resp.TxOrdererRpcUrl, nil
}

func (c *ExternalClient) GetTxOrdererRpcUrlList(ctx context.Context, addresses []interfaces.Address) ([]handlers.RpcUrlEntry, error) {
	var resp handlers.GetTxOrdererRpcUrlListResponse
	if err := c.rpc.Call(ctx, "get_tx_orderer_rpc_url_list", &handlers.TxOrdererAddressListParams{TxOrdererAddressList: addresses}, &resp); err != nil {
		return nil, err
	}
	return resp.TxOrdererRpcUrlList, nil
}

func (c *ExternalClient) GetTxOrdererRpcUrlListAtBlockHeight(ctx context.Context, params *handlers.AtBlockHeightParams) (*handlers.GetTxOrdererRpcUrlListAtBlockHeightResponse, error) {
	var resp handlers.GetTxOrdererRpcUrlListAtBlockHeightResponse
	if err := c.rpc.Call(ctx, "get_tx_orderer_rpc_url_list_at_block_height", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ExternalClient) UpdateRollupRpcUrl(ctx context.Context, msg *handlers.UpdateRollupRpcUrlMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "update_rollup_rpc_url", msg)
}

func (c *ExternalClient) GetTxOrdererRpcInfo(ctx context.Context, address interfaces.Address) (*interfaces.NodeRecord, error) {
	var resp handlers.GetTxOrdererRpcInfoResponse
	if err := c.rpc.Call(ctx, "get_tx_orderer_rpc_info", &handlers.GetTxOrdererRpcInfoParams{TxOrdererAddress: address}, &resp); err != nil {
		return nil, err
	}
	return &resp.TxOrdererRpcInfo, nil
}

func (c *ExternalClient) GetTxOrdererRpcInfoList(ctx context.Context, addresses []interfaces.Address) ([]interfaces.NodeRecord, error) {
	var resp handlers.GetTxOrdererRpcInfoListResponse
	if err := c.rpc.Call(ctx, "get_tx_orderer_rpc_info_list", &handlers.TxOrdererAddressListParams{TxOrdererAddressList: addresses}, &resp); err != nil {
		return nil, err
	}
	return resp.TxOrdererRpcInfoList, nil
}

func (c *ExternalClient) GetExecutorRpcUrlList(ctx context.Context, addresses []interfaces.Address) ([]handlers.ExecutorRpcUrlEntry, error) {
	var resp handlers.GetExecutorRpcUrlListResponse
	if err := c.rpc.Call(ctx, "get_executor_rpc_url_list", &handlers.GetExecutorRpcUrlListParams{ExecutorAddressList: addresses}, &resp); err != nil {
		return nil, err
	}
	return resp.ExecutorRpcUrlList, nil
}

func (c *ExternalClient) GetExecutorRpcInfoList(ctx context.Context, addresses []interfaces.Address) ([]interfaces.NodeRecord, error) {
	var resp handlers.GetExecutorRpcInfoListResponse
	if err := c.rpc.Call(ctx, "get_executor_rpc_info_list", &handlers.GetExecutorRpcUrlListParams{ExecutorAddressList: addresses}, &resp); err != nil {
		return nil, err
	}
	return resp.ExecutorRpcInfoList, nil
}

func (c *ExternalClient) GetClusterInfo(ctx context.Context, params *handlers.GetClusterInfoParams) (*interfaces.ClusterInfo, error) {
	var resp interfaces.ClusterInfo
	if err := c.rpc.Call(ctx, "get_cluster_info", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InternalClient calls the operator surface. add_rollup messages are signed
// by the executor's signer.
type InternalClient struct {
	rpc    *jsonrpc.Client
	signer interfaces.Signer
}

func NewInternalClient(url string, signer interfaces.Signer, httpClient *http.Client) *InternalClient {
	return &InternalClient{rpc: jsonrpc.NewClient(url, httpClient), signer: signer}
}

func (c *InternalClient) AddSequencingInfo(ctx context.Context, params *handlers.AddSequencingInfoParams) error {
	return c.rpc.Call(ctx, "add_sequencing_info", params, nil)
}

func (c *InternalClient) GetSequencingInfo(ctx context.Context, key interfaces.SequencingInfoKey) (*interfaces.SequencingInfoPayload, error) {
	var resp handlers.GetSequencingInfoResponse
	params := &handlers.GetSequencingInfoParams{
		Platform:               key.Platform,
		SequencingFunctionType: key.SequencingFunctionType,
		ServiceProvider:        key.ServiceProvider,
	}
	if err := c.rpc.Call(ctx, "get_sequencing_info", params, &resp); err != nil {
		return nil, err
	}
	return resp.SequencingInfoPayload, nil
}

func (c *InternalClient) GetSequencingInfos(ctx context.Context) (map[interfaces.SequencingInfoKey]interfaces.SequencingInfoPayload, error) {
	var resp handlers.GetSequencingInfosResponse
	if err := c.rpc.Call(ctx, "get_sequencing_infos", nil, &resp); err != nil {
		return nil, err
	}
	return resp.SequencingInfos, nil
}

func (c *InternalClient) AddRollup(ctx context.Context, msg *handlers.AddRollupMessage) error {
	return callSigned(ctx, c.rpc, c.signer, "add_rollup", msg)
}
