package handlers

import (
	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
)

// InternalMethods is the operator-only surface: backend configuration and
// rollup executor admission.
func (h *Handler) InternalMethods() map[string]jsonrpc.HandlerFunc {
	return map[string]jsonrpc.HandlerFunc{
		"add_sequencing_info":  jsonrpc.Method(h.AddSequencingInfo),
		"get_sequencing_info":  jsonrpc.Method(h.GetSequencingInfo),
		"get_sequencing_infos": jsonrpc.Method(h.GetSequencingInfos),
		"add_rollup":           jsonrpc.Method(h.AddRollup),
	}
}

// ExternalMethods is the node-operator and client facing surface.
func (h *Handler) ExternalMethods() map[string]jsonrpc.HandlerFunc {
	return map[string]jsonrpc.HandlerFunc{
		"register_sequencer":                          jsonrpc.Method(h.RegisterSequencer),
		"deregister_sequencer":                        jsonrpc.Method(h.DeregisterSequencer),
		"update_sequencer_rpc_url":                    jsonrpc.Method(h.UpdateSequencerRpcUrl),
		"get_sequencer_rpc_url":                       jsonrpc.Method(h.GetSequencerRpcUrl),
		"get_sequencer_rpc_url_list":                  jsonrpc.Method(h.GetSequencerRpcUrlList),
		"get_sequencer_rpc_url_list_at_block_height":  jsonrpc.Method(h.GetSequencerRpcUrlListAtBlockHeight),
		"register_tx_orderer":                         jsonrpc.Method(h.RegisterTxOrderer),
		"deregister_tx_orderer":                       jsonrpc.Method(h.DeregisterTxOrderer),
		"get_tx_orderer_rpc_url":                      jsonrpc.Method(h.GetTxOrdererRpcUrl),
		"get_tx_orderer_rpc_url_list":                 jsonrpc.Method(h.GetTxOrdererRpcUrlList),
		"get_tx_orderer_rpc_url_list_at_block_height": jsonrpc.Method(h.GetTxOrdererRpcUrlListAtBlockHeight),
		"get_tx_orderer_rpc_info":                     jsonrpc.Method(h.GetTxOrdererRpcInfo),
		"get_tx_orderer_rpc_info_list":                jsonrpc.Method(h.GetTxOrdererRpcInfoList),
		"update_rollup_rpc_url":                       jsonrpc.Method(h.UpdateRollupRpcUrl),
		"get_executor_rpc_url_list":                   jsonrpc.Method(h.GetExecutorRpcUrlList),
		"get_executor_rpc_info_list":                  jsonrpc.Method(h.GetExecutorRpcInfoList),
		"get_cluster_info":                            jsonrpc.Method(h.GetClusterInfo),
	}
}
