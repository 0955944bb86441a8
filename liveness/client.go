package liveness

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// ErrNoTransactOpts is returned when a transaction is attempted without first setting transaction options.
var ErrNoTransactOpts = errors.New("no authorized transactor available")

// LivenessABI is the subset of the liveness contract the seeder and its operators use.
const LivenessABI = `[
	{"type":"function","name":"getSequencerList","stateMutability":"view",
	 "inputs":[{"name":"clusterId","type":"string"}],
	 "outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getTxOrdererList","stateMutability":"view",
	 "inputs":[{"name":"clusterId","type":"string"}],
	 "outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"BLOCK_MARGIN","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"registerSequencer","stateMutability":"nonpayable",
	 "inputs":[{"name":"clusterId","type":"string"}],
	 "outputs":[]},
	{"type":"function","name":"deregisterSequencer","stateMutability":"nonpayable",
	 "inputs":[{"name":"clusterId","type":"string"}],
	 "outputs":[]}
]`

var parsedLivenessABI = mustParseABI(LivenessABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ChainBackend is the read side of a chain connection. *ethclient.Client
// satisfies it, as does the simulated backend client.
type ChainBackend interface {
	bind.ContractCaller
	BlockNumber(ctx context.Context) (uint64, error)
}

// EthereumLivenessClient implements interfaces.LivenessClient against a liveness
// contract deployed on an Ethereum-compatible chain.
type EthereumLivenessClient struct {
	key        interfaces.SequencingInfoKey
	backend    ChainBackend
	transactor bind.ContractTransactor
	contract   *bind.BoundContract
	address    common.Address
	auth       *bind.TransactOpts
}

// NewEthereumLivenessClient binds the liveness contract at address. If backend also
// implements bind.ContractTransactor the client can publish membership changes
// once SetTransactOpts has been called.
func NewEthereumLivenessClient(key interfaces.SequencingInfoKey, backend ChainBackend, address common.Address) *EthereumLivenessClient {
	transactor, _ := backend.(bind.ContractTransactor)
	return &EthereumLivenessClient{
		key:        key,
		backend:    backend,
		transactor: transactor,
		contract:   bind.NewBoundContract(address, parsedLivenessABI, backend, transactor, nil),
		address:    address,
	}
}

// SetTransactOpts sets the transaction options required for functions that modify state.
func (c *EthereumLivenessClient) SetTransactOpts(auth *bind.TransactOpts) {
	c.auth = auth
}

func (c *EthereumLivenessClient) Key() interfaces.SequencingInfoKey {
	return c.key
}

// ContractAddress returns the address of the bound liveness contract.
func (c *EthereumLivenessClient) ContractAddress() common.Address {
	return c.address
}

func (c *EthereumLivenessClient) BlockNumber(ctx context.Context) (uint64, error) {
	head, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: block number: %w", interfaces.ErrBackendUnavailable, err)
	}
	return head, nil
}

func (c *EthereumLivenessClient) BlockMargin(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "BLOCK_MARGIN"); err != nil {
		return 0, fmt.Errorf("%w: BLOCK_MARGIN: %w", interfaces.ErrBackendUnavailable, err)
	}
	margin := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !margin.IsUint64() {
		return 0, fmt.Errorf("%w: block margin %s out of range", interfaces.ErrBackendUnavailable, margin)
	}
	return margin.Uint64(), nil
}

func (c *EthereumLivenessClient) SequencerList(ctx context.Context, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	return c.addressList(ctx, "getSequencerList", cluster, blockNumber)
}

func (c *EthereumLivenessClient) TxOrdererList(ctx context.Context, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	return c.addressList(ctx, "getTxOrdererList", cluster, blockNumber)
}

func (c *EthereumLivenessClient) addressList(ctx context.Context, method string, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	opts := &bind.CallOpts{
		Context:     ctx,
		BlockNumber: new(big.Int).SetUint64(blockNumber),
	}

	var out []interface{}
	if err := c.contract.Call(opts, &out, method, string(cluster)); err != nil {
		return nil, fmt.Errorf("%w: %s(%s) at block %d: %w", interfaces.ErrBackendUnavailable, method, cluster, blockNumber, err)
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// RegisterSequencer adds the transactor's address to the cluster's sequencer list.
func (c *EthereumLivenessClient) RegisterSequencer(cluster interfaces.ClusterID) (*types.Transaction, error) {
	if c.auth == nil || c.transactor == nil {
		return nil, ErrNoTransactOpts
	}
	return c.contract.Transact(c.auth, "registerSequencer", string(cluster))
}

// DeregisterSequencer removes the transactor's address from the cluster's sequencer list.
func (c *EthereumLivenessClient) DeregisterSequencer(cluster interfaces.ClusterID) (*types.Transaction, error) {
	if c.auth == nil || c.transactor == nil {
		return nil, ErrNoTransactOpts
	}
	return c.contract.Transact(c.auth, "deregisterSequencer", string(cluster))
}
