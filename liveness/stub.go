package liveness

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

type membershipChange struct {
	fromBlock uint64
	members   []common.Address
}

type listID struct {
	kind    interfaces.NodeKind
	cluster interfaces.ClusterID
}

// StubLivenessClient is an in-memory liveness contract with a settable head and
// block-indexed membership history. Used for local development and tests.
type StubLivenessClient struct {
	mu      sync.RWMutex
	key     interfaces.SequencingInfoKey
	head    uint64
	margin  uint64
	history map[listID][]membershipChange
	err     error
}

func NewStubLivenessClient(key interfaces.SequencingInfoKey) *StubLivenessClient {
	return &StubLivenessClient{
		key:     key,
		history: make(map[listID][]membershipChange),
	}
}

// SetHead moves the chain head.
func (s *StubLivenessClient) SetHead(head uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head = head
}

func (s *StubLivenessClient) SetBlockMargin(margin uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.margin = margin
}

// SetError makes every subsequent call fail with err wrapped in ErrBackendUnavailable.
// A nil err restores normal operation.
func (s *StubLivenessClient) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetMembers records the member list of a cluster effective from fromBlock onwards.
func (s *StubLivenessClient) SetMembers(kind interfaces.NodeKind, cluster interfaces.ClusterID, fromBlock uint64, members ...common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := listID{kind: normalizeKind(kind), cluster: cluster}
	changes := s.history[id]

	i := sort.Search(len(changes), func(i int) bool { return changes[i].fromBlock >= fromBlock })
	change := membershipChange{fromBlock: fromBlock, members: append([]common.Address(nil), members...)}
	if i < len(changes) && changes[i].fromBlock == fromBlock {
		changes[i] = change
	} else {
		changes = append(changes, membershipChange{})
		copy(changes[i+1:], changes[i:])
		changes[i] = change
	}
	s.history[id] = changes
}

func (s *StubLivenessClient) Key() interfaces.SequencingInfoKey {
	return s.key
}

func (s *StubLivenessClient) BlockNumber(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return 0, fmt.Errorf("%w: %w", interfaces.ErrBackendUnavailable, s.err)
	}
	return s.head, nil
}

func (s *StubLivenessClient) BlockMargin(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return 0, fmt.Errorf("%w: %w", interfaces.ErrBackendUnavailable, s.err)
	}
	return s.margin, nil
}

func (s *StubLivenessClient) SequencerList(ctx context.Context, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	return s.membersAt(interfaces.SequencerNode, cluster, blockNumber)
}

func (s *StubLivenessClient) TxOrdererList(ctx context.Context, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	return s.membersAt(interfaces.TxOrdererNode, cluster, blockNumber)
}

func (s *StubLivenessClient) membersAt(kind interfaces.NodeKind, cluster interfaces.ClusterID, blockNumber uint64) ([]common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrBackendUnavailable, s.err)
	}

	changes := s.history[listID{kind: kind, cluster: cluster}]
	// Last change at or before blockNumber
	i := sort.Search(len(changes), func(i int) bool { return changes[i].fromBlock > blockNumber })
	if i == 0 {
		return []common.Address{}, nil
	}
	return append([]common.Address(nil), changes[i-1].members...), nil
}

func normalizeKind(kind interfaces.NodeKind) interfaces.NodeKind {
	if kind == interfaces.TxOrdererNode {
		return interfaces.TxOrdererNode
	}
	return interfaces.SequencerNode
}

// StubClientFactory hands out one StubLivenessClient per backend key.
type StubClientFactory struct {
	mu      sync.Mutex
	clients map[interfaces.SequencingInfoKey]*StubLivenessClient
	calls   map[interfaces.SequencingInfoKey]int
}

func NewStubClientFactory() *StubClientFactory {
	return &StubClientFactory{
		clients: make(map[interfaces.SequencingInfoKey]*StubLivenessClient),
		calls:   make(map[interfaces.SequencingInfoKey]int),
	}
}

// Client returns the stub for key, creating it if needed, so tests can
// configure membership before the registry asks for it.
func (f *StubClientFactory) Client(key interfaces.SequencingInfoKey) *StubLivenessClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientLocked(key)
}

func (f *StubClientFactory) clientLocked(key interfaces.SequencingInfoKey) *StubLivenessClient {
	client, ok := f.clients[key]
	if !ok {
		client = NewStubLivenessClient(key)
		f.clients[key] = client
	}
	return client
}

// Constructions reports how many times LivenessClientFor was called for key.
func (f *StubClientFactory) Constructions(key interfaces.SequencingInfoKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *StubClientFactory) LivenessClientFor(ctx context.Context, key interfaces.SequencingInfoKey, payload *interfaces.SequencingInfoPayload) (interfaces.LivenessClient, error) {
	if key.Platform != interfaces.PlatformEthereum {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedPlatform, key.Platform)
	}
	if err := payload.Validate(key.Platform); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	return f.clientLocked(key), nil
}
