// Package interfaces defines the core interfaces and types for the sequencer seeder.
// It provides the contract between different components without implementation details.
package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Platform identifies the chain family a backend lives on.
type Platform string

const (
	PlatformEthereum Platform = "ethereum"
	PlatformLocal    Platform = "local"
)

// ParsePlatform accepts both the snake_case wire form and the capitalised form.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(s) {
	case "ethereum":
		return PlatformEthereum, nil
	case "local":
		return PlatformLocal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
}

func (p Platform) String() string {
	return string(p)
}

// UnmarshalJSON validates the platform name.
func (p *Platform) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePlatform(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SequencingFunctionType distinguishes liveness backends from validation backends.
type SequencingFunctionType string

const (
	FunctionLiveness   SequencingFunctionType = "liveness"
	FunctionValidation SequencingFunctionType = "validation"
)

func ParseSequencingFunctionType(s string) (SequencingFunctionType, error) {
	switch strings.ToLower(s) {
	case "", "liveness":
		return FunctionLiveness, nil
	case "validation":
		return FunctionValidation, nil
	default:
		return "", fmt.Errorf("unsupported sequencing function type: %q", s)
	}
}

func (f SequencingFunctionType) String() string {
	return string(f)
}

// UnmarshalJSON treats an empty value as liveness.
func (f *SequencingFunctionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSequencingFunctionType(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ServiceProvider identifies the operator of a liveness contract.
type ServiceProvider string

const (
	ServiceProviderRadius ServiceProvider = "radius"
	ServiceProviderLocal  ServiceProvider = "local"
)

func ParseServiceProvider(s string) (ServiceProvider, error) {
	switch strings.ToLower(s) {
	case "radius":
		return ServiceProviderRadius, nil
	case "local":
		return ServiceProviderLocal, nil
	default:
		return "", fmt.Errorf("unsupported service provider: %q", s)
	}
}

func (sp ServiceProvider) String() string {
	return string(sp)
}

func (sp *ServiceProvider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseServiceProvider(s)
	if err != nil {
		return err
	}
	*sp = parsed
	return nil
}

// SequencingInfoKey identifies one backend instance. It is comparable and used
// as a map key throughout the registry.
type SequencingInfoKey struct {
	Platform               Platform
	SequencingFunctionType SequencingFunctionType
	ServiceProvider        ServiceProvider
}

// NewSequencingInfoKey builds a key, defaulting the function type to liveness.
func NewSequencingInfoKey(platform Platform, function SequencingFunctionType, provider ServiceProvider) SequencingInfoKey {
	if function == "" {
		function = FunctionLiveness
	}
	return SequencingInfoKey{
		Platform:               platform,
		SequencingFunctionType: function,
		ServiceProvider:        provider,
	}
}

// String returns platform/function/provider.
func (k SequencingInfoKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Platform, k.SequencingFunctionType, k.ServiceProvider)
}

// ParseSequencingInfoKey is the inverse of String.
func ParseSequencingInfoKey(s string) (SequencingInfoKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return SequencingInfoKey{}, fmt.Errorf("invalid sequencing info key: %q", s)
	}
	platform, err := ParsePlatform(parts[0])
	if err != nil {
		return SequencingInfoKey{}, err
	}
	function, err := ParseSequencingFunctionType(parts[1])
	if err != nil {
		return SequencingInfoKey{}, err
	}
	provider, err := ParseServiceProvider(parts[2])
	if err != nil {
		return SequencingInfoKey{}, err
	}
	return NewSequencingInfoKey(platform, function, provider), nil
}

// MarshalText lets the key be used as a JSON object key.
func (k SequencingInfoKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SequencingInfoKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSequencingInfoKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SequencingInfoPayload is the configuration of one backend. It is never
// mutated after it has been added.
type SequencingInfoPayload struct {
	LivenessRpcUrl       string `json:"liveness_rpc_url" cbor:"1,keyasint"`
	LivenessWebsocketUrl string `json:"liveness_websocket_url,omitempty" cbor:"2,keyasint,omitempty"`
	ContractAddress      string `json:"contract_address" cbor:"3,keyasint"`
}

// Validate checks the payload against the platform it is registered for.
func (p *SequencingInfoPayload) Validate(platform Platform) error {
	if p.LivenessRpcUrl == "" {
		return errors.New("liveness_rpc_url is required")
	}
	if platform == PlatformEthereum && !common.IsHexAddress(p.ContractAddress) {
		return fmt.Errorf("invalid contract address: %q", p.ContractAddress)
	}
	return nil
}

// ClusterID identifies one logical cluster under one backend.
type ClusterID string

// NodeKind selects the record family a node belongs to.
type NodeKind int

const (
	SequencerNode NodeKind = iota
	TxOrdererNode
	RollupExecutorNode
)

// String returns the kind name used in logs and metrics.
func (k NodeKind) String() string {
	switch k {
	case SequencerNode:
		return "sequencer"
	case TxOrdererNode:
		return "tx_orderer"
	case RollupExecutorNode:
		return "rollup_executor"
	default:
		return "unknown"
	}
}

// Address is a 20-byte chain account identifier. It is directly convertible to
// the go-ethereum address type returned by the liveness contract.
type Address common.Address

// NewAddressFromHex parses a hex address with or without the 0x prefix.
func NewAddressFromHex(s string) (Address, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(clean) != 40 {
		return Address{}, errors.New("invalid address length: hex string must be 40 characters")
	}
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex format: %w", err)
	}
	return NewAddressFromBytes(raw)
}

// NewAddressFromBytes copies a 20-byte slice into an Address.
func NewAddressFromBytes(b []byte) (Address, error) {
	if len(b) != common.AddressLength {
		return Address{}, errors.New("invalid address length: must be 20 bytes")
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Common converts to the go-ethereum address type.
func (a Address) Common() common.Address {
	return common.Address(a)
}

// Hex returns the lowercase 0x-prefixed form, which is also the store key.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// Equal compares against a go-ethereum address.
func (a Address) Equal(other common.Address) bool {
	return common.Address(a) == other
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON accepts either a hex string or an array of 20 byte values.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := NewAddressFromHex(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}

	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("address must be a hex string or a byte array")
	}
	b := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return fmt.Errorf("invalid address byte at index %d: %d", i, v)
		}
		b[i] = byte(v)
	}
	parsed, err := NewAddressFromBytes(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ContainsAddress reports whether addr is in the contract member list.
func ContainsAddress(list []common.Address, addr Address) bool {
	for _, member := range list {
		if addr.Equal(member) {
			return true
		}
	}
	return false
}

// NodeRecord is the persisted endpoint information for a sequencer,
// transaction orderer or rollup executor.
type NodeRecord struct {
	Address        Address `json:"address" cbor:"1,keyasint"`
	ExternalRpcUrl string  `json:"external_rpc_url" cbor:"2,keyasint"`
	ClusterRpcUrl  string  `json:"cluster_rpc_url,omitempty" cbor:"3,keyasint,omitempty"`
}

// ClusterMember is one entry of a locally known cluster membership.
type ClusterMember struct {
	Address Address `json:"address" cbor:"1,keyasint"`
	RpcUrl  string  `json:"rpc_url,omitempty" cbor:"2,keyasint,omitempty"`
}

// ClusterInfo is the locally known membership of one cluster, kept in
// registration order.
type ClusterInfo struct {
	ClusterID  ClusterID         `json:"cluster_id" cbor:"1,keyasint"`
	Key        SequencingInfoKey `json:"sequencing_info_key" cbor:"2,keyasint"`
	Sequencers []ClusterMember   `json:"sequencers" cbor:"3,keyasint"`
	TxOrderers []ClusterMember   `json:"tx_orderers" cbor:"4,keyasint"`
}

// Clone returns a deep copy safe to hand out of a shared cache.
func (c *ClusterInfo) Clone() *ClusterInfo {
	clone := &ClusterInfo{
		ClusterID:  c.ClusterID,
		Key:        c.Key,
		Sequencers: append([]ClusterMember(nil), c.Sequencers...),
		TxOrderers: append([]ClusterMember(nil), c.TxOrderers...),
	}
	return clone
}

func (c *ClusterInfo) members(kind NodeKind) *[]ClusterMember {
	if kind == TxOrdererNode {
		return &c.TxOrderers
	}
	return &c.Sequencers
}

// Upsert adds the member or replaces its URL, keeping its original position.
func (c *ClusterInfo) Upsert(kind NodeKind, member ClusterMember) {
	list := c.members(kind)
	for i := range *list {
		if (*list)[i].Address == member.Address {
			(*list)[i] = member
			return
		}
	}
	*list = append(*list, member)
}

// Remove deletes the member and reports whether it was present.
func (c *ClusterInfo) Remove(kind NodeKind, addr Address) bool {
	list := c.members(kind)
	for i := range *list {
		if (*list)[i].Address == addr {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
