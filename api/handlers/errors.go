package handlers

import (
	"errors"

	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/interfaces"
)

// Stable JSON-RPC error codes for registry errors.
const (
	CodeSignatureMismatch           = -32001
	CodeUnsupportedPlatform         = -32002
	CodeSequencingInfoNotFound      = -32003
	CodePublisherAlreadyExists      = -32004
	CodeNotRegisteredInContract     = -32005
	CodeNotDeregisteredFromContract = -32006
	CodeHealthCheckFailed           = -32007
	CodeBackendUnavailable          = -32008
	CodeRecordNotFound              = -32009
)

var errorCodes = []struct {
	err  error
	code int
}{
	{interfaces.ErrSignatureMismatch, CodeSignatureMismatch},
	{interfaces.ErrUnsupportedPlatform, CodeUnsupportedPlatform},
	{interfaces.ErrSequencingInfoNotFound, CodeSequencingInfoNotFound},
	{interfaces.ErrPublisherAlreadyExists, CodePublisherAlreadyExists},
	{interfaces.ErrNotRegisteredInContract, CodeNotRegisteredInContract},
	{interfaces.ErrNotDeregisteredFromContract, CodeNotDeregisteredFromContract},
	{interfaces.ErrHealthCheckFailed, CodeHealthCheckFailed},
	{interfaces.ErrBackendUnavailable, CodeBackendUnavailable},
	{interfaces.ErrRecordNotFound, CodeRecordNotFound},
	{interfaces.ErrClusterInfoNotFound, CodeRecordNotFound},
	{jsonrpc.ErrInvalidParams, jsonrpc.CodeInvalidParams},
}

// ErrorFor maps a handler error to its JSON-RPC error object. Store failures
// and anything unrecognised are internal errors carrying the original message.
func ErrorFor(err error) *jsonrpc.Error {
	// Store failures take precedence over the sentinel they may wrap
	if errors.Is(err, interfaces.ErrStoreFailure) {
		return jsonrpc.NewError(jsonrpc.CodeInternalError, err.Error())
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return jsonrpc.NewError(ec.code, err.Error())
		}
	}
	return jsonrpc.DefaultErrorMapper(err)
}
