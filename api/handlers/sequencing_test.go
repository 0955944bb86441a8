package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/liveness"
	"github.com/ruteri/sequencer-seeder/registry"
	"github.com/ruteri/sequencer-seeder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSequencingInfo_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.handler.AddSequencingInfo(ctx, &AddSequencingInfoParams{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		Payload: interfaces.SequencingInfoPayload{
			LivenessRpcUrl:  "http://other-chain:8545",
			ContractAddress: "0x2222222222222222222222222222222222222222",
		},
	})
	assert.ErrorIs(t, err, interfaces.ErrPublisherAlreadyExists)
	assert.Equal(t, CodePublisherAlreadyExists, ErrorFor(err).Code)

	// The first payload is kept in both the cache and the store
	resp, err := env.handler.GetSequencingInfo(ctx, &GetSequencingInfoParams{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://chain:8545", resp.(*GetSequencingInfoResponse).SequencingInfoPayload.LivenessRpcUrl)

	stored, err := storage.Get[interfaces.SequencingInfoPayload](env.store, storage.SequencingInfoPayloadKey(radiusKey))
	require.NoError(t, err)
	assert.Equal(t, "http://chain:8545", stored.LivenessRpcUrl)

	assert.Equal(t, 1, env.factory.Constructions(radiusKey), "liveness client is built once")
}

func TestAddSequencingInfo_SurvivesRestart(t *testing.T) {
	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	restarted := registry.NewRegistry(logger)
	factory := liveness.NewStubClientFactory()
	require.NoError(t, restarted.Bootstrap(context.Background(), env.store, factory))

	payload, err := restarted.GetSequencingInfo(radiusKey)
	require.NoError(t, err)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", payload.ContractAddress)

	_, err = restarted.GetLivenessClient(radiusKey)
	require.NoError(t, err)
	assert.Equal(t, 1, factory.Constructions(radiusKey))
}

func TestAddSequencingInfo_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.handler.AddSequencingInfo(ctx, &AddSequencingInfoParams{
		Platform:        interfaces.PlatformLocal,
		ServiceProvider: interfaces.ServiceProviderLocal,
		Payload: interfaces.SequencingInfoPayload{
			LivenessRpcUrl: "http://local:8545",
		},
	})
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedPlatform)

	_, err = env.handler.AddSequencingInfo(ctx, &AddSequencingInfoParams{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderLocal,
		Payload: interfaces.SequencingInfoPayload{
			LivenessRpcUrl:  "http://local:8545",
			ContractAddress: "not-an-address",
		},
	})
	assert.Equal(t, -32602, ErrorFor(err).Code)

	// Neither attempt is persisted
	list, err := storage.Get[storage.SequencingInfoList](env.store, storage.SequencingInfoListKey())
	require.NoError(t, err)
	assert.Equal(t, []interfaces.SequencingInfoKey{radiusKey}, list.Keys)

	resp, err := env.handler.GetSequencingInfos(ctx, &struct{}{})
	require.NoError(t, err)
	assert.Len(t, resp.(*GetSequencingInfosResponse).SequencingInfos, 1)
}

func TestGetSequencingInfo_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.handler.GetSequencingInfo(context.Background(), &GetSequencingInfoParams{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderLocal,
	})
	assert.ErrorIs(t, err, interfaces.ErrSequencingInfoNotFound)
}

func TestAddRollup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	executor := newSigner(t)

	msg := AddRollupMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         executor.Address(),
		RpcUrl:          env.healthyURL,
	}

	// No contract membership is needed
	_, err := env.handler.AddRollup(ctx, sign(t, executor, msg))
	require.NoError(t, err)

	msg.RpcUrl = env.healthyURL + "/v2"
	_, err = env.handler.AddRollup(ctx, sign(t, executor, msg))
	require.NoError(t, err)

	unknown := newSigner(t)
	resp, err := env.handler.GetExecutorRpcUrlList(ctx, &GetExecutorRpcUrlListParams{
		ExecutorAddressList: []interfaces.Address{executor.Address(), unknown.Address()},
	})
	require.NoError(t, err)
	entries := resp.(*GetExecutorRpcUrlListResponse).ExecutorRpcUrlList
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].RpcUrl)
	assert.Equal(t, env.healthyURL+"/v2", *entries[0].RpcUrl)
	assert.Equal(t, unknown.Address(), entries[1].Address)
	assert.Nil(t, entries[1].RpcUrl)
}

func TestAddRollup_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	executor := newSigner(t)

	base := AddRollupMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         executor.Address(),
		RpcUrl:          env.healthyURL,
	}

	_, err := env.handler.AddRollup(ctx, sign(t, newSigner(t), base))
	assert.ErrorIs(t, err, interfaces.ErrSignatureMismatch)

	dead := base
	dead.RpcUrl = env.deadURL
	_, err = env.handler.AddRollup(ctx, sign(t, executor, dead))
	assert.ErrorIs(t, err, interfaces.ErrHealthCheckFailed)

	noBackend := base
	noBackend.ServiceProvider = interfaces.ServiceProviderLocal
	_, err = env.handler.AddRollup(ctx, sign(t, executor, noBackend))
	assert.ErrorIs(t, err, interfaces.ErrSequencingInfoNotFound)

	local := base
	local.Platform = interfaces.PlatformLocal
	_, err = env.handler.AddRollup(ctx, sign(t, executor, local))
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedPlatform)

	_, err = storage.Get[interfaces.NodeRecord](env.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, executor.Address()))
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
}

func TestUpdateRollupRpcUrl(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	executor := newSigner(t)

	update := UpdateRollupRpcUrlMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         executor.Address(),
		RpcUrl:          env.healthyURL + "/v2",
	}

	_, err := env.handler.UpdateRollupRpcUrl(ctx, sign(t, executor, update))
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
	assert.Equal(t, CodeRecordNotFound, ErrorFor(err).Code)
	_, err = storage.Get[interfaces.NodeRecord](env.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, executor.Address()))
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound, "update does not create a record")

	_, err = env.handler.AddRollup(ctx, sign(t, executor, AddRollupMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         executor.Address(),
		RpcUrl:          env.healthyURL,
	}))
	require.NoError(t, err)

	_, err = env.handler.UpdateRollupRpcUrl(ctx, sign(t, executor, update))
	require.NoError(t, err)

	record, err := storage.Get[interfaces.NodeRecord](env.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, executor.Address()))
	require.NoError(t, err)
	assert.Equal(t, env.healthyURL+"/v2", record.ExternalRpcUrl)

	_, err = env.handler.UpdateRollupRpcUrl(ctx, sign(t, newSigner(t), update))
	assert.ErrorIs(t, err, interfaces.ErrSignatureMismatch)

	dead := update
	dead.RpcUrl = env.deadURL
	_, err = env.handler.UpdateRollupRpcUrl(ctx, sign(t, executor, dead))
	assert.ErrorIs(t, err, interfaces.ErrHealthCheckFailed)

	noBackend := update
	noBackend.ServiceProvider = interfaces.ServiceProviderLocal
	_, err = env.handler.UpdateRollupRpcUrl(ctx, sign(t, executor, noBackend))
	assert.ErrorIs(t, err, interfaces.ErrSequencingInfoNotFound)

	invalid := update
	invalid.RpcUrl = "not a url"
	_, err = env.handler.UpdateRollupRpcUrl(ctx, sign(t, executor, invalid))
	assert.Equal(t, jsonrpc.CodeInvalidParams, ErrorFor(err).Code)

	record, err = storage.Get[interfaces.NodeRecord](env.store, storage.NodeRecordKey(interfaces.RollupExecutorNode, executor.Address()))
	require.NoError(t, err)
	assert.Equal(t, env.healthyURL+"/v2", record.ExternalRpcUrl, "rejected updates leave the record unchanged")
}

func TestGetExecutorRpcInfoList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	executor, unknown := newSigner(t), newSigner(t)

	_, err := env.handler.AddRollup(ctx, sign(t, executor, AddRollupMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         executor.Address(),
		RpcUrl:          env.healthyURL,
	}))
	require.NoError(t, err)

	resp, err := env.handler.GetExecutorRpcInfoList(ctx, &GetExecutorRpcUrlListParams{
		ExecutorAddressList: []interfaces.Address{unknown.Address(), executor.Address()},
	})
	require.NoError(t, err)
	infos := resp.(*GetExecutorRpcInfoListResponse).ExecutorRpcInfoList
	require.Len(t, infos, 1, "unknown addresses are skipped")
	assert.Equal(t, interfaces.NodeRecord{Address: executor.Address(), ExternalRpcUrl: env.healthyURL}, infos[0])
}
