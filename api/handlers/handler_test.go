package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/sequencer-seeder/healthcheck"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/liveness"
	"github.com/ruteri/sequencer-seeder/registry"
	"github.com/ruteri/sequencer-seeder/signature"
	"github.com/ruteri/sequencer-seeder/storage"
	"github.com/stretchr/testify/require"
)

const testCluster = "c1"

var radiusKey = interfaces.NewSequencingInfoKey(interfaces.PlatformEthereum, interfaces.FunctionLiveness, interfaces.ServiceProviderRadius)

type testEnv struct {
	handler    *Handler
	store      *storage.RecordStore
	registry   *registry.Registry
	factory    *liveness.StubClientFactory
	chain      *liveness.StubLivenessClient
	healthyURL string
	deadURL    string
}

// newTestEnv creates a handler with one configured radius backend whose
// chain head is at block 100 with a block margin of 10.
func newTestEnv(t *testing.T) *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine, err := storage.NewMemoryEngine()
	require.NoError(t, err)
	store := storage.NewRecordStore(engine, logger)
	t.Cleanup(func() { store.Close() })

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(healthy.Close)

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	env := &testEnv{
		store:      store,
		registry:   registry.NewRegistry(logger),
		factory:    liveness.NewStubClientFactory(),
		healthyURL: healthy.URL,
		deadURL:    deadURL,
	}
	env.handler = NewHandler(env.registry, store, env.factory, healthcheck.NewHTTPHealthChecker(time.Second, logger), signature.NewVerifier(), logger)

	_, err = env.handler.AddSequencingInfo(context.Background(), &AddSequencingInfoParams{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		Payload: interfaces.SequencingInfoPayload{
			LivenessRpcUrl:  "http://chain:8545",
			ContractAddress: "0x1111111111111111111111111111111111111111",
		},
	})
	require.NoError(t, err)

	env.chain = env.factory.Client(radiusKey)
	env.chain.SetHead(100)
	env.chain.SetBlockMargin(10)
	return env
}

func newSigner(t *testing.T) *signature.PrivateKeySigner {
	signer, err := signature.GeneratePrivateKeySigner()
	require.NoError(t, err)
	return signer
}

func sign[M any](t *testing.T, signer interfaces.Signer, msg M) *Signed[M] {
	sig, err := signer.SignMessage(&msg)
	require.NoError(t, err)
	return &Signed[M]{Message: msg, Signature: sig}
}

func member(signer interfaces.Signer) common.Address {
	return signer.Address().Common()
}

func (env *testEnv) registerSequencerMsg(signer interfaces.Signer, externalURL string) RegisterSequencerMessage {
	return RegisterSequencerMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         signer.Address(),
		ExternalRpcUrl:  externalURL,
		ClusterRpcUrl:   "http://cluster.internal:9000",
	}
}

func (env *testEnv) deregisterSequencerMsg(signer interfaces.Signer) DeregisterSequencerMessage {
	return DeregisterSequencerMessage{
		Platform:        interfaces.PlatformEthereum,
		ServiceProvider: interfaces.ServiceProviderRadius,
		ClusterID:       testCluster,
		Address:         signer.Address(),
	}
}

func (env *testEnv) sequencerRpcUrl(t *testing.T, addr interfaces.Address) *RpcUrl {
	resp, err := env.handler.GetSequencerRpcUrl(context.Background(), &GetRpcUrlParams{Address: addr})
	require.NoError(t, err)
	return resp.(*GetSequencerRpcUrlResponse).SequencerRpcUrl.RpcUrl
}
