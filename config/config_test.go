package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeder")
	require.NoError(t, Init(path, false))

	raw, err := os.ReadFile(filepath.Join(path, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Set seeder external rpc url")
	assert.Contains(t, string(raw), `seeder_external_rpc_url = "http://127.0.0.1:6000"`)

	cfg, err := Load(&Overrides{Path: path})
	require.NoError(t, err)
	assert.Equal(t, DefaultExternalRpcUrl, cfg.ExternalRpcUrl)
	assert.Equal(t, DefaultInternalRpcUrl, cfg.InternalRpcUrl)
	assert.Equal(t, DefaultSigningKey, cfg.SigningKey)
	assert.Equal(t, "leveldb://"+filepath.Join(path, DatabaseDirName), cfg.DatabaseURI)

	addr, err := cfg.ExternalListenAddr()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6000", addr)
}

func TestInit_Existing(t *testing.T) {
	path := t.TempDir()
	marker := filepath.Join(path, "marker")
	require.NoError(t, os.WriteFile(marker, nil, 0o600))

	assert.ErrorIs(t, Init(path, false), ErrConfigExists)
	assert.FileExists(t, marker)

	require.NoError(t, Init(path, true))
	assert.NoFileExists(t, marker)
	assert.FileExists(t, filepath.Join(path, ConfigFileName))
}

func TestLoad_Overrides(t *testing.T) {
	path := t.TempDir()
	file := `seeder_external_rpc_url = "http://0.0.0.0:7000"
seeder_internal_rpc_url = "http://127.0.0.1:7001"
database_uri = "bolt:///var/lib/seeder/records.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(path, ConfigFileName), []byte(file), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(path, SigningKeyFileName), []byte(DefaultSigningKey+"\n"), 0o600))

	cfg, err := Load(&Overrides{Path: path, InternalRpcUrl: "http://127.0.0.1:9001", MetricsAddr: "127.0.0.1:9090"})
	require.NoError(t, err)
	assert.Equal(t, "http://0.0.0.0:7000", cfg.ExternalRpcUrl)
	assert.Equal(t, "http://127.0.0.1:9001", cfg.InternalRpcUrl)
	assert.Equal(t, "bolt:///var/lib/seeder/records.db", cfg.DatabaseURI)
	assert.Equal(t, "127.0.0.1:9090", cfg.MetricsAddr)
	assert.Equal(t, DefaultSigningKey, cfg.SigningKey, "trailing newline is trimmed")
}

func TestLoad_Errors(t *testing.T) {
	path := t.TempDir()

	_, err := Load(&Overrides{Path: path})
	assert.ErrorContains(t, err, "failed to load config")

	require.NoError(t, os.WriteFile(filepath.Join(path, ConfigFileName), []byte(`seeder_internal_rpc_url = "http://127.0.0.1:7001"`), 0o600))
	_, err = Load(&Overrides{Path: path})
	assert.ErrorIs(t, err, ErrEmptyExternalRpcUrl)

	_, err = Load(&Overrides{Path: path, ExternalRpcUrl: "http://127.0.0.1:7000"})
	assert.ErrorIs(t, err, ErrEmptySigningKey)

	require.NoError(t, os.WriteFile(filepath.Join(path, ConfigFileName), []byte(`not toml =`), 0o600))
	_, err = Load(&Overrides{Path: path})
	assert.ErrorContains(t, err, "failed to parse")
}

func TestListenAddr(t *testing.T) {
	addr, err := ListenAddr("http://0.0.0.0:6000")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:6000", addr)

	_, err = ListenAddr("http://seeder")
	assert.Error(t, err)
}
