package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTOML = `
chain_name = "ethereum"
rpc_url = "https://example.invalid"
dataset_location = "US"
project_id = "my-gcp-project"
chain_tip_buffer = 64
datasets = ["blocks", "transactions"]

[metrics]
enabled = true
address = "0.0.0.0"
port = 9090
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesTOML(t *testing.T) {
	path := writeTempConfig(t, sampleTOML)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ethereum", cfg.ChainName)
	require.Equal(t, uint64(64), cfg.ChainTipBuffer)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	path := writeTempConfig(t, sampleTOML)
	t.Setenv("INDEXER_CHAIN_NAME", "zksync")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "zksync", cfg.ChainName)
}

func TestMustValidatePanicsOnMissingField(t *testing.T) {
	cfg := &Config{}
	require.Panics(t, cfg.MustValidate)
}

func TestMustValidatePassesOnCompleteConfig(t *testing.T) {
	cfg := &Config{
		ChainName: "ethereum", RpcUrl: "x", DatasetLocation: "US",
		ChainTipBuffer: 1, Datasets: []string{"blocks"}, ProjectID: "proj",
	}
	require.NotPanics(t, cfg.MustValidate)
}

func TestActiveDatasetsRejectsUnknown(t *testing.T) {
	cfg := &Config{Datasets: []string{"bogus"}}
	_, err := cfg.ActiveDatasets()
	require.Error(t, err)
}
