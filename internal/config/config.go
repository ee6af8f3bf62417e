// Package config loads the structured run configuration (spec §6): a TOML
// file plus INDEXER_* environment overrides, validated the way
// turbo/cli validates erigon's zkevm flags — panic with the missing
// flag's name rather than limping along with a zero value.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/lgingerich/evm-indexer/internal/models"
)

// MetricsConfig is the telemetry HTTP server's own configuration.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Port    uint16 `toml:"port"`
}

// Config is the full structured configuration consumed by cmd/indexer.
type Config struct {
	ChainName       string   `toml:"chain_name"`
	StartBlock      *uint64  `toml:"start_block"`
	EndBlock        *uint64  `toml:"end_block"`
	ChainTipBuffer  uint64   `toml:"chain_tip_buffer"`
	RpcUrl          string   `toml:"rpc_url"`
	DatasetLocation string   `toml:"dataset_location"`
	Datasets        []string `toml:"datasets"`
	ProjectID       string   `toml:"project_id"`
	LogDir          string   `toml:"log_dir"`

	Metrics MetricsConfig `toml:"metrics"`
}

// ActiveDatasets parses the configured dataset names into a DatasetSet,
// rejecting anything outside the four known datasets.
func (c *Config) ActiveDatasets() (models.DatasetSet, error) {
	set := make(models.DatasetSet, len(c.Datasets))
	for _, name := range c.Datasets {
		d := models.Dataset(name)
		valid := false
		for _, known := range models.AllDatasets {
			if d == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("config: unknown dataset %q", name)
		}
		set[d] = true
	}
	return set, nil
}

// Load reads a TOML file from path and applies INDEXER_* environment
// overrides on top of it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyEnvOverrides maps INDEXER_* environment variables onto the matching
// config field, letting deployment environments override the file without
// editing it.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("INDEXER_CHAIN_NAME"); ok {
		cfg.ChainName = v
	}
	if v, ok := os.LookupEnv("INDEXER_RPC_URL"); ok {
		cfg.RpcUrl = v
	}
	if v, ok := os.LookupEnv("INDEXER_DATASET_LOCATION"); ok {
		cfg.DatasetLocation = v
	}
	if v, ok := os.LookupEnv("INDEXER_PROJECT_ID"); ok {
		cfg.ProjectID = v
	}
	if v, ok := os.LookupEnv("INDEXER_LOG_DIR"); ok {
		cfg.LogDir = v
	}
	if v, ok := os.LookupEnv("INDEXER_CHAIN_TIP_BUFFER"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.ChainTipBuffer = n
		}
	}
	if v, ok := os.LookupEnv("INDEXER_START_BLOCK"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.StartBlock = &n
		}
	}
	if v, ok := os.LookupEnv("INDEXER_END_BLOCK"); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.EndBlock = &n
		}
	}
	if v, ok := os.LookupEnv("INDEXER_DATASETS"); ok {
		cfg.Datasets = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("INDEXER_METRICS_ENABLED"); ok {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
	if v, ok := os.LookupEnv("INDEXER_METRICS_ADDRESS"); ok {
		cfg.Metrics.Address = v
	}
}

// MustValidate panics naming the first missing required field, in the
// style of erigon's checkFlag: a misconfigured process should fail loudly
// at startup rather than run with a silently zeroed setting.
func (c *Config) MustValidate() {
	checkFlag := func(name string, empty bool) {
		if empty {
			panic(fmt.Sprintf("config: required field not set: %s", name))
		}
	}
	checkFlag("chain_name", c.ChainName == "")
	checkFlag("rpc_url", c.RpcUrl == "")
	checkFlag("dataset_location", c.DatasetLocation == "")
	checkFlag("chain_tip_buffer", c.ChainTipBuffer == 0)
	checkFlag("datasets", len(c.Datasets) == 0)
	checkFlag("project_id", c.ProjectID == "")

	if _, err := c.ActiveDatasets(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	if c.Metrics.Enabled {
		checkFlag("metrics.address", c.Metrics.Address == "")
		checkFlag("metrics.port", c.Metrics.Port == 0)
	}
}
