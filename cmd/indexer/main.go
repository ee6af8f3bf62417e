// Command indexer runs the EVM ETL pipeline end to end: it loads
// configuration, wires the RPC facade, block processor, sink pipeline and
// warehouse adapter, then drives the loop until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerwatch/log/v3"
	"github.com/urfave/cli/v2"

	"github.com/lgingerich/evm-indexer/internal/blockprocessor"
	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/config"
	"github.com/lgingerich/evm-indexer/internal/driver"
	"github.com/lgingerich/evm-indexer/internal/logging"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
	"github.com/lgingerich/evm-indexer/internal/sink"
	"github.com/lgingerich/evm-indexer/internal/telemetry"
	"github.com/lgingerich/evm-indexer/internal/warehouse"
)

var configPathFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the TOML config file",
	Value:   "config.toml",
	EnvVars: []string{"INDEXER_CONFIG"},
}

func main() {
	app := &cli.App{
		Name:  "indexer",
		Usage: "EVM-compatible chain ETL indexer",
		Flags: []cli.Flag{configPathFlag},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("[indexer] fatal", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	cfg.MustValidate()

	logger := logging.Setup(logging.Options{
		ConsoleLevel: log.LvlInfo,
		DirPath:      cfg.LogDir,
		FilePrefix:   "indexer",
		DirLevel:     log.LvlDebug,
	})

	active, err := cfg.ActiveDatasets()
	if err != nil {
		return err
	}

	metrics := telemetry.New()

	transport := newHTTPTransport(cfg.RpcUrl)
	rpc := rpcclient.New(transport, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chainID, err := rpc.GetChainId(ctx)
	if err != nil {
		return fmt.Errorf("indexer: fetch chain id: %w", err)
	}
	info := chain.NewInfo(chainID, cfg.ChainName)
	logger.Info("[indexer] chain identified", "chain_id", info.ID, "name", info.Name, "dialect", info.Dialect.String())

	if cfg.Metrics.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Metrics.Address, cfg.Metrics.Port)
		metricsServer := telemetry.NewServer(addr, metrics)
		metricsServer.Start()
		defer metricsServer.Shutdown(context.Background())
	}

	wh, err := warehouse.New(ctx, cfg.ProjectID, metrics)
	if err != nil {
		return fmt.Errorf("indexer: build warehouse client: %w", err)
	}
	defer wh.Close()

	processor := blockprocessor.New(rpc, info.Dialect, info.ID, active)
	pipeline := sink.NewPipeline(wh, info.Name, metrics)
	d := driver.New(rpc, wh, pipeline, processor, metrics, info.Name, active, cfg.ChainTipBuffer, cfg.StartBlock, cfg.EndBlock)

	if err := d.EnsureSchema(ctx, cfg.DatasetLocation); err != nil {
		return fmt.Errorf("indexer: ensure schema: %w", err)
	}

	cursor, err := d.ResumeCursor(ctx)
	if err != nil {
		return fmt.Errorf("indexer: resume cursor: %w", err)
	}
	logger.Info("[indexer] starting from block", "block", cursor)

	shutdown := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("[indexer] received signal, draining", "signal", sig.String())
		close(shutdown)
	}()

	if err := d.Run(ctx, cursor, shutdown); err != nil {
		return fmt.Errorf("indexer: run: %w", err)
	}

	logger.Info("[indexer] shut down cleanly")
	return nil
}
