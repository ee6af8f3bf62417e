// Package driver is the Driver Loop (spec §4.9): resumes from the
// warehouse, enforces the chain-tip buffer, applies sink backpressure,
// invokes the Block Processor, fans rows to the Sink Pipeline, updates
// telemetry, advances the cursor, and drains on shutdown.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/ledgerwatch/log/v3"

	"github.com/lgingerich/evm-indexer/internal/blockprocessor"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/sink"
	"github.com/lgingerich/evm-indexer/internal/warehouse"
)

const pollInterval = 1 * time.Second

// TipSource is the subset of the RPC Facade the loop needs directly (the
// Block Processor owns everything else).
type TipSource interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
}

// Warehouse is the subset of the Warehouse Adapter the driver drives
// directly at startup; InsertRows is only ever called by the sink workers.
type Warehouse interface {
	CreateDataset(ctx context.Context, name, location string) error
	CreateTable(ctx context.Context, datasetName, tableName string, schema bigquery.Schema) error
	ResumePoint(ctx context.Context, datasetName string, active []models.Dataset) (uint64, error)
}

// Driver owns one run of the loop.
type Driver struct {
	rpc       TipSource
	wh        Warehouse
	pipeline  *sink.Pipeline
	processor *blockprocessor.Processor
	metrics   Metrics

	datasetName string
	active      models.DatasetSet
	tipBuffer   uint64
	startBlock  *uint64
	endBlock    *uint64
}

type Metrics interface {
	ObserveBlockProcessed(blockNumber uint64, d time.Duration)
	ObserveChainTip(latest, cursor uint64)
}

func New(rpc TipSource, wh Warehouse, pipeline *sink.Pipeline, processor *blockprocessor.Processor,
	metrics Metrics, datasetName string, active models.DatasetSet, tipBuffer uint64, startBlock, endBlock *uint64) *Driver {
	return &Driver{
		rpc: rpc, wh: wh, pipeline: pipeline, processor: processor, metrics: metrics,
		datasetName: datasetName, active: active, tipBuffer: tipBuffer, startBlock: startBlock, endBlock: endBlock,
	}
}

// EnsureSchema creates the dataset and every active-dataset table,
// idempotently (spec §4.9 step 2).
func (d *Driver) EnsureSchema(ctx context.Context, location string) error {
	if err := d.wh.CreateDataset(ctx, d.datasetName, location); err != nil {
		return err
	}
	for _, ds := range models.AllDatasets {
		if !d.active.Has(ds) {
			continue
		}
		schema, ok := warehouse.SchemaFor(string(ds))
		if !ok {
			return fmt.Errorf("driver: no schema registered for dataset %s", ds)
		}
		if err := d.wh.CreateTable(ctx, d.datasetName, string(ds), schema); err != nil {
			return err
		}
	}
	return nil
}

// ResumeCursor determines the starting block (spec §4.9 step 3): the
// warehouse's own resume point, falling back to the configured start
// block only when the warehouse holds nothing yet.
func (d *Driver) ResumeCursor(ctx context.Context) (uint64, error) {
	active := make([]models.Dataset, 0, len(models.AllDatasets))
	for _, ds := range models.AllDatasets {
		if d.active.Has(ds) {
			active = append(active, ds)
		}
	}

	resume, err := d.wh.ResumePoint(ctx, d.datasetName, active)
	if err != nil {
		return 0, err
	}
	if resume == 0 && d.startBlock != nil {
		return *d.startBlock, nil
	}
	return resume, nil
}

// Run executes the loop until shutdown is signaled or the cursor passes
// the configured end block, then drains the sink pipeline. A fatal
// block-processing error is returned at once, without draining.
func (d *Driver) Run(ctx context.Context, cursor uint64, shutdown <-chan struct{}) error {
	d.pipeline.Run(ctx)

	for {
		select {
		case <-shutdown:
			return d.pipeline.Shutdown()
		default:
		}

		if d.endBlock != nil && cursor > *d.endBlock {
			return d.pipeline.Shutdown()
		}

		latest, err := d.rpc.GetLatestBlockNumber(ctx)
		if err != nil {
			log.Error("[driver] failed to fetch latest block", "err", err)
			if !sleepOrShutdown(shutdown) {
				return d.pipeline.Shutdown()
			}
			continue
		}
		d.metrics.ObserveChainTip(latest, cursor)

		var tipThreshold uint64
		if latest > d.tipBuffer {
			tipThreshold = latest - d.tipBuffer
		}
		if cursor > tipThreshold {
			if !sleepOrShutdown(shutdown) {
				return d.pipeline.Shutdown()
			}
			continue
		}

		for !d.pipeline.CheckCapacity() {
			if !sleepOrShutdown(shutdown) {
				return d.pipeline.Shutdown()
			}
		}

		start := time.Now()
		batch, err := d.processor.Process(ctx, cursor)
		if errors.Is(err, blockprocessor.ErrPendingL1Batch) {
			if !sleepOrShutdown(shutdown) {
				return d.pipeline.Shutdown()
			}
			continue
		}
		if err != nil {
			log.Error("[driver] fatal error processing block", "block", cursor, "err", err)
			return fmt.Errorf("driver: process block %d: %w", cursor, err)
		}

		for _, ds := range models.AllDatasets {
			if !d.active.Has(ds) {
				continue
			}
			rows := sink.RowsForDataset(ds, batch)
			d.pipeline.Send(ds, cursor, rows)
		}

		d.metrics.ObserveBlockProcessed(cursor, time.Since(start))
		cursor++
	}
}

// sleepOrShutdown sleeps pollInterval unless shutdown fires first, in
// which case it returns false so the caller can drain immediately.
func sleepOrShutdown(shutdown <-chan struct{}) bool {
	select {
	case <-time.After(pollInterval):
		return true
	case <-shutdown:
		return false
	}
}
