// Package sink is the Sink Pipeline (spec §4.6): four bounded
// single-producer-single-consumer queues, one per dataset, each drained by
// a long-running worker that calls the Warehouse Adapter's InsertRows.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ledgerwatch/log/v3"

	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/telemetry"
	"github.com/lgingerich/evm-indexer/internal/warehouse"
)

// QueueCapacity is C in spec §4.6.
const QueueCapacity = 64

// capacityThreshold is ceil(C * 0.2) = 13: checkCapacity requires every
// queue to have at least this many free slots.
const capacityThreshold = 13

// ErrDrainTimeout is returned when shutdown doesn't complete within the
// 30-second hard deadline.
var ErrDrainTimeout = errors.New("sink: drain did not complete within 30s")

const drainTimeout = 30 * time.Second

// Inserter is the Warehouse Adapter surface the sink needs.
type Inserter interface {
	InsertRows(ctx context.Context, datasetName, tableName string, rows []warehouse.Row) error
}

type queueMsg struct {
	blockNumber uint64
	rows        []warehouse.Row
}

// Pipeline owns the four bounded queues and their consumer goroutines.
type Pipeline struct {
	wh          Inserter
	datasetName string
	metrics     *telemetry.Recorder

	queues   map[models.Dataset]chan queueMsg
	progress map[models.Dataset]*atomic.Uint64

	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

func NewPipeline(wh Inserter, datasetName string, metrics *telemetry.Recorder) *Pipeline {
	p := &Pipeline{
		wh:          wh,
		datasetName: datasetName,
		metrics:     metrics,
		queues:      make(map[models.Dataset]chan queueMsg, len(models.AllDatasets)),
		progress:    make(map[models.Dataset]*atomic.Uint64, len(models.AllDatasets)),
		shutdownCh:  make(chan struct{}),
	}
	for _, d := range models.AllDatasets {
		p.queues[d] = make(chan queueMsg, QueueCapacity)
		p.progress[d] = &atomic.Uint64{}
	}
	return p
}

// Run starts the four consumer goroutines. Call once before Send/Shutdown.
func (p *Pipeline) Run(ctx context.Context) {
	for _, d := range models.AllDatasets {
		p.wg.Add(1)
		go p.consume(ctx, d)
	}
}

func (p *Pipeline) consume(ctx context.Context, dataset models.Dataset) {
	defer p.wg.Done()
	queue := p.queues[dataset]
	table := string(dataset)

	// InsertRows already retries transient errors internally (the shared
	// retry executor, spec §7); an error reaching here means retries were
	// exhausted, so this is a genuinely unrecoverable insert and progress
	// is correctly left un-advanced rather than silently skipped.
	insertAndAdvance := func(msg queueMsg) {
		if err := p.wh.InsertRows(ctx, p.datasetName, table, msg.rows); err != nil {
			log.Error(fmt.Sprintf("[sink] insert into %s failed after retries exhausted", table), "block", msg.blockNumber, "err", err)
			return
		}
		p.progress[dataset].Store(msg.blockNumber)
	}

	for {
		select {
		case msg := <-queue:
			insertAndAdvance(msg)
		case <-p.shutdownCh:
			// Drain whatever remains, then exit.
			for {
				select {
				case msg := <-queue:
					insertAndAdvance(msg)
				default:
					return
				}
			}
		}
	}
}

// Send enqueues rows for one dataset at the given block number. It blocks
// if the queue is full — checkCapacity is the driver's advance warning,
// this is the backstop.
func (p *Pipeline) Send(dataset models.Dataset, blockNumber uint64, rows []warehouse.Row) {
	p.queues[dataset] <- queueMsg{blockNumber: blockNumber, rows: rows}
}

// CheckCapacity reports whether every queue has at least capacityThreshold
// free slots; the driver sleeps and retries when this is false.
func (p *Pipeline) CheckCapacity() bool {
	for _, d := range models.AllDatasets {
		available := QueueCapacity - len(p.queues[d])
		p.metrics.SetChannelCapacity(string(d), available)
		if available < capacityThreshold {
			return false
		}
	}
	return true
}

// Progress returns the last block flushed for a dataset.
func (p *Pipeline) Progress(dataset models.Dataset) uint64 {
	return p.progress[dataset].Load()
}

// Shutdown signals drain and waits up to 30s for every worker to finish.
func (p *Pipeline) Shutdown() error {
	close(p.shutdownCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(drainTimeout):
		return ErrDrainTimeout
	}
}

// RowsForDataset converts one dataset's transformed rows into warehouse
// Rows, attaching the deterministic insert id for each (spec §4.8).
func RowsForDataset(dataset models.Dataset, batch models.TransformedBatch) []warehouse.Row {
	switch dataset {
	case models.DatasetBlocks:
		rows := make([]warehouse.Row, len(batch.Blocks))
		for i, b := range batch.Blocks {
			rows[i] = warehouse.Row{InsertID: warehouse.InsertIDForBlock(b.BlockNumber), JSON: b}
		}
		return rows
	case models.DatasetTransactions:
		rows := make([]warehouse.Row, len(batch.Txs))
		for i, tx := range batch.Txs {
			rows[i] = warehouse.Row{InsertID: warehouse.InsertIDForTx(tx.BlockNumber, tx.TxHash), JSON: tx}
		}
		return rows
	case models.DatasetLogs:
		rows := make([]warehouse.Row, len(batch.Logs))
		for i, l := range batch.Logs {
			rows[i] = warehouse.Row{InsertID: warehouse.InsertIDForLog(l.BlockNumber, l.TxHash, l.TxIndex, l.LogIndex), JSON: l}
		}
		return rows
	case models.DatasetTraces:
		rows := make([]warehouse.Row, len(batch.Traces))
		for i, tr := range batch.Traces {
			rows[i] = warehouse.Row{InsertID: warehouse.InsertIDForTrace(tr.BlockNumber, tr.TxHash, tr.TraceAddress), JSON: tr}
		}
		return rows
	default:
		return nil
	}
}
