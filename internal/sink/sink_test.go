package sink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/telemetry"
	"github.com/lgingerich/evm-indexer/internal/warehouse"
)

type recordingInserter struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingInserter) InsertRows(ctx context.Context, datasetName, tableName string, rows []warehouse.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, tableName)
	return nil
}

func (r *recordingInserter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestPipelineSendAdvancesProgress(t *testing.T) {
	ins := &recordingInserter{}
	p := NewPipeline(ins, "chain", telemetry.New())
	p.Run(context.Background())

	p.Send(models.DatasetBlocks, 10, []warehouse.Row{{InsertID: "block-10", JSON: map[string]any{"x": 1}}})

	require.Eventually(t, func() bool { return p.Progress(models.DatasetBlocks) == 10 }, time.Second, 10*time.Millisecond)
	require.NoError(t, p.Shutdown())
}

func TestCheckCapacityFalseWhenQueueNearlyFull(t *testing.T) {
	ins := &recordingInserter{}
	p := NewPipeline(ins, "chain", telemetry.New())
	// Fill the blocks queue past the threshold without a consumer running.
	for i := 0; i < QueueCapacity-capacityThreshold+1; i++ {
		p.queues[models.DatasetBlocks] <- queueMsg{blockNumber: uint64(i)}
	}
	require.False(t, p.CheckCapacity())
}

func TestRowsForDatasetAttachesInsertIDs(t *testing.T) {
	batch := models.TransformedBatch{
		BlockNumber: 5,
		Blocks:      []models.BlockRow{{BlockNumber: 5}},
		Logs:        []models.LogRow{{BlockNumber: 5, TxHash: "0xa", TxIndex: 0, LogIndex: 1}},
	}
	blockRows := RowsForDataset(models.DatasetBlocks, batch)
	require.Len(t, blockRows, 1)
	require.Equal(t, "block-5", blockRows[0].InsertID)

	logRows := RowsForDataset(models.DatasetLogs, batch)
	require.Len(t, logRows, 1)
	require.Equal(t, "log-5-0xa-0-1", logRows[0].InsertID)
}

func TestShutdownDrainsRemainingMessages(t *testing.T) {
	ins := &recordingInserter{}
	p := NewPipeline(ins, "chain", telemetry.New())
	// Do not call Run yet; queue a message, then start and immediately shut down.
	p.queues[models.DatasetLogs] <- queueMsg{blockNumber: 1, rows: []warehouse.Row{{InsertID: "log-1", JSON: map[string]any{}}}}
	p.Run(context.Background())
	require.NoError(t, p.Shutdown())
	require.Equal(t, uint64(1), p.Progress(models.DatasetLogs))
}
