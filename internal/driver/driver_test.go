package driver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/blockprocessor"
	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
	"github.com/lgingerich/evm-indexer/internal/sink"
	"github.com/lgingerich/evm-indexer/internal/telemetry"
	"github.com/lgingerich/evm-indexer/internal/warehouse"
)

type fakeTip struct{ latest uint64 }

func (f *fakeTip) GetLatestBlockNumber(ctx context.Context) (uint64, error) { return f.latest, nil }

type fakeWarehouse struct{ resume uint64 }

func (f *fakeWarehouse) CreateDataset(ctx context.Context, name, location string) error { return nil }
func (f *fakeWarehouse) CreateTable(ctx context.Context, datasetName, tableName string, schema bigquery.Schema) error {
	return nil
}
func (f *fakeWarehouse) ResumePoint(ctx context.Context, datasetName string, active []models.Dataset) (uint64, error) {
	return f.resume, nil
}

type fakeInserter struct{ n int }

func (f *fakeInserter) InsertRows(ctx context.Context, datasetName, tableName string, rows []warehouse.Row) error {
	f.n += len(rows)
	return nil
}

type fakeFetcher struct{ blockNumber uint64 }

func (f *fakeFetcher) GetBlockByNumber(ctx context.Context, n uint64) (*rpcclient.RawBlock, error) {
	tx := map[string]interface{}{
		"hash": "0xtx", "blockHash": "0xb", "blockNumber": "0x1",
		"transactionIndex": "0x0", "from": "0xfrom", "to": "0xto",
		"nonce": "0x0", "gas": "0x5208", "gasPrice": "0x3b9aca00",
		"value": "0x0", "input": "0x", "v": "0x1b", "r": "0x1", "s": "0x2",
	}
	raw, _ := json.Marshal(tx)
	return &rpcclient.RawBlock{
		Number: "0x1", Hash: "0xb", Timestamp: "0x5f5e100", GasLimit: "0x1", GasUsed: "0x0",
		Transactions: []json.RawMessage{raw},
	}, nil
}
func (f *fakeFetcher) GetBlockReceipts(ctx context.Context, n uint64) ([]rpcclient.RawReceipt, error) {
	return []rpcclient.RawReceipt{{
		TransactionHash: "0xtx", TransactionIndex: "0x0", BlockHash: "0xb", BlockNumber: "0x1",
		CumulativeGasUsed: "0x5208", GasUsed: "0x5208",
	}}, nil
}
func (f *fakeFetcher) GetCallTraces(ctx context.Context, refs []rpcclient.TxRef) ([]models.CallOutcome, error) {
	return nil, nil
}

func TestResumeCursorFallsBackToStartBlock(t *testing.T) {
	wh := &fakeWarehouse{resume: 0}
	sb := uint64(100)
	d := New(&fakeTip{}, wh, nil, nil, telemetry.New(), "chain", models.NewDatasetSet(models.DatasetBlocks), 10, &sb, nil)

	cursor, err := d.ResumeCursor(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(100), cursor)
}

func TestResumeCursorPrefersWarehouseValue(t *testing.T) {
	wh := &fakeWarehouse{resume: 55}
	sb := uint64(100)
	d := New(&fakeTip{}, wh, nil, nil, telemetry.New(), "chain", models.NewDatasetSet(models.DatasetBlocks), 10, &sb, nil)

	cursor, err := d.ResumeCursor(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(55), cursor)
}

func TestRunStopsAtEndBlock(t *testing.T) {
	active := models.NewDatasetSet(models.DatasetBlocks, models.DatasetTransactions)
	ins := &fakeInserter{}
	pipeline := sink.NewPipeline(ins, "chain", telemetry.New())
	processor := blockprocessor.New(&fakeFetcher{}, chain.Ethereum, 1, active)

	end := uint64(1)
	d := New(&fakeTip{latest: 100}, &fakeWarehouse{}, pipeline, processor, telemetry.New(), "chain", active, 0, nil, &end)

	shutdown := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background(), 1, shutdown) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("driver loop did not stop at end block")
	}
}
