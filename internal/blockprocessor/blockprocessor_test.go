package blockprocessor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
)

type fakeFetcher struct {
	block    *rpcclient.RawBlock
	receipts []rpcclient.RawReceipt
	outcomes []models.CallOutcome
}

func (f *fakeFetcher) GetBlockByNumber(ctx context.Context, n uint64) (*rpcclient.RawBlock, error) {
	return f.block, nil
}

func (f *fakeFetcher) GetBlockReceipts(ctx context.Context, n uint64) ([]rpcclient.RawReceipt, error) {
	return f.receipts, nil
}

func (f *fakeFetcher) GetCallTraces(ctx context.Context, refs []rpcclient.TxRef) ([]models.CallOutcome, error) {
	return f.outcomes, nil
}

func sampleBlockJSON(txHash string) []byte {
	tx := map[string]interface{}{
		"hash": txHash, "blockHash": "0xb", "blockNumber": "0x1",
		"transactionIndex": "0x0", "from": "0xfrom", "to": "0xto",
		"nonce": "0x0", "gas": "0x5208", "gasPrice": "0x3b9aca00",
		"value": "0x0", "input": "0x", "v": "0x1b", "r": "0x1", "s": "0x2",
	}
	raw, _ := json.Marshal(tx)
	return raw
}

func TestProcessSkipsUnrequestedDatasets(t *testing.T) {
	f := &fakeFetcher{
		block: &rpcclient.RawBlock{
			Number: "0x1", Hash: "0xb", Timestamp: "0x5f5e100", GasLimit: "0x1c9c380", GasUsed: "0x0",
			Transactions: []json.RawMessage{sampleBlockJSON("0xtx1")},
		},
		receipts: []rpcclient.RawReceipt{{
			TransactionHash: "0xtx1", TransactionIndex: "0x0", BlockHash: "0xb", BlockNumber: "0x1",
			CumulativeGasUsed: "0x5208", GasUsed: "0x5208",
		}},
	}
	active := models.NewDatasetSet(models.DatasetBlocks, models.DatasetTransactions)
	p := New(f, chain.Ethereum, 1, active)

	batch, err := p.Process(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, batch.Blocks, 1)
	require.Empty(t, batch.Logs)
	require.Empty(t, batch.Traces)
}

func TestProcessZKsyncPendingL1Batch(t *testing.T) {
	f := &fakeFetcher{
		block: &rpcclient.RawBlock{
			Number: "0x5", Hash: "0xb", Timestamp: "0x5f5e100", GasLimit: "0x1c9c380", GasUsed: "0x0",
			Transactions: []json.RawMessage{},
		},
	}
	active := models.NewDatasetSet(models.DatasetBlocks)
	p := New(f, chain.ZKsync, 324, active)

	_, err := p.Process(context.Background(), 5)
	require.ErrorIs(t, err, ErrPendingL1Batch)
}

func TestProcessRequiresBlockWhenTracesRequested(t *testing.T) {
	f := &fakeFetcher{
		block: &rpcclient.RawBlock{
			Number: "0x1", Hash: "0xb", Timestamp: "0x5f5e100", GasLimit: "0x1c9c380", GasUsed: "0x0",
			Transactions: []json.RawMessage{sampleBlockJSON("0xtx1")},
		},
		outcomes: []models.CallOutcome{
			{TxHash: "0xtx1", Success: true, Root: &models.CallFrame{Type: "CALL", From: "0xa", To: "0xb", Gas: 1, GasUsed: 1}},
		},
	}
	active := models.NewDatasetSet(models.DatasetTraces)
	p := New(f, chain.Ethereum, 1, active)

	batch, err := p.Process(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, batch.Traces, 1)
	require.Equal(t, uint64(0), batch.Traces[0].TxIndex)
}
