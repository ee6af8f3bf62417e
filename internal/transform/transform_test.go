package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/models"
)

func sampleHeader(number uint64) models.RpcHeader {
	return models.RpcHeader{
		BlockNumber: number,
		BlockHash:   "0xblock",
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBlocksProducesEmptyNotNilForNoHeaders(t *testing.T) {
	rows := Blocks(nil, 1)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestBlocksCarriesL1BatchFields(t *testing.T) {
	l1 := uint64(42)
	h := sampleHeader(10)
	h.L1BatchNumber = &l1
	rows := Blocks([]models.RpcHeader{h}, 324)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(324), rows[0].ChainID)
	require.Equal(t, &l1, rows[0].L1BatchNumber)
}

func TestTransactionsRejectsLengthMismatch(t *testing.T) {
	blockMap := BuildBlockMap([]models.RpcHeader{sampleHeader(1)})
	_, err := Transactions([]models.RpcTx{{TxHash: "0x1"}}, nil, blockMap, 1)
	require.Error(t, err)
}

func TestTransactionsRejectsPositionalMismatch(t *testing.T) {
	blockMap := BuildBlockMap([]models.RpcHeader{sampleHeader(1)})
	txs := []models.RpcTx{{TxHash: "0x1", BlockNumber: 1}}
	receipts := []models.RpcReceipt{{TxHash: "0x2", BlockNumber: 1}}
	_, err := Transactions(txs, receipts, blockMap, 1)
	require.Error(t, err)
}

func TestTransactionsPrefersReceiptBlockFields(t *testing.T) {
	blockMap := BuildBlockMap([]models.RpcHeader{sampleHeader(1), sampleHeader(2)})
	txs := []models.RpcTx{{TxHash: "0x1", BlockNumber: 1, BlockHash: "0xa"}}
	bn := uint64(2)
	receipts := []models.RpcReceipt{{TxHash: "0x1", BlockNumber: 2, BlockHash: "0xb", L1BatchNumber: &bn}}
	rows, err := Transactions(txs, receipts, blockMap, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(2), rows[0].BlockNumber)
	require.Equal(t, "0xb", rows[0].BlockHash)
	require.Equal(t, &bn, rows[0].L1BatchNumber)
}

func TestLogsRejectsMissingTxHash(t *testing.T) {
	blockMap := BuildBlockMap([]models.RpcHeader{sampleHeader(1)})
	rows, err := Logs([]models.RpcLog{{BlockNumber: 1, TxHash: ""}}, blockMap, 1)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestLogsRejectsDuplicateKey(t *testing.T) {
	blockMap := BuildBlockMap([]models.RpcHeader{sampleHeader(1)})
	logs := []models.RpcLog{
		{BlockNumber: 1, TxHash: "0x1", LogIndex: 0},
		{BlockNumber: 1, TxHash: "0x1", LogIndex: 0},
	}
	_, err := Logs(logs, blockMap, 1)
	require.Error(t, err)
}

func TestLogsUnknownBlockFails(t *testing.T) {
	blockMap := BuildBlockMap(nil)
	_, err := Logs([]models.RpcLog{{BlockNumber: 5, TxHash: "0x1"}}, blockMap, 1)
	require.Error(t, err)
}

func TestTracesAttachesBlockMeta(t *testing.T) {
	blockMap := BuildBlockMap([]models.RpcHeader{sampleHeader(7)})
	traces := []models.RpcTrace{{BlockNumber: 7, TxHash: "0x1", TraceAddress: []int{0}}}
	rows, err := Traces(traces, blockMap, 9)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(9), rows[0].ChainID)
	require.Equal(t, "0xblock", rows[0].BlockHash)
}

func TestBuildTxIndexMap(t *testing.T) {
	txs := []models.RpcTx{{TxHash: "0x1", TxIndex: 0}, {TxHash: "0x2", TxIndex: 1}}
	m := BuildTxIndexMap(txs)
	require.Equal(t, uint64(1), m["0x2"])
}
