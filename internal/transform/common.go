// Package transform joins parsed intermediates into final per-dataset
// rows: headers<->transactions via a block-number->(time,date,hash) map,
// transactions<->receipts via positional order, traces<->blocks via block
// number and <->transactions via a tx-hash->tx-index map.
package transform

import (
	"fmt"
	"time"

	"github.com/lgingerich/evm-indexer/internal/models"
)

// BlockMeta is the join payload carried from a header to every row
// referencing its block number.
type BlockMeta struct {
	Time time.Time
	Date string
	Hash string
}

// BuildBlockMap indexes parsed headers by block number for the join step.
func BuildBlockMap(headers []models.RpcHeader) map[uint64]BlockMeta {
	m := make(map[uint64]BlockMeta, len(headers))
	for _, h := range headers {
		m[h.BlockNumber] = BlockMeta{Time: h.Timestamp, Date: h.BlockDate(), Hash: h.BlockHash}
	}
	return m
}

// BuildTxIndexMap indexes parsed transactions by hash -> tx index, used by
// the trace transformer to recover the index a trace response doesn't
// carry.
func BuildTxIndexMap(txs []models.RpcTx) map[string]uint64 {
	m := make(map[string]uint64, len(txs))
	for _, tx := range txs {
		m[tx.TxHash] = tx.TxIndex
	}
	return m
}

func lookupBlockMeta(m map[uint64]BlockMeta, blockNumber uint64) (BlockMeta, error) {
	meta, ok := m[blockNumber]
	if !ok {
		return BlockMeta{}, fmt.Errorf("transform: no header joined for block %d", blockNumber)
	}
	return meta, nil
}
