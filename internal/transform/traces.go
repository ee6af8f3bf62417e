package transform

import "github.com/lgingerich/evm-indexer/internal/models"

// Traces joins flattened call traces with the block map. tx_index is
// already resolved during trace parsing (via the tx-hash->index map built
// from the block's transactions), so this step only attaches
// block_hash/block_time/block_date and chain_id.
func Traces(traces []models.RpcTrace, blockMap map[uint64]BlockMeta, chainID uint64) ([]models.TraceRow, error) {
	rows := make([]models.TraceRow, 0, len(traces))
	for _, tr := range traces {
		meta, err := lookupBlockMeta(blockMap, tr.BlockNumber)
		if err != nil {
			return nil, err
		}

		rows = append(rows, models.TraceRow{
			ChainID:      chainID,
			BlockNumber:  tr.BlockNumber,
			BlockHash:    meta.Hash,
			BlockTime:    meta.Time,
			BlockDate:    meta.Date,
			TxHash:       tr.TxHash,
			TxIndex:      tr.TxIndex,
			TraceAddress: tr.TraceAddress,
			Subtraces:    tr.Subtraces,
			TraceType:    tr.TraceType,
			From:         tr.From,
			To:           tr.To,
			Value:        tr.Value,
			Gas:          tr.Gas,
			GasUsed:      tr.GasUsed,
			Input:        tr.Input,
			Output:       tr.Output,
			Error:        tr.Error,
		})
	}
	return rows, nil
}
