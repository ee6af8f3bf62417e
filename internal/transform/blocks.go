package transform

import "github.com/lgingerich/evm-indexer/internal/models"

// Blocks produces the final blocks-dataset rows. A block whose header list
// is empty (blocks dataset not requested) yields an empty, not omitted,
// vector.
func Blocks(headers []models.RpcHeader, chainID uint64) []models.BlockRow {
	rows := make([]models.BlockRow, 0, len(headers))
	for _, h := range headers {
		rows = append(rows, models.BlockRow{
			ChainID:          chainID,
			BlockNumber:      h.BlockNumber,
			BlockHash:        h.BlockHash,
			ParentHash:       h.ParentHash,
			BlockTime:        h.Timestamp,
			BlockDate:        h.BlockDate(),
			Miner:            h.Miner,
			Difficulty:       h.Difficulty,
			TotalDifficulty:  h.TotalDifficulty,
			Size:             h.Size,
			GasLimit:         h.GasLimit,
			GasUsed:          h.GasUsed,
			BaseFeePerGas:    h.BaseFeePerGas,
			ExtraData:        h.ExtraData,
			L1BatchNumber:    h.L1BatchNumber,
			L1BatchTimestamp: h.L1BatchTimestamp,
		})
	}
	return rows
}
