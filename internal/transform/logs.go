package transform

import (
	"fmt"

	"github.com/lgingerich/evm-indexer/internal/models"
)

// Logs joins parsed logs with the block map. Rows with an empty tx_hash
// are dropped before insert (log_index is always set: the receipt parser
// fails on a log without one), and a repeated (chain_id, tx_hash,
// log_index) key fails the whole call, per spec §3's uniqueness invariant.
func Logs(logs []models.RpcLog, blockMap map[uint64]BlockMeta, chainID uint64) ([]models.LogRow, error) {
	rows := make([]models.LogRow, 0, len(logs))
	seen := make(map[string]bool, len(logs))

	for _, l := range logs {
		if l.TxHash == "" {
			continue
		}

		meta, err := lookupBlockMeta(blockMap, l.BlockNumber)
		if err != nil {
			return nil, err
		}

		key := fmt.Sprintf("%d-%s-%d", chainID, l.TxHash, l.LogIndex)
		if seen[key] {
			return nil, fmt.Errorf("transform: duplicate log (chain_id=%d, tx_hash=%s, log_index=%d)", chainID, l.TxHash, l.LogIndex)
		}
		seen[key] = true

		rows = append(rows, models.LogRow{
			ChainID:     chainID,
			BlockNumber: l.BlockNumber,
			BlockHash:   l.BlockHash,
			BlockTime:   meta.Time,
			BlockDate:   meta.Date,
			TxHash:      l.TxHash,
			TxIndex:     l.TxIndex,
			LogIndex:    l.LogIndex,
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			Removed:     l.Removed,
		})
	}
	return rows, nil
}
