package transform

import (
	"fmt"

	"github.com/lgingerich/evm-indexer/internal/models"
)

// Transactions joins parsed transactions with receipts by order of
// occurrence (the i-th receipt matches the i-th transaction) and enriches
// each row with block_time/block_date from the block map. Unequal-length
// vectors are a fatal error (spec §9 open question — asserted, not
// tolerated).
func Transactions(txs []models.RpcTx, receipts []models.RpcReceipt, blockMap map[uint64]BlockMeta, chainID uint64) ([]models.TxRow, error) {
	if len(txs) != len(receipts) {
		return nil, fmt.Errorf("transform: tx/receipt length mismatch: %d txs, %d receipts", len(txs), len(receipts))
	}

	rows := make([]models.TxRow, 0, len(txs))
	for i, tx := range txs {
		receipt := receipts[i]
		if receipt.TxHash != tx.TxHash {
			return nil, fmt.Errorf("transform: positional tx/receipt mismatch at index %d: tx=%s receipt=%s", i, tx.TxHash, receipt.TxHash)
		}

		blockNumber := tx.BlockNumber
		blockHash := tx.BlockHash
		if receipt.BlockHash != "" {
			blockHash = receipt.BlockHash
		}
		if receipt.BlockNumber != 0 {
			blockNumber = receipt.BlockNumber
		}

		meta, err := lookupBlockMeta(blockMap, blockNumber)
		if err != nil {
			return nil, err
		}

		row := models.TxRow{
			ChainID:     chainID,
			BlockNumber: blockNumber,
			BlockHash:   blockHash,
			BlockTime:   meta.Time,
			BlockDate:   meta.Date,
			TxHash:      tx.TxHash,
			TxIndex:     tx.TxIndex,
			TxType:      uint8(tx.Type),
			From:        receipt.From,
			To:          receipt.To,
			Nonce:       tx.Nonce,
			Value:       tx.Value,
			Input:       tx.Input,
			GasLimit:    tx.GasLimit,

			GasPrice:             tx.GasPrice,
			MaxFeePerGas:         tx.MaxFeePerGas,
			MaxPriorityFeePerGas: tx.MaxPriorityFeePerGas,
			MaxFeePerBlobGas:     tx.MaxFeePerBlobGas,
			BlobVersionedHashes:  tx.BlobVersionedHashes,
			Blobs:                tx.BlobsJSON,
			Commitments:          tx.CommitmentsJSON,
			Proofs:               tx.ProofsJSON,
			AccessList:           tx.AccessListJSON,
			AuthorizationList:    tx.AuthorizationListJSON,

			EffectiveGasPrice: receipt.EffectiveGasPrice,
			CumulativeGasUsed: receipt.CumulativeGasUsed,
			GasUsed:           receipt.GasUsed,
			Status:            receipt.Status,
			PostState:         receipt.PostState,
			ContractAddress:   receipt.ContractAddress,

			L1BatchNumber:  firstNonNilUint64(tx.L1BatchNumber, receipt.L1BatchNumber),
			L1BatchTxIndex: firstNonNilUint64(tx.L1BatchTxIndex, receipt.L1BatchTxIndex),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func firstNonNilUint64(a, b *uint64) *uint64 {
	if a != nil {
		return a
	}
	return b
}
