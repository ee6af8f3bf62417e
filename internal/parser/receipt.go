package parser

import (
	"time"

	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
)

// ParseReceiptsAndLogs produces one receipt record plus zero or more log
// records per raw receipt. Logs inherit block_time/block_date from the
// same sanitization rule as headers, keyed off the already-parsed header
// for this block (receipts don't carry a timestamp of their own).
func ParseReceiptsAndLogs(raws []rpcclient.RawReceipt, dialect chain.Dialect, blockTime time.Time, blockDate string) ([]models.RpcReceipt, []models.RpcLog, error) {
	receipts := make([]models.RpcReceipt, 0, len(raws))
	var logs []models.RpcLog

	for _, rr := range raws {
		blockNumber, err := hexToUint64("blockNumber", rr.BlockNumber)
		if err != nil {
			return nil, nil, err
		}
		txIndex, err := hexToUint64("transactionIndex", rr.TransactionIndex)
		if err != nil {
			return nil, nil, err
		}
		cumGasUsed, err := hexToUint64("cumulativeGasUsed", rr.CumulativeGasUsed)
		if err != nil {
			return nil, nil, err
		}
		gasUsed, err := hexToUint64("gasUsed", rr.GasUsed)
		if err != nil {
			return nil, nil, err
		}
		effectiveGasPrice, err := hexToDecimalString("effectiveGasPrice", rr.EffectiveGasPrice)
		if err != nil {
			return nil, nil, err
		}

		receipt := models.RpcReceipt{
			BlockNumber:       blockNumber,
			BlockHash:         rr.BlockHash,
			TxHash:            rr.TransactionHash,
			TxIndex:           txIndex,
			From:              rr.From,
			To:                rr.To,
			ContractAddress:   rr.ContractAddress,
			CumulativeGasUsed: cumGasUsed,
			GasUsed:           gasUsed,
			EffectiveGasPrice: effectiveGasPrice,
			LogsBloom:         rr.LogsBloom,
		}

		// Post-Byzantium receipts expose a boolean success; pre-Byzantium
		// expose a post-state root instead, stored as status=null.
		if rr.Status != nil {
			success := *rr.Status == "0x1"
			receipt.Status = &success
		} else {
			receipt.PostState = rr.Root
		}

		if dialect == chain.ZKsync {
			if v, ok := optionalOtherString(rr.Other, "l1BatchNumber"); ok {
				if n, err := hexToUint64("l1BatchNumber", v); err == nil {
					receipt.L1BatchNumber = &n
				}
			}
			if v, ok := optionalOtherString(rr.Other, "l1BatchTxIndex"); ok {
				if n, err := hexToUint64("l1BatchTxIndex", v); err == nil {
					receipt.L1BatchTxIndex = &n
				}
			}
		}

		receipts = append(receipts, receipt)

		for _, rl := range rr.Logs {
			logIndex, err := hexToUint64("logIndex", rl.LogIndex)
			if err != nil {
				return nil, nil, err
			}
			logBlockNumber, err := hexToUint64("blockNumber", rl.BlockNumber)
			if err != nil {
				return nil, nil, err
			}
			logTxIndex, err := hexToUint64("transactionIndex", rl.TransactionIndex)
			if err != nil {
				return nil, nil, err
			}

			logs = append(logs, models.RpcLog{
				BlockNumber: logBlockNumber,
				BlockHash:   rl.BlockHash,
				TxHash:      rl.TransactionHash,
				TxIndex:     logTxIndex,
				LogIndex:    logIndex,
				Address:     rl.Address,
				Topics:      rl.Topics,
				Data:        rl.Data,
				Removed:     rl.Removed,
				BlockTime:   blockTime,
				BlockDate:   blockDate,
			})
		}
	}

	return receipts, logs, nil
}
