package parser

import (
	"encoding/json"
	"time"

	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
)

// ParseHeader copies the common header fields, stringifies the
// arbitrary-precision fields, and — for ZKsync dialect — extracts the
// loose l1BatchNumber/l1BatchTimestamp fields. Returns a one-element slice
// per spec §4.4.
func ParseHeader(b *rpcclient.RawBlock, dialect chain.Dialect) ([]models.RpcHeader, error) {
	if b.Hash == "" {
		return nil, fieldErr("hash", "missing")
	}

	number, err := hexToUint64("number", b.Number)
	if err != nil {
		return nil, err
	}
	gasLimit, err := hexToUint64("gasLimit", b.GasLimit)
	if err != nil {
		return nil, err
	}
	gasUsed, err := hexToUint64("gasUsed", b.GasUsed)
	if err != nil {
		return nil, err
	}
	tsRaw, err := hexToUint64("timestamp", b.Timestamp)
	if err != nil {
		return nil, err
	}

	difficulty, err := hexToDecimalString("difficulty", b.Difficulty)
	if err != nil {
		return nil, err
	}
	totalDifficulty, err := hexToDecimalString("totalDifficulty", b.TotalDifficulty)
	if err != nil {
		return nil, err
	}
	size, err := hexToDecimalString("size", b.Size)
	if err != nil {
		return nil, err
	}

	blockTime := time.Unix(int64(tsRaw), 0).UTC()
	if number == 0 && tsRaw == 0 {
		blockTime = models.GenesisSentinelTime
	}

	h := models.RpcHeader{
		BlockNumber:      number,
		BlockHash:        b.Hash,
		ParentHash:       b.ParentHash,
		Nonce:            b.Nonce,
		Sha3Uncles:       b.Sha3Uncles,
		LogsBloom:        b.LogsBloom,
		TransactionsRoot: b.TransactionsRoot,
		StateRoot:        b.StateRoot,
		ReceiptsRoot:     b.ReceiptsRoot,
		Miner:            b.Miner,
		Difficulty:       difficulty,
		TotalDifficulty:  totalDifficulty,
		Size:             size,
		ExtraData:        b.ExtraData,
		GasLimit:         gasLimit,
		GasUsed:          gasUsed,
		Timestamp:        blockTime,
		BaseFeePerGas:    b.BaseFeePerGas,
		WithdrawalsRoot:  b.WithdrawalsRoot,
	}

	if b.BlobGasUsed != nil {
		v, err := hexToUint64("blobGasUsed", *b.BlobGasUsed)
		if err != nil {
			return nil, err
		}
		h.BlobGasUsed = &v
	}
	if b.ExcessBlobGas != nil {
		v, err := hexToUint64("excessBlobGas", *b.ExcessBlobGas)
		if err != nil {
			return nil, err
		}
		h.ExcessBlobGas = &v
	}

	if dialect == chain.ZKsync {
		if raw, ok := b.Other["l1BatchNumber"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				v, err := hexToUint64("l1BatchNumber", s)
				if err != nil {
					return nil, err
				}
				h.L1BatchNumber = &v
			}
		}
		if raw, ok := b.Other["l1BatchTimestamp"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				ts, err := hexToUint64("l1BatchTimestamp", s)
				if err != nil {
					return nil, err
				}
				t := time.Unix(int64(ts), 0).UTC()
				h.L1BatchTimestamp = &t
			}
		}
	}

	return []models.RpcHeader{h}, nil
}
