package parser

import (
	"fmt"

	"github.com/ledgerwatch/log/v3"

	"github.com/lgingerich/evm-indexer/internal/models"
)

// ParseTraces depth-first flattens each successful call outcome's tree
// into a sequence of RpcTrace nodes. Error outcomes (oversized traces) are
// warned and skipped, never fatal; successful outcomes whose root carries
// no call type (non-CallTracer shapes) are dropped without a warning.
// txIndexByHash maps tx hash to its index in the block, needed because the
// trace response itself doesn't carry it.
func ParseTraces(blockNumber uint64, outcomes []models.CallOutcome, txIndexByHash map[string]uint64) []models.RpcTrace {
	var out []models.RpcTrace

	for _, oc := range outcomes {
		if !oc.Success {
			log.Warn(fmt.Sprintf("[parser] skipping trace for tx %s", oc.TxHash), "reason", oc.ErrMsg)
			continue
		}
		if oc.Root == nil || oc.Root.Type == "" {
			// Non-CallTracer shape; silently dropped per spec §4.4.
			continue
		}

		txIndex := txIndexByHash[oc.TxHash]
		flattenNode(blockNumber, oc.TxHash, txIndex, oc.Root, nil, &out)
	}

	return out
}

func flattenNode(blockNumber uint64, txHash string, txIndex uint64, node *models.CallFrame, addr []int, out *[]models.RpcTrace) {
	traceAddress := append([]int{}, addr...)

	var errPtr *string
	if node.Error != "" {
		e := node.Error
		errPtr = &e
	}

	value := "0"
	if node.Value != nil {
		value = node.Value.String()
	}

	*out = append(*out, models.RpcTrace{
		BlockNumber:  blockNumber,
		TxHash:       txHash,
		TxIndex:      txIndex,
		TraceAddress: traceAddress,
		Subtraces:    len(node.Calls),
		TraceType:    node.Type,
		From:         node.From,
		To:           node.To,
		Value:        value,
		Gas:          node.Gas,
		GasUsed:      node.GasUsed,
		Input:        node.Input,
		Output:       node.Output,
		Error:        errPtr,
	})

	for i := range node.Calls {
		flattenNode(blockNumber, txHash, txIndex, &node.Calls[i], append(addr, i), out)
	}
}
