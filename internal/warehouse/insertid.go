package warehouse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const maxInsertIDLen = 120

// InsertIDForBlock derives the deterministic insert id for a blocks row
// (spec §4.8). Block number is always present, so this never downgrades.
func InsertIDForBlock(blockNumber uint64) string {
	return finalizeInsertID("blocks", blockNumber, fmt.Sprintf("block-%d", blockNumber))
}

// InsertIDForTx derives the deterministic insert id for a transactions row.
func InsertIDForTx(blockNumber uint64, txHash string) string {
	if txHash == "" {
		return downgrade("transactions", blockNumber, fmt.Sprintf("tx-%d", blockNumber))
	}
	return finalizeInsertID("transactions", blockNumber, fmt.Sprintf("tx-%d-%s", blockNumber, txHash))
}

// InsertIDForLog derives the deterministic insert id for a logs row.
func InsertIDForLog(blockNumber uint64, txHash string, txIndex, logIndex uint64) string {
	if txHash == "" {
		return downgrade("logs", blockNumber, fmt.Sprintf("log-%d-%d-%d", blockNumber, txIndex, logIndex))
	}
	base := fmt.Sprintf("log-%d-%s-%d-%d", blockNumber, txHash, txIndex, logIndex)
	return finalizeInsertID("logs", blockNumber, base)
}

// InsertIDForTrace derives the deterministic insert id for a traces row.
func InsertIDForTrace(blockNumber uint64, txHash string, traceAddress []int) string {
	if txHash == "" {
		return downgrade("traces", blockNumber, fmt.Sprintf("trace-%d-%s", blockNumber, joinTraceAddress(traceAddress)))
	}
	base := fmt.Sprintf("trace-%d-%s-%s", blockNumber, txHash, joinTraceAddress(traceAddress))
	return finalizeInsertID("traces", blockNumber, base)
}

func joinTraceAddress(addr []int) string {
	parts := make([]string, len(addr))
	for i, a := range addr {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, "-")
}

// finalizeInsertID applies the 120-character overflow rule: ids past the
// limit are replaced by a hash of the full content-derived id.
func finalizeInsertID(table string, blockNumber uint64, base string) string {
	if len(base) <= maxInsertIDLen {
		return base
	}
	return fmt.Sprintf("%s-%d-long-%s", table, blockNumber, shortHash(base))
}

// downgrade builds the missing-required-field fallback id: content derived
// from whatever descriptor is available, hashed rather than concatenated
// raw so it still respects the length ceiling.
func downgrade(table string, blockNumber uint64, descriptor string) string {
	return fmt.Sprintf("%s-%d-hash-%s", table, blockNumber, shortHash(descriptor))
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:32]
}
