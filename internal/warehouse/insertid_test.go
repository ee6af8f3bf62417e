package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertIDForBlockIsStable(t *testing.T) {
	require.Equal(t, "block-100", InsertIDForBlock(100))
	require.Equal(t, InsertIDForBlock(100), InsertIDForBlock(100))
}

func TestInsertIDForTxDowngradesOnMissingHash(t *testing.T) {
	id := InsertIDForTx(5, "")
	require.True(t, strings.HasPrefix(id, "transactions-5-hash-"))
	require.LessOrEqual(t, len(id), maxInsertIDLen)
}

func TestInsertIDForLogIsDeterministic(t *testing.T) {
	a := InsertIDForLog(5, "0xabc", 1, 2)
	b := InsertIDForLog(5, "0xabc", 1, 2)
	require.Equal(t, a, b)
	require.Equal(t, "log-5-0xabc-1-2", a)
}

func TestInsertIDForTraceJoinsAddress(t *testing.T) {
	id := InsertIDForTrace(9, "0xdef", []int{1, 0, 2})
	require.Equal(t, "trace-9-0xdef-1-0-2", id)
}

func TestInsertIDOverflowsToLongHash(t *testing.T) {
	longHash := strings.Repeat("a", 140)
	id := InsertIDForTx(1, longHash)
	require.True(t, strings.HasPrefix(id, "transactions-1-long-"))
	require.LessOrEqual(t, len(id), maxInsertIDLen)
}
