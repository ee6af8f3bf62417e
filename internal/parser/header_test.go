package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
)

func TestParseHeaderBlockZeroSentinel(t *testing.T) {
	b := &rpcclient.RawBlock{
		Number:    "0x0",
		Hash:      "0xabc",
		Timestamp: "0x0",
		GasLimit:  "0x0",
		GasUsed:   "0x0",
		Difficulty: "0x0", TotalDifficulty: "0x0", Size: "0x0",
	}
	headers, err := ParseHeader(b, chain.Ethereum)
	require.NoError(t, err)
	require.Len(t, headers, 1)
	require.Equal(t, models.GenesisSentinelTime, headers[0].Timestamp)
	require.NotEqual(t, int64(0), headers[0].Timestamp.Unix())
}

func TestParseHeaderNonZeroTimestampUnaffected(t *testing.T) {
	b := &rpcclient.RawBlock{
		Number:    "0x1",
		Hash:      "0xabc",
		Timestamp: "0x5d8b0f70",
		GasLimit:  "0x0",
		GasUsed:   "0x0",
		Difficulty: "0x0", TotalDifficulty: "0x0", Size: "0x0",
	}
	headers, err := ParseHeader(b, chain.Ethereum)
	require.NoError(t, err)
	require.NotEqual(t, models.GenesisSentinelTime, headers[0].Timestamp)
}

func TestParseHeaderZKsyncL1Batch(t *testing.T) {
	raw := []byte(`{
		"number": "0x1", "hash": "0xabc", "timestamp": "0x1",
		"gasLimit": "0x0", "gasUsed": "0x0",
		"difficulty": "0x0", "totalDifficulty": "0x0", "size": "0x0",
		"l1BatchNumber": "0x5", "l1BatchTimestamp": "0x2"
	}`)
	var b rpcclient.RawBlock
	require.NoError(t, json.Unmarshal(raw, &b))

	headers, err := ParseHeader(&b, chain.ZKsync)
	require.NoError(t, err)
	require.NotNil(t, headers[0].L1BatchNumber)
	require.Equal(t, uint64(5), *headers[0].L1BatchNumber)
	require.NotNil(t, headers[0].L1BatchTimestamp)
}
