package parser

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/models"
)

func TestParseTracesFlattenPreservesPreorderAndAddresses(t *testing.T) {
	root := &models.CallFrame{
		Type: "CALL", From: "0xa", To: "0xb", Value: big.NewInt(0), Gas: 100, GasUsed: 50,
		Calls: []models.CallFrame{
			{Type: "CALL", From: "0xb", To: "0xc", Value: big.NewInt(0), Gas: 40, GasUsed: 10},
			{
				Type: "CALL", From: "0xb", To: "0xd", Value: big.NewInt(0), Gas: 40, GasUsed: 20,
				Calls: []models.CallFrame{
					{Type: "CALL", From: "0xd", To: "0xe", Value: big.NewInt(0), Gas: 10, GasUsed: 5},
				},
			},
		},
	}

	outcomes := []models.CallOutcome{{TxHash: "0xtx", Success: true, Root: root}}
	traces := ParseTraces(1, outcomes, map[string]uint64{"0xtx": 0})

	require.Len(t, traces, 4)
	require.Empty(t, traces[0].TraceAddress)
	require.Equal(t, 2, traces[0].Subtraces)
	require.Equal(t, []int{0}, traces[1].TraceAddress)
	require.Equal(t, 0, traces[1].Subtraces)
	require.Equal(t, []int{1}, traces[2].TraceAddress)
	require.Equal(t, 1, traces[2].Subtraces)
	require.Equal(t, []int{1, 0}, traces[3].TraceAddress)
	require.Equal(t, 0, traces[3].Subtraces)
}

func TestParseTracesSkipsErrorOutcomes(t *testing.T) {
	outcomes := []models.CallOutcome{{TxHash: "0xtx", Success: false, ErrMsg: "too large"}}
	traces := ParseTraces(1, outcomes, nil)
	require.Empty(t, traces)
}
