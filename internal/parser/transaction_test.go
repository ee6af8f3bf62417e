package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
)

func txJSON(t *testing.T, typ string, extra string) json.RawMessage {
	t.Helper()
	base := `{
		"hash": "0xhash", "blockHash": "0xblock", "blockNumber": "0x1",
		"transactionIndex": "0x0", "from": "0xfrom", "to": "0xto",
		"nonce": "0x1", "gas": "0x5208", "value": "0x0", "input": "0x",
		"v": "0x1b", "r": "0x1", "s": "0x2"`
	if typ != "" {
		base += `, "type": "` + typ + `"`
	}
	if extra != "" {
		base += ", " + extra
	}
	base += "}"
	return json.RawMessage(base)
}

func TestParseTransactionsEnvelopeTypes(t *testing.T) {
	cases := []struct {
		typ  string
		want models.EnvelopeType
		extra string
	}{
		{"", models.EnvelopeLegacy, `"gasPrice": "0x1"`},
		{"0x0", models.EnvelopeLegacy, `"gasPrice": "0x1"`},
		{"0x1", models.EnvelopeAccessList, `"gasPrice": "0x1", "accessList": []`},
		{"0x2", models.EnvelopeDynamicFee, `"maxFeePerGas": "0x2", "maxPriorityFeePerGas": "0x1"`},
		{"0x3", models.EnvelopeBlob, `"maxFeePerGas": "0x2", "maxPriorityFeePerGas": "0x1", "maxFeePerBlobGas": "0x1", "blobVersionedHashes": ["0xabc"]`},
		{"0x4", models.EnvelopeSetCode, `"maxFeePerGas": "0x2", "maxPriorityFeePerGas": "0x1", "authorizationList": []`},
	}
	for _, c := range cases {
		raws := []json.RawMessage{txJSON(t, c.typ, c.extra)}
		txs, err := ParseTransactions(raws, chain.Ethereum)
		require.NoError(t, err, "type=%s", c.typ)
		require.Len(t, txs, 1)
		require.Equal(t, c.want, txs[0].Type, "type=%s", c.typ)
	}
}

func TestParseTransactionsUnknownEnvelopeFatalOnEthereum(t *testing.T) {
	raws := []json.RawMessage{txJSON(t, "0x71", "")}
	_, err := ParseTransactions(raws, chain.Ethereum)
	require.ErrorIs(t, err, ErrUnknownEnvelope)
}

func TestParseTransactionsZKsyncLooseEnvelope(t *testing.T) {
	raw := json.RawMessage(`{
		"hash": "0xhash", "blockHash": "0xblock", "blockNumber": "0x1",
		"transactionIndex": "0x0", "from": "0xfrom", "type": "0x71",
		"nonce": "0x1", "gas": "0x5208", "gasPrice": "0x1",
		"value": "0x0", "input": "0x", "v": "0x0", "r": "0x0", "s": "0x0",
		"l1BatchNumber": "0x5", "l1BatchTxIndex": "0x0"
	}`)
	txs, err := ParseTransactions([]json.RawMessage{raw}, chain.ZKsync)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].L1BatchNumber)
	require.Equal(t, uint64(5), *txs[0].L1BatchNumber)
}

func TestParseTransactionsZKsyncLegacyRewrap(t *testing.T) {
	raw := json.RawMessage(`{
		"hash": "0xhash", "blockHash": "0xblock", "blockNumber": "0x1",
		"transactionIndex": "0x0", "from": "0xfrom", "to": "0xto",
		"nonce": "0x1", "gas": "0x5208", "gasPrice": "0x1",
		"value": "0x0", "input": "0x", "v": "0x0", "r": "0x0", "s": "0x0",
		"l1BatchNumber": "0x7", "l1BatchTxIndex": "0x2"
	}`)
	txs, err := ParseTransactions([]json.RawMessage{raw}, chain.ZKsync)
	require.NoError(t, err)
	require.Equal(t, models.EnvelopeLegacy, txs[0].Type)
	require.NotNil(t, txs[0].L1BatchNumber)
	require.Equal(t, uint64(7), *txs[0].L1BatchNumber)
	require.Equal(t, uint64(2), *txs[0].L1BatchTxIndex)
}
