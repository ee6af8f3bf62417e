package rpcclient

import "encoding/json"

// Raw wire types as returned by the JSON-RPC transport. These are
// deliberately loose (hex strings, json.RawMessage grab-bags) because the
// Parsers, not this package, are responsible for turning them into typed
// normalized intermediates.

type RawBlock struct {
	Number           string          `json:"number"`
	Hash             string          `json:"hash"`
	ParentHash       string          `json:"parentHash"`
	Nonce            string          `json:"nonce"`
	Sha3Uncles       string          `json:"sha3Uncles"`
	LogsBloom        string          `json:"logsBloom"`
	TransactionsRoot string          `json:"transactionsRoot"`
	StateRoot        string          `json:"stateRoot"`
	ReceiptsRoot     string          `json:"receiptsRoot"`
	Miner            string          `json:"miner"`
	Difficulty       string          `json:"difficulty"`
	TotalDifficulty  string          `json:"totalDifficulty"`
	ExtraData        string          `json:"extraData"`
	Size             string          `json:"size"`
	GasLimit         string          `json:"gasLimit"`
	GasUsed          string          `json:"gasUsed"`
	Timestamp        string          `json:"timestamp"`
	BaseFeePerGas    *string         `json:"baseFeePerGas,omitempty"`
	WithdrawalsRoot  *string         `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed      *string         `json:"blobGasUsed,omitempty"`
	ExcessBlobGas    *string         `json:"excessBlobGas,omitempty"`
	Uncles           []string        `json:"uncles"`
	Transactions     []json.RawMessage `json:"transactions"`

	// Other captures loose, dialect-specific fields (e.g. ZKsync's
	// l1BatchNumber/l1BatchTimestamp) that don't belong in the common
	// Ethereum header shape.
	Other map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields into the struct and keeps any
// remaining keys in Other for dialect-specific extraction.
func (b *RawBlock) UnmarshalJSON(data []byte) error {
	type alias RawBlock
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = RawBlock(a)

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	known := map[string]bool{
		"number": true, "hash": true, "parentHash": true, "nonce": true,
		"sha3Uncles": true, "logsBloom": true, "transactionsRoot": true,
		"stateRoot": true, "receiptsRoot": true, "miner": true,
		"difficulty": true, "totalDifficulty": true, "extraData": true,
		"size": true, "gasLimit": true, "gasUsed": true, "timestamp": true,
		"baseFeePerGas": true, "withdrawalsRoot": true, "blobGasUsed": true,
		"excessBlobGas": true, "uncles": true, "transactions": true,
	}
	b.Other = make(map[string]json.RawMessage)
	for k, v := range m {
		if !known[k] {
			b.Other[k] = v
		}
	}
	return nil
}

type RawTx struct {
	Hash             string          `json:"hash"`
	BlockHash        string          `json:"blockHash"`
	BlockNumber      string          `json:"blockNumber"`
	TransactionIndex string          `json:"transactionIndex"`
	From             string          `json:"from"`
	To               *string         `json:"to"`
	Type             *string         `json:"type"`
	Nonce            string          `json:"nonce"`
	Gas              string          `json:"gas"`
	GasPrice         *string         `json:"gasPrice"`
	MaxFeePerGas     *string         `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *string     `json:"maxPriorityFeePerGas"`
	MaxFeePerBlobGas *string         `json:"maxFeePerBlobGas"`
	Value            string          `json:"value"`
	Input            string          `json:"input"`
	V                string          `json:"v"`
	R                string          `json:"r"`
	S                string          `json:"s"`
	AccessList       json.RawMessage `json:"accessList,omitempty"`
	BlobVersionedHashes []string     `json:"blobVersionedHashes,omitempty"`
	AuthorizationList   json.RawMessage `json:"authorizationList,omitempty"`

	Other map[string]json.RawMessage `json:"-"`
}

func (t *RawTx) UnmarshalJSON(data []byte) error {
	type alias RawTx
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = RawTx(a)

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	known := map[string]bool{
		"hash": true, "blockHash": true, "blockNumber": true,
		"transactionIndex": true, "from": true, "to": true, "type": true,
		"nonce": true, "gas": true, "gasPrice": true, "maxFeePerGas": true,
		"maxPriorityFeePerGas": true, "maxFeePerBlobGas": true, "value": true,
		"input": true, "v": true, "r": true, "s": true, "accessList": true,
		"blobVersionedHashes": true, "authorizationList": true,
	}
	t.Other = make(map[string]json.RawMessage)
	for k, v := range m {
		if !known[k] {
			t.Other[k] = v
		}
	}
	return nil
}

type RawLog struct {
	Address          string   `json:"address"`
	Topics           []string `json:"topics"`
	Data             string   `json:"data"`
	BlockNumber      string   `json:"blockNumber"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
	BlockHash        string   `json:"blockHash"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
}

type RawReceipt struct {
	TransactionHash   string    `json:"transactionHash"`
	TransactionIndex  string    `json:"transactionIndex"`
	BlockHash         string    `json:"blockHash"`
	BlockNumber       string    `json:"blockNumber"`
	From              string    `json:"from"`
	To                *string   `json:"to"`
	ContractAddress   *string   `json:"contractAddress"`
	CumulativeGasUsed string    `json:"cumulativeGasUsed"`
	GasUsed           string    `json:"gasUsed"`
	EffectiveGasPrice string    `json:"effectiveGasPrice"`
	LogsBloom         string    `json:"logsBloom"`
	Status            *string   `json:"status"`
	Root              *string   `json:"root"`
	Logs              []RawLog  `json:"logs"`

	Other map[string]json.RawMessage `json:"-"`
}

func (r *RawReceipt) UnmarshalJSON(data []byte) error {
	type alias RawReceipt
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = RawReceipt(a)

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	known := map[string]bool{
		"transactionHash": true, "transactionIndex": true, "blockHash": true,
		"blockNumber": true, "from": true, "to": true, "contractAddress": true,
		"cumulativeGasUsed": true, "gasUsed": true, "effectiveGasPrice": true,
		"logsBloom": true, "status": true, "root": true, "logs": true,
	}
	r.Other = make(map[string]json.RawMessage)
	for k, v := range m {
		if !known[k] {
			r.Other[k] = v
		}
	}
	return nil
}

// RawCallFrame is the callTracer nested tree shape, prior to flattening.
// Unrecognized tracer shapes (e.g. a prestate tracer accidentally
// configured) will fail to carry a "type" field and are dropped silently
// by the flattener, per spec §4.4.
type RawCallFrame struct {
	Type    string         `json:"type"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Value   string         `json:"value"`
	Gas     string         `json:"gas"`
	GasUsed string         `json:"gasUsed"`
	Input   string         `json:"input"`
	Output  string         `json:"output"`
	Error   string         `json:"error"`
	Calls   []RawCallFrame `json:"calls"`
}
