// Package models holds the intermediate and final record shapes that flow
// through Parsers -> Transformers -> Sink. Every type here is an immutable
// value record; parsers own their RPC inputs and move them into these
// intermediates, which the Block Processor owns until transformation
// completes.
package models

import (
	"math/big"
	"time"
)

// EnvelopeType is the EVM transaction envelope tag.
type EnvelopeType uint8

const (
	EnvelopeLegacy    EnvelopeType = 0x00
	EnvelopeAccessList EnvelopeType = 0x01
	EnvelopeDynamicFee EnvelopeType = 0x02
	EnvelopeBlob       EnvelopeType = 0x03
	EnvelopeSetCode    EnvelopeType = 0x04
)

// ToKind tags whether a transaction's `to` field is a normal address or,
// on ZKsync dialect loose transactions, a tx-kind sentinel (e.g. contract
// creation) that does not parse as an address.
type ToKind uint8

const (
	ToAddress ToKind = iota
	ToContractCreation
)

// RpcHeader is the parsed block header: common fields plus the ZKsync
// dialect extension (l1 batch number/timestamp).
type RpcHeader struct {
	BlockNumber     uint64
	BlockHash       string
	ParentHash      string
	Nonce           string
	Sha3Uncles      string
	LogsBloom       string
	TransactionsRoot string
	StateRoot       string
	ReceiptsRoot    string
	Miner           string
	Difficulty      string // stringified: may exceed 64 bits
	TotalDifficulty string // stringified
	Size            string // stringified
	ExtraData       string
	GasLimit        uint64
	GasUsed         uint64
	Timestamp       time.Time // UTC, block-0-sanitized per §4.4
	BaseFeePerGas   *string
	WithdrawalsRoot *string
	BlobGasUsed     *uint64
	ExcessBlobGas   *uint64

	// ZKsync dialect extension.
	L1BatchNumber    *uint64
	L1BatchTimestamp *time.Time
}

func (h RpcHeader) BlockDate() string {
	return h.Timestamp.Format("2006-01-02")
}

// RpcTx is a parsed transaction, fields set depending on EnvelopeType.
type RpcTx struct {
	BlockNumber uint64
	BlockHash   string
	TxHash      string
	TxIndex     uint64
	From        string

	Type EnvelopeType

	ToKind ToKind
	To     *string

	Nonce    uint64
	GasLimit uint64
	Value    string // stringified big.Int
	Input    string // 0x-hex

	GasPrice             *string // legacy / 2930
	MaxFeePerGas         *string // 1559+
	MaxPriorityFeePerGas *string // 1559+
	MaxFeePerBlobGas     *string // 4844
	EffectiveGasPrice    string

	R, S string
	V    string

	AccessListJSON       *string // 2930+
	BlobVersionedHashes  []string
	BlobsJSON            *string
	CommitmentsJSON      *string
	ProofsJSON           *string
	AuthorizationListJSON *string // 7702

	// ZKsync dialect extension.
	L1BatchNumber  *uint64
	L1BatchTxIndex *uint64
}

// RpcReceipt is a parsed transaction receipt.
type RpcReceipt struct {
	BlockNumber       uint64
	BlockHash         string
	TxHash            string
	TxIndex           uint64
	From              string
	To                *string
	ContractAddress   *string
	CumulativeGasUsed uint64
	GasUsed           uint64
	EffectiveGasPrice string
	LogsBloom         string

	// Status is non-nil on post-Byzantium receipts (true=success). On
	// pre-Byzantium receipts Status is nil and PostState carries the root.
	Status    *bool
	PostState *string

	// ZKsync dialect extension.
	L1BatchNumber  *uint64
	L1BatchTxIndex *uint64
}

// RpcLog is a parsed log entry, inheriting block_time/block_date from the
// same sanitization rule as the header.
type RpcLog struct {
	BlockNumber uint64
	BlockHash   string
	TxHash      string
	TxIndex     uint64
	LogIndex    uint64
	Address     string
	Topics      []string
	Data        string
	Removed     bool
	BlockTime   time.Time
	BlockDate   string
}

// CallOutcome is the tagged result of a batched debug_traceTransaction call:
// either a Success carrying the flattened call frame root, or an Error that
// the caller must warn-and-skip.
type CallOutcome struct {
	TxHash  string
	Success bool
	Root    *CallFrame // non-nil iff Success
	ErrMsg  string     // non-empty iff !Success
}

// CallFrame is the raw nested tree shape returned by callTracer, prior to
// flattening.
type CallFrame struct {
	Type    string
	From    string
	To      string
	Value   *big.Int
	Gas     uint64
	GasUsed uint64
	Input   string
	Output  string
	Error   string
	Calls   []CallFrame
}

// RpcTrace is one flattened node of a call tree.
type RpcTrace struct {
	BlockNumber  uint64
	TxHash       string
	TxIndex      uint64
	TraceAddress []int
	Subtraces    int
	TraceType    string
	From         string
	To           string
	Value        string
	Gas          uint64
	GasUsed      uint64
	Input        string
	Output       string
	Error        *string
}

// ParsedBlock is the intermediate container for everything parsed for one
// block, consumed entirely by the Transformers.
type ParsedBlock struct {
	Headers  []RpcHeader // always length 1 when blocks are requested
	Txs      []RpcTx
	Receipts []RpcReceipt
	Logs     []RpcLog
	Traces   []RpcTrace
}
