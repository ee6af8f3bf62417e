package warehouse

import "cloud.google.com/go/bigquery"

// Schemas mirror the normalized row DTOs in internal/models/rows.go
// field-for-field, including the ZKsync and blob-carrying extension
// columns. Every table is day-partitioned on block_date by the caller.

func blockSchema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "chain_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_number", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "parent_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "block_time", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "block_date", Type: bigquery.DateFieldType, Required: true},
		{Name: "miner", Type: bigquery.StringFieldType, Required: true},
		{Name: "difficulty", Type: bigquery.StringFieldType, Required: true},
		{Name: "total_difficulty", Type: bigquery.StringFieldType, Required: false},
		{Name: "size", Type: bigquery.StringFieldType, Required: false},
		{Name: "gas_limit", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "gas_used", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "base_fee_per_gas", Type: bigquery.StringFieldType, Required: false},
		{Name: "extra_data", Type: bigquery.StringFieldType, Required: true},
		// ZKsync dialect extension.
		{Name: "l1_batch_number", Type: bigquery.IntegerFieldType, Required: false},
		{Name: "l1_batch_timestamp", Type: bigquery.TimestampFieldType, Required: false},
	}
}

func transactionSchema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "chain_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_number", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "block_time", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "block_date", Type: bigquery.DateFieldType, Required: true},
		{Name: "tx_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "tx_index", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "tx_type", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "from_address", Type: bigquery.StringFieldType, Required: true},
		{Name: "to_address", Type: bigquery.StringFieldType, Required: false},
		{Name: "nonce", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "value", Type: bigquery.StringFieldType, Required: true},
		{Name: "input", Type: bigquery.StringFieldType, Required: true},
		{Name: "gas_limit", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "gas_price", Type: bigquery.StringFieldType, Required: false},
		{Name: "max_fee_per_gas", Type: bigquery.StringFieldType, Required: false},
		{Name: "max_priority_fee_per_gas", Type: bigquery.StringFieldType, Required: false},
		// EIP-4844 extension.
		{Name: "max_fee_per_blob_gas", Type: bigquery.StringFieldType, Required: false},
		{Name: "blob_versioned_hashes", Type: bigquery.StringFieldType, Repeated: true},
		{Name: "blobs", Type: bigquery.StringFieldType, Required: false},
		{Name: "commitments", Type: bigquery.StringFieldType, Required: false},
		{Name: "proofs", Type: bigquery.StringFieldType, Required: false},
		{Name: "access_list", Type: bigquery.StringFieldType, Required: false},
		{Name: "authorization_list", Type: bigquery.StringFieldType, Required: false},
		{Name: "effective_gas_price", Type: bigquery.StringFieldType, Required: true},
		{Name: "cumulative_gas_used", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "gas_used", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "status", Type: bigquery.BooleanFieldType, Required: false},
		{Name: "post_state", Type: bigquery.StringFieldType, Required: false},
		{Name: "contract_address", Type: bigquery.StringFieldType, Required: false},
		// ZKsync dialect extension.
		{Name: "l1_batch_number", Type: bigquery.IntegerFieldType, Required: false},
		{Name: "l1_batch_tx_index", Type: bigquery.IntegerFieldType, Required: false},
	}
}

func logSchema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "chain_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_number", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "block_time", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "block_date", Type: bigquery.DateFieldType, Required: true},
		{Name: "tx_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "tx_index", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "log_index", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "address", Type: bigquery.StringFieldType, Required: true},
		{Name: "topics", Type: bigquery.StringFieldType, Repeated: true},
		{Name: "data", Type: bigquery.StringFieldType, Required: true},
		{Name: "removed", Type: bigquery.BooleanFieldType, Required: true},
	}
}

func traceSchema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "chain_id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_number", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "block_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "block_time", Type: bigquery.TimestampFieldType, Required: true},
		{Name: "block_date", Type: bigquery.DateFieldType, Required: true},
		{Name: "tx_hash", Type: bigquery.StringFieldType, Required: true},
		{Name: "tx_index", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "trace_address", Type: bigquery.IntegerFieldType, Repeated: true},
		{Name: "subtraces", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "trace_type", Type: bigquery.StringFieldType, Required: true},
		{Name: "from_address", Type: bigquery.StringFieldType, Required: true},
		{Name: "to_address", Type: bigquery.StringFieldType, Required: true},
		{Name: "value", Type: bigquery.StringFieldType, Required: true},
		{Name: "gas", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "gas_used", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "input", Type: bigquery.StringFieldType, Required: true},
		{Name: "output", Type: bigquery.StringFieldType, Required: true},
		{Name: "error", Type: bigquery.StringFieldType, Required: false},
	}
}

// SchemaFor returns the table schema for one of the four datasets.
func SchemaFor(dataset string) (bigquery.Schema, bool) {
	switch dataset {
	case "blocks":
		return blockSchema(), true
	case "transactions":
		return transactionSchema(), true
	case "logs":
		return logSchema(), true
	case "traces":
		return traceSchema(), true
	default:
		return nil, false
	}
}
