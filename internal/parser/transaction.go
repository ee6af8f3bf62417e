package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lgingerich/evm-indexer/internal/chain"
	"github.com/lgingerich/evm-indexer/internal/models"
	"github.com/lgingerich/evm-indexer/internal/rpcclient"
)

// ErrUnknownEnvelope is fatal: an envelope type unrecognized on the
// Ethereum dialect indicates corrupted upstream data (spec §9 open
// question — treated as fatal, never a guessed default).
var ErrUnknownEnvelope = fmt.Errorf("unknown transaction envelope type")

// ParseTransactions iterates the block's full transaction list, dispatches
// on envelope type, and — for ZKsync — reads loose `other` fields either
// for wholly-unrecognized envelopes or to re-wrap legacy-shaped ZKsync
// transactions with their L1 batch fields.
func ParseTransactions(raws []json.RawMessage, dialect chain.Dialect) ([]models.RpcTx, error) {
	out := make([]models.RpcTx, 0, len(raws))
	for i, raw := range raws {
		var rt rpcclient.RawTx
		if err := json.Unmarshal(raw, &rt); err != nil {
			return nil, fieldErr(fmt.Sprintf("transactions[%d]", i), "malformed transaction object")
		}

		tx, err := parseOne(&rt, dialect)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func parseOne(rt *rpcclient.RawTx, dialect chain.Dialect) (models.RpcTx, error) {
	envelope, known := envelopeType(rt.Type)

	if !known {
		if dialect != chain.ZKsync {
			return models.RpcTx{}, ErrUnknownEnvelope
		}
		return parseZKsyncLooseTx(rt)
	}

	tx, err := parseEthereumTx(rt, envelope)
	if err != nil {
		return models.RpcTx{}, err
	}

	if dialect == chain.ZKsync {
		applyZKsyncL1Fields(rt, &tx)
	}
	return tx, nil
}

// envelopeType decodes the RPC "type" hex string. A nil/empty type is
// legacy. Returns known=false for any value outside the five supported
// Ethereum envelopes (0x00-0x04); the caller decides whether that's fatal
// (Ethereum dialect) or a ZKsync loose transaction.
func envelopeType(t *string) (models.EnvelopeType, bool) {
	if t == nil || *t == "" || *t == "0x0" || *t == "0x00" {
		return models.EnvelopeLegacy, true
	}
	s := strings.TrimPrefix(*t, "0x")
	switch s {
	case "1":
		return models.EnvelopeAccessList, true
	case "2":
		return models.EnvelopeDynamicFee, true
	case "3":
		return models.EnvelopeBlob, true
	case "4":
		return models.EnvelopeSetCode, true
	default:
		return 0, false
	}
}

func parseEthereumTx(rt *rpcclient.RawTx, envelope models.EnvelopeType) (models.RpcTx, error) {
	blockNumber, err := hexToUint64("blockNumber", rt.BlockNumber)
	if err != nil {
		return models.RpcTx{}, err
	}
	txIndex, err := hexToUint64("transactionIndex", rt.TransactionIndex)
	if err != nil {
		return models.RpcTx{}, err
	}
	nonce, err := hexToUint64("nonce", rt.Nonce)
	if err != nil {
		return models.RpcTx{}, err
	}
	gasLimit, err := hexToUint64("gas", rt.Gas)
	if err != nil {
		return models.RpcTx{}, err
	}
	value, err := hexToDecimalString("value", rt.Value)
	if err != nil {
		return models.RpcTx{}, err
	}
	r, err := hexToDecimalString("r", rt.R)
	if err != nil {
		return models.RpcTx{}, err
	}
	s, err := hexToDecimalString("s", rt.S)
	if err != nil {
		return models.RpcTx{}, err
	}

	tx := models.RpcTx{
		BlockNumber: blockNumber,
		BlockHash:   rt.BlockHash,
		TxHash:      rt.Hash,
		TxIndex:     txIndex,
		From:        rt.From,
		Type:        envelope,
		ToKind:      models.ToAddress,
		To:          rt.To,
		Nonce:       nonce,
		GasLimit:    gasLimit,
		Value:       value,
		Input:       rt.Input,
		R:           r,
		S:           s,
		V:           rt.V,
	}
	if rt.To == nil {
		tx.ToKind = models.ToContractCreation
	}

	var gasPriceDec *string
	if rt.GasPrice != nil {
		dec, err := hexToDecimalString("gasPrice", *rt.GasPrice)
		if err != nil {
			return models.RpcTx{}, err
		}
		gasPriceDec = &dec
	}
	var maxFeeDec, maxPriorityDec, maxBlobFeeDec *string
	if rt.MaxFeePerGas != nil {
		dec, err := hexToDecimalString("maxFeePerGas", *rt.MaxFeePerGas)
		if err != nil {
			return models.RpcTx{}, err
		}
		maxFeeDec = &dec
	}
	if rt.MaxPriorityFeePerGas != nil {
		dec, err := hexToDecimalString("maxPriorityFeePerGas", *rt.MaxPriorityFeePerGas)
		if err != nil {
			return models.RpcTx{}, err
		}
		maxPriorityDec = &dec
	}
	if rt.MaxFeePerBlobGas != nil {
		dec, err := hexToDecimalString("maxFeePerBlobGas", *rt.MaxFeePerBlobGas)
		if err != nil {
			return models.RpcTx{}, err
		}
		maxBlobFeeDec = &dec
	}

	switch envelope {
	case models.EnvelopeLegacy:
		tx.GasPrice = gasPriceDec
		tx.EffectiveGasPrice = derefOr(gasPriceDec)
	case models.EnvelopeAccessList:
		tx.GasPrice = gasPriceDec
		tx.EffectiveGasPrice = derefOr(gasPriceDec)
		if len(rt.AccessList) > 0 {
			s := string(rt.AccessList)
			tx.AccessListJSON = &s
		}
	case models.EnvelopeDynamicFee:
		tx.MaxFeePerGas = maxFeeDec
		tx.MaxPriorityFeePerGas = maxPriorityDec
		tx.EffectiveGasPrice = derefOr(gasPriceDec)
		if len(rt.AccessList) > 0 {
			s := string(rt.AccessList)
			tx.AccessListJSON = &s
		}
	case models.EnvelopeBlob:
		tx.MaxFeePerGas = maxFeeDec
		tx.MaxPriorityFeePerGas = maxPriorityDec
		tx.MaxFeePerBlobGas = maxBlobFeeDec
		tx.BlobVersionedHashes = rt.BlobVersionedHashes
		tx.EffectiveGasPrice = derefOr(gasPriceDec)
		if len(rt.AccessList) > 0 {
			s := string(rt.AccessList)
			tx.AccessListJSON = &s
		}
	case models.EnvelopeSetCode:
		tx.MaxFeePerGas = maxFeeDec
		tx.MaxPriorityFeePerGas = maxPriorityDec
		tx.EffectiveGasPrice = derefOr(gasPriceDec)
		if len(rt.AccessList) > 0 {
			s := string(rt.AccessList)
			tx.AccessListJSON = &s
		}
		if len(rt.AuthorizationList) > 0 {
			s := string(rt.AuthorizationList)
			tx.AuthorizationListJSON = &s
		}
	}

	return tx, nil
}

// parseZKsyncLooseTx handles envelopes unrecognized in the Ethereum set
// (0x71, 0xff, 0xfe, ...), read entirely from the loose `other` map.
func parseZKsyncLooseTx(rt *rpcclient.RawTx) (models.RpcTx, error) {
	// RawTx decodes the common keys into typed fields and keeps only the
	// rest in Other; merge them back so the lookups below see every key.
	other := make(map[string]json.RawMessage, len(rt.Other)+8)
	for k, v := range rt.Other {
		other[k] = v
	}
	for k, v := range map[string]*string{
		"nonce": &rt.Nonce, "gas": &rt.Gas, "value": &rt.Value, "input": &rt.Input,
		"to": rt.To, "gasPrice": rt.GasPrice, "maxFeePerGas": rt.MaxFeePerGas,
		"maxPriorityFeePerGas": rt.MaxPriorityFeePerGas,
	} {
		if v != nil && *v != "" {
			other[k], _ = json.Marshal(*v)
		}
	}

	nonceHex, err := requireOtherString(other, "nonce")
	if err != nil {
		return models.RpcTx{}, err
	}
	nonce, err := hexToUint64("nonce", nonceHex)
	if err != nil {
		return models.RpcTx{}, err
	}

	gasHex, err := requireOtherString(other, "gas")
	if err != nil {
		return models.RpcTx{}, err
	}
	gasLimit, err := hexToUint64("gas", gasHex)
	if err != nil {
		return models.RpcTx{}, err
	}

	blockNumber, err := hexToUint64("blockNumber", rt.BlockNumber)
	if err != nil {
		return models.RpcTx{}, err
	}
	txIndex, err := hexToUint64("transactionIndex", rt.TransactionIndex)
	if err != nil {
		return models.RpcTx{}, err
	}

	tx := models.RpcTx{
		BlockNumber: blockNumber,
		BlockHash:   rt.BlockHash,
		TxHash:      rt.Hash,
		TxIndex:     txIndex,
		From:        rt.From,
		Type:        models.EnvelopeLegacy,
		Nonce:       nonce,
		GasLimit:    gasLimit,
		Input:       rt.Input,
		R:           rt.R,
		S:           rt.S,
		V:           rt.V,
	}

	// `to` deserializes as either an address or a tx-kind; try tx-kind
	// first (per spec), then fall back to address.
	toKind, toAddr, err := parseToField(other)
	if err != nil {
		return models.RpcTx{}, err
	}
	tx.ToKind = toKind
	tx.To = toAddr

	if v, ok := optionalOtherString(other, "maxFeePerGas"); ok {
		if dec, err := hexToDecimalString("maxFeePerGas", v); err == nil {
			tx.MaxFeePerGas = &dec
		}
	}
	if v, ok := optionalOtherString(other, "maxPriorityFeePerGas"); ok {
		if dec, err := hexToDecimalString("maxPriorityFeePerGas", v); err == nil {
			tx.MaxPriorityFeePerGas = &dec
		}
	}
	if v, ok := optionalOtherString(other, "gasPrice"); ok {
		if dec, err := hexToDecimalString("gasPrice", v); err == nil {
			tx.GasPrice = &dec
			tx.EffectiveGasPrice = dec
		}
	}
	if v, ok := optionalOtherString(other, "value"); ok {
		if dec, err := hexToDecimalString("value", v); err == nil {
			tx.Value = dec
		}
	} else {
		tx.Value = "0"
	}
	if v, ok := optionalOtherString(other, "input"); ok {
		tx.Input = v
	}
	if v, ok := optionalOtherString(other, "l1BatchNumber"); ok {
		if n, err := hexToUint64("l1BatchNumber", v); err == nil {
			tx.L1BatchNumber = &n
		}
	}
	if v, ok := optionalOtherString(other, "l1BatchTxIndex"); ok {
		if n, err := hexToUint64("l1BatchTxIndex", v); err == nil {
			tx.L1BatchTxIndex = &n
		}
	}

	return tx, nil
}

// applyZKsyncL1Fields re-wraps an Ethereum-envelope-shaped ZKsync legacy
// transaction with its L1 batch fields read from `other`.
func applyZKsyncL1Fields(rt *rpcclient.RawTx, tx *models.RpcTx) {
	if v, ok := optionalOtherString(rt.Other, "l1BatchNumber"); ok {
		if n, err := hexToUint64("l1BatchNumber", v); err == nil {
			tx.L1BatchNumber = &n
		}
	}
	if v, ok := optionalOtherString(rt.Other, "l1BatchTxIndex"); ok {
		if n, err := hexToUint64("l1BatchTxIndex", v); err == nil {
			tx.L1BatchTxIndex = &n
		}
	}
}

func parseToField(other map[string]json.RawMessage) (models.ToKind, *string, error) {
	raw, ok := other["to"]
	if !ok {
		return models.ToContractCreation, nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" || s == "0x" {
		// Deserializes as a tx-kind sentinel, not an address.
		return models.ToContractCreation, nil, nil
	}
	if len(s) == 42 && strings.HasPrefix(s, "0x") {
		return models.ToAddress, &s, nil
	}
	return models.ToContractCreation, nil, nil
}

func requireOtherString(other map[string]json.RawMessage, key string) (string, error) {
	v, ok := optionalOtherString(other, key)
	if !ok {
		return "", fieldErr(key, "missing required field in loose transaction")
	}
	return v, nil
}

func optionalOtherString(other map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := other[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func derefOr(s *string) string {
	if s == nil {
		return "0"
	}
	return *s
}
