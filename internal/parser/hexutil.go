package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

func hexToUint64(field, s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, fieldErr(field, "missing")
	}
	var n uint256.Int
	if err := n.SetFromHex("0x" + s); err != nil {
		return 0, fieldErr(field, fmt.Sprintf("invalid hex: %v", err))
	}
	if !n.IsUint64() {
		return 0, fieldErr(field, "value exceeds 64 bits")
	}
	return n.Uint64(), nil
}

// hexToDecimalString stringifies a hex-encoded integer for values that may
// exceed 64 bits (difficulty, total difficulty, size, value, r, s).
func hexToDecimalString(field, s string) (string, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return "0", nil
	}
	var n uint256.Int
	if err := n.SetFromHex("0x" + s); err != nil {
		return "", fieldErr(field, fmt.Sprintf("invalid hex: %v", err))
	}
	return n.Dec(), nil
}

func rawToHexString(field string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fieldErr(field, "expected hex string")
	}
	return s, nil
}
