package rpcclient

import (
	"math/big"
	"strings"
)

// mustHexUint parses a 0x-prefixed hex uint, returning 0 for an empty or
// malformed string rather than panicking — call frames from a lenient
// tracer may omit gas fields.
func mustHexUint(s string) uint64 {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0
	}
	n := new(big.Int)
	if _, ok := n.SetString(s, 16); !ok {
		return 0
	}
	return n.Uint64()
}

func hexToBigInt(s string) *big.Int {
	s = strings.TrimPrefix(s, "0x")
	n := new(big.Int)
	if s == "" {
		return n
	}
	n.SetString(s, 16)
	return n
}
