package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress returns the canonical lower-case 0x form of addr
func NormalizeAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// ParseAddress accepts a hex address with or without 0x prefix, in any case
func ParseAddress(s string) (common.Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
