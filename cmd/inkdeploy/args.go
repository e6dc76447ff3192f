package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/avense/inkdeploy/artifact"
	"github.com/avense/inkdeploy/types"
)

// parseBalance parses a decimal balance string; empty means unset.
func parseBalance(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}

// convertArgs turns the CLI's string arguments into typed values matching
// the constructor's parameter descriptors.
func convertArgs(ctor artifact.Constructor, raw []string) ([]any, error) {
	if len(raw) != len(ctor.Args) {
		return nil, fmt.Errorf("constructor %q takes %d arguments, got %d", ctor.Label, len(ctor.Args), len(raw))
	}
	out := make([]any, len(raw))
	for i, s := range raw {
		v, err := convertArg(ctor.Args[i].Type, s)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", ctor.Args[i].Label, err)
		}
		out[i] = v
	}
	return out, nil
}

func convertArg(typeName, s string) (any, error) {
	switch strings.ToLower(strings.ReplaceAll(typeName, " ", "")) {
	case "bool":
		return strconv.ParseBool(s)
	case "u8", "u16", "u32", "u64", "timestamp", "moment", "blocknumber":
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an unsigned integer: %q", s)
		}
		return n, nil
	case "u128", "balance":
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("not an integer: %q", s)
		}
		return n, nil
	case "string", "str":
		return s, nil
	case "accountid", "hash", "[u8;32]":
		id, err := types.AccountIDFromHex(s)
		if err != nil {
			return nil, err
		}
		return id, nil
	case "vec<u8>":
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, fmt.Errorf("not valid hex: %q", s)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", typeName)
	}
}
