// Package abi computes canonical type signatures, 4-byte function
// selectors, and JSON ABI items (spec §4.2). The Entry/Parameter JSON
// shape is grounded on other_examples/hyperledger-firefly-signer
// (pkg/abi/abi.go: Entry{Type,Name,Inputs,Outputs,StateMutability},
// Parameter{Name,Type,Indexed}) and cross-checked against
// other_examples/boolw-go-web3 (abi/abi.go) and
// other_examples/go-chain-go-tron (abi/abi.go). Selector/topic hashing
// uses golang.org/x/crypto/sha3 exactly as the teacher's 11-storage and
// 09-events modules hash mapping keys and event signatures.
package abi

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/example/yulc/internal/evmtype"
)

// StateMutability mirrors Solidity's ABI stateMutability field.
type StateMutability string

const (
	Pure       StateMutability = "pure"
	View       StateMutability = "view"
	Payable    StateMutability = "payable"
	NonPayable StateMutability = "nonpayable"
)

// EntryType is the ABI JSON item discriminator (spec §6).
type EntryType string

const (
	TypeFunction    EntryType = "function"
	TypeConstructor EntryType = "constructor"
	TypeEvent       EntryType = "event"
	TypeError       EntryType = "error"
)

// Parameter is one function input/output or event field in the JSON ABI.
type Parameter struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// Entry is one top-level ABI JSON item.
type Entry struct {
	Type            EntryType       `json:"type"`
	Name            string          `json:"name,omitempty"`
	Inputs          []Parameter     `json:"inputs"`
	Outputs         []Parameter     `json:"outputs,omitempty"`
	StateMutability StateMutability `json:"stateMutability,omitempty"`
}

// keccak256 hashes b with the legacy Keccak-256 variant Ethereum uses
// (not NIST SHA3), matching the teacher's crypto/sha3 usage verbatim.
func keccak256(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	return h.Sum(nil)
}

// CanonicalSignature renders `name(T1,T2,...)` using canonical Solidity
// type spellings (spec §4.2).
func CanonicalSignature(name string, params []*evmtype.EvmType) (string, error) {
	parts := make([]string, len(params))
	for i, p := range params {
		s, err := evmtype.ToSolidityType(p)
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", i, err)
		}
		parts[i] = s
	}
	return name + "(" + strings.Join(parts, ",") + ")", nil
}

// ComputeSelector returns the "0x"-prefixed, lowercase-hex first 4 bytes
// of keccak256(signature) (spec §4.2, §8's invariant: len(selector)==10).
func ComputeSelector(name string, params []*evmtype.EvmType) (string, error) {
	sig, err := CanonicalSignature(name, params)
	if err != nil {
		return "", err
	}
	sum := keccak256([]byte(sig))
	return "0x" + hex.EncodeToString(sum[:4]), nil
}

// EventTopic0 returns topic0 = keccak256(name(T1,T2,...)) using the FULL
// (not canonical-minus-indexed) field types (spec §3's EventSchema note).
func EventTopic0(name string, fieldTypes []*evmtype.EvmType) ([32]byte, error) {
	sig, err := CanonicalSignature(name, fieldTypes)
	if err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], keccak256([]byte(sig)))
	return out, nil
}

// CustomErrorSelector is an alias of ComputeSelector for `revert(Err(args))`
// custom-error calls (spec §4.4.9): same 4-byte-of-keccak256 rule.
func CustomErrorSelector(name string, params []*evmtype.EvmType) (string, error) {
	return ComputeSelector(name, params)
}
