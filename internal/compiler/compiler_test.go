package compiler

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/example/yulc/internal/abi"
)

func compileOK(t *testing.T, src string) Result {
	t.Helper()
	res := Compile(context.Background(), src, Options{})
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected compile errors: %v", res.Errors)
	}
	return res
}

// TestCounterScenario is spec §8 scenario 1.
func TestCounterScenario(t *testing.T) {
	src := `
export class Counter {
    @storage
    value: u256 = 0n;

    increment() {
        value = value + 1;
    }

    get(): u256 {
        return value;
    }
}
`
	res := compileOK(t, src)
	y := res.Yul

	if !strings.Contains(y, `object "Counter"`) {
		t.Error(`missing object "Counter"`)
	}
	if !strings.Contains(y, `object "Counter_deployed"`) {
		t.Error(`missing object "Counter_deployed"`)
	}
	if !strings.Contains(y, "shr(224, calldataload(0))") {
		t.Error("dispatcher must shr(224, calldataload(0))")
	}
	if !strings.Contains(y, "revert(0, 0)") {
		t.Error("default dispatch case must revert(0, 0)")
	}
	if !strings.Contains(y, "sstore(0, add(sload(0), 1))") {
		t.Error("increment() must sstore(0, add(sload(0), 1))")
	}
}

// TestCalcAddScenario is spec §8 scenario 2.
func TestCalcAddScenario(t *testing.T) {
	src := `
export class Calc {
    @pure
    add(a: u256, b: u256): u256 {
        return a + b;
    }
}
`
	res := compileOK(t, src)

	if !strings.Contains(res.Yul, "0x771602f7") {
		t.Error("dispatcher case must be keyed by selector 0x771602f7")
	}

	var entries []abi.Entry
	if err := json.Unmarshal(res.ABI, &entries); err != nil {
		t.Fatalf("ABI JSON: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ABI entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.StateMutability != abi.Pure {
		t.Errorf("stateMutability = %q, want pure", e.StateMutability)
	}
	wantInputs := []abi.Parameter{{Name: "a", Type: "uint256"}, {Name: "b", Type: "uint256"}}
	if len(e.Inputs) != 2 || e.Inputs[0] != wantInputs[0] || e.Inputs[1] != wantInputs[1] {
		t.Errorf("inputs = %+v, want %+v", e.Inputs, wantInputs)
	}
	if len(e.Outputs) != 1 || e.Outputs[0].Type != "uint256" {
		t.Errorf("outputs = %+v, want a single uint256", e.Outputs)
	}
}

// TestMappingIndexScenario is spec §8 scenario 3: balances[msg.sender]
// must lower to a keccak256 over a 64-byte scratch buffer containing
// [pad32(caller()), pad32(0)].
func TestMappingIndexScenario(t *testing.T) {
	src := `
export class Bank {
    @storage
    balances: Mapping<address,u256>;

    balanceOfSender(): u256 {
        return balances[msg.sender];
    }
}
`
	res := compileOK(t, src)
	y := res.Yul
	if !strings.Contains(y, "mstore(0, and(caller(), 1461501637330902918203684832716283019655932542975))") {
		t.Error("expected mstore(0, and(caller(), <160-bit mask>)) to pad the masked mapping key")
	}
	if !strings.Contains(y, "mstore(32, 0)") {
		t.Error("expected mstore(32, 0) to pad the base slot")
	}
	if !strings.Contains(y, "keccak256(0, 64)") {
		t.Error("expected keccak256(0, 64) to derive the mapping element slot")
	}
}

// TestTransferEventScenario is spec §8 scenario 5.
func TestTransferEventScenario(t *testing.T) {
	src := `
event Transfer {
    from: indexed<address>;
    to: indexed<address>;
    value: u256;
}
export class Token {
    @event
    transferEvent: Transfer;

    doTransfer(to: address, value: u256) {
        this.transferEvent.emit({from: msg.sender, to: to, value: value});
    }
}
`
	res := compileOK(t, src)
	y := res.Yul
	if !strings.Contains(y, "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef") {
		t.Error("missing Transfer(address,address,uint256) topic0")
	}
	if !strings.Contains(y, "log3(0, 32,") {
		t.Error("expected a 3-topic log (1 + 2 indexed fields)")
	}
	if !strings.Contains(y, "mstore(0, value)") {
		t.Error("expected the non-indexed value field stored at offset 0")
	}
}

// TestNoExportedClassScenario is spec §8 scenario 6.
func TestNoExportedClassScenario(t *testing.T) {
	src := `
class NotExported {
    f(): u256 { return 1; }
}
`
	res := Compile(context.Background(), src, Options{})
	want := []string{"No contract found. Export a class to define a contract."}
	if len(res.Errors) != 1 || res.Errors[0] != want[0] {
		t.Errorf("errors = %v, want %v", res.Errors, want)
	}
	if res.Yul != "" {
		t.Errorf("Yul = %q, want empty on error", res.Yul)
	}
}

func TestNonPayableRejectsCallvalue(t *testing.T) {
	src := `
export class C {
    f() {}
}
`
	res := compileOK(t, src)
	if !strings.Contains(res.Yul, "if callvalue() {") {
		t.Error("expected a non-payable function to guard against nonzero callvalue()")
	}
}

func TestPayableSkipsCallvalueGuard(t *testing.T) {
	src := `
export class C {
    @payable
    f() {}
}
`
	res := compileOK(t, src)
	if strings.Contains(res.Yul, "if callvalue() {") {
		t.Error("a payable function must not guard against callvalue()")
	}
}
