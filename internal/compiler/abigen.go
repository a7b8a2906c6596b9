// Package compiler is the Compiler Facade (spec §2, §4.2's generateAbi):
// it orchestrates parse -> analyze -> transform -> print, builds the JSON
// ABI, and optionally drives the build cache and assembler client.
package compiler

import (
	"github.com/example/yulc/internal/abi"
	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/evmtype"
)

// GenerateABI builds the JSON ABI item list for model: constructor (if
// any), then every public function, then every event, in that order
// (spec §4.2).
func GenerateABI(model *analyzer.ContractModel) ([]abi.Entry, error) {
	var entries []abi.Entry

	if model.Constructor != nil {
		inputs, err := paramsToABI(model.Constructor.Params)
		if err != nil {
			return nil, err
		}
		entries = append(entries, abi.Entry{Type: abi.TypeConstructor, Inputs: inputs})
	}

	for _, fn := range model.Functions {
		if fn.Visibility != analyzer.Public || fn.IsConstructor {
			continue
		}
		inputs, err := paramsToABI(fn.Params)
		if err != nil {
			return nil, err
		}
		outputs, err := returnToABI(fn.ReturnType)
		if err != nil {
			return nil, err
		}
		entries = append(entries, abi.Entry{
			Type:            abi.TypeFunction,
			Name:            fn.Name,
			Inputs:          inputs,
			Outputs:         outputs,
			StateMutability: mutabilityToABI(fn.Mutability),
		})
	}

	for _, ev := range model.Events {
		var inputs []abi.Parameter
		for _, f := range ev.Fields {
			sol, err := evmtype.ToSolidityType(f.Type)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, abi.Parameter{Name: f.Name, Type: sol, Indexed: f.Indexed})
		}
		entries = append(entries, abi.Entry{Type: abi.TypeEvent, Name: ev.Name, Inputs: inputs})
	}

	return entries, nil
}

func paramsToABI(params []analyzer.Param) ([]abi.Parameter, error) {
	out := make([]abi.Parameter, len(params))
	for i, p := range params {
		sol, err := evmtype.ToSolidityType(p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = abi.Parameter{Name: p.Name, Type: sol}
	}
	return out, nil
}

// returnToABI expands a tuple return into one Parameter per element (spec
// §4.2: "outputs (empty, single, or expanded-tuple)"); a nil return type
// yields no outputs.
func returnToABI(t *evmtype.EvmType) ([]abi.Parameter, error) {
	if t == nil {
		return nil, nil
	}
	if t.Kind == evmtype.KindTuple {
		out := make([]abi.Parameter, len(t.Elems))
		for i, elem := range t.Elems {
			sol, err := evmtype.ToSolidityType(elem)
			if err != nil {
				return nil, err
			}
			out[i] = abi.Parameter{Type: sol}
		}
		return out, nil
	}
	sol, err := evmtype.ToSolidityType(t)
	if err != nil {
		return nil, err
	}
	return []abi.Parameter{{Type: sol}}, nil
}

func mutabilityToABI(m analyzer.Mutability) abi.StateMutability {
	switch m {
	case analyzer.Pure:
		return abi.Pure
	case analyzer.View:
		return abi.View
	case analyzer.Payable:
		return abi.Payable
	default:
		return abi.NonPayable
	}
}
