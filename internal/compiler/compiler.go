package compiler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/asmclient"
	"github.com/example/yulc/internal/cache"
	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/parser"
	"github.com/example/yulc/internal/transform"
	"github.com/example/yulc/internal/yul"
)

// Version is the cache-key compiler version tag (SPEC_FULL §4.8): bump
// whenever a change could alter compiled output for unchanged source.
const Version = "yulc/1"

// Result is the {yul, abi, errors} shape spec §6 describes, plus an
// optional assembled bytecode and a flag recording whether it came from
// the build cache.
type Result struct {
	Yul       string
	ABI       []byte // JSON-encoded ABI item array
	Bytecode  string // "" unless an assembler ran (or a cache hit carried one)
	Errors    []string
	FromCache bool
}

// Options configures one Compile call. All fields are optional; a zero
// Options runs parse->analyze->transform->print with no cache and no
// assembler.
type Options struct {
	Logger    *diagnostics.Logger
	Cache     *cache.Cache
	Assembler *asmclient.Client
}

// Compile runs the full pipeline on src (spec §6): parse, analyze,
// transform, print, and — if configured — cache lookup/store and
// assembler invocation. A non-empty Errors list accompanies an empty
// Yul/Bytecode (spec §7).
func Compile(ctx context.Context, src string, opts Options) Result {
	var cacheKey string
	if opts.Cache != nil {
		cacheKey = cache.Key(Version, src)
		if entry, hit, err := opts.Cache.Get(cacheKey); err == nil && hit {
			return Result{Yul: entry.Yul, ABI: []byte(entry.ABIJSON), Bytecode: entry.Bytecode, FromCache: true}
		}
	}

	bag := diagnostics.NewBag(opts.Logger)

	prog, err := parser.Parse(src)
	if err != nil {
		bag.Add(diagnostics.NewParseError("%s", err.Error()))
		return Result{Errors: bag.Strings()}
	}

	model := analyzer.Analyze(prog, bag)
	if bag.HasErrors() || model == nil {
		return Result{Errors: bag.Strings()}
	}

	obj := transform.Transform(model, bag)
	if bag.HasErrors() {
		return Result{Errors: bag.Strings()}
	}

	entries, err := GenerateABI(model)
	if err != nil {
		bag.Add(diagnostics.NewInternalError(model.Name, "abi generation: %s", err.Error()))
		return Result{Errors: bag.Strings()}
	}
	abiJSON, err := json.Marshal(entries)
	if err != nil {
		bag.Add(diagnostics.NewInternalError(model.Name, "abi encode: %s", err.Error()))
		return Result{Errors: bag.Strings()}
	}

	result := Result{Yul: yul.Print(obj), ABI: abiJSON}

	if opts.Assembler != nil {
		bytecode, err := opts.Assembler.Assemble(ctx, result.Yul)
		if err != nil {
			bag.Add(diagnostics.NewToolchainError("%s", err.Error()))
			return Result{Errors: bag.Strings()}
		}
		result.Bytecode = bytecode
	}

	if opts.Cache != nil {
		_ = opts.Cache.Put(cache.Entry{
			SourceHash: cacheKey,
			Yul:        result.Yul,
			ABIJSON:    string(result.ABI),
			Bytecode:   result.Bytecode,
			CreatedAt:  time.Now(),
		})
	}

	return result
}
