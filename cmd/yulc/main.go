// Command yulc is the CLI wrapper around internal/compiler (spec §6,
// SPEC_FULL §6): `yulc build <file.ya> [file2.ya ...] [-o out.yul]
// [-assembler <path>] [-cache <path>] [-abi out.abi.json] [-j N]`.
// Plain `flag`, no cobra/viper, matching every teacher cmd/*/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/example/yulc/internal/asmclient"
	"github.com/example/yulc/internal/cache"
	"github.com/example/yulc/internal/compiler"
	"github.com/example/yulc/internal/diagnostics"
)

const usage = "usage: yulc build <file.ya> [file2.ya ...] [-o out.yul] [-assembler <path>] [-cache <path>] [-abi out.abi.json] [-j N]"

func main() {
	if len(os.Args) < 2 || os.Args[1] != "build" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "Yul output path (single-file mode; defaults to stdout)")
	assemblerPath := fs.String("assembler", "", "external assembler binary (optional)")
	cachePath := fs.String("cache", "", "sqlite build cache path (optional, disabled if empty)")
	abiPath := fs.String("abi", "", "ABI JSON output path (single-file mode only)")
	jobs := fs.Int("j", 1, "concurrent compile workers (batch mode only)")
	fs.Parse(os.Args[2:])

	// flag parsing stops at the first non-flag argument, so resume after
	// each file name to accept flags that follow the files.
	var files []string
	for rest := fs.Args(); len(rest) > 0; rest = fs.Args() {
		files = append(files, rest[0])
		fs.Parse(rest[1:])
	}
	if len(files) == 0 {
		log.Fatal(usage)
	}

	logger := diagnostics.New(diagnostics.LevelWarn)

	var bcache *cache.Cache
	if *cachePath != "" {
		c, err := cache.Open(*cachePath)
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		defer c.Close()
		bcache = c
	}

	var asm *asmclient.Client
	if *assemblerPath != "" {
		asm = asmclient.New(*assemblerPath)
	}

	opts := compiler.Options{Logger: logger, Cache: bcache, Assembler: asm}

	if len(files) == 1 {
		runOne(files[0], *out, *abiPath, opts)
		return
	}

	if *out != "" || *abiPath != "" {
		log.Fatal("-o and -abi apply only when compiling a single file")
	}
	runBatch(files, *jobs, opts)
}

func runOne(path, outPath, abiPath string, opts compiler.Options) {
	src, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	res := compiler.Compile(context.Background(), string(src), opts)
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}
	writeOrPrint(outPath, res.Yul)
	if abiPath != "" {
		if err := os.WriteFile(abiPath, res.ABI, 0o644); err != nil {
			log.Fatalf("write abi: %v", err)
		}
	}
	if res.Bytecode != "" {
		fmt.Fprintln(os.Stderr, "bytecode:", res.Bytecode)
	}
}

func writeOrPrint(path, text string) {
	if path == "" {
		fmt.Println(text)
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}

// runBatch compiles files concurrently over a bounded worker pool
// (grounded on the teacher's 16-concurrency module's channel-of-jobs
// pattern): independent compilation units share no state (spec §5), so
// -j N workers drain a shared job channel and each writes its own
// "<path>.yul" output.
func runBatch(files []string, workers int, opts compiler.Options) {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := false

	fail := func(format string, args ...interface{}) {
		mu.Lock()
		fmt.Fprintf(os.Stderr, format, args...)
		failed = true
		mu.Unlock()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				src, err := os.ReadFile(path)
				if err != nil {
					fail("%s: read: %v\n", path, err)
					continue
				}
				res := compiler.Compile(context.Background(), string(src), opts)
				if len(res.Errors) > 0 {
					for _, e := range res.Errors {
						fail("%s: %s\n", path, e)
					}
					continue
				}
				if err := os.WriteFile(path+".yul", []byte(res.Yul), 0o644); err != nil {
					fail("%s: write: %v\n", path, err)
				}
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	if failed {
		os.Exit(1)
	}
}
