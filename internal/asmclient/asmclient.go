// Package asmclient wraps the external Yul-to-bytecode assembler
// (spec §5/§6, SPEC_FULL §4.9): a black-box subprocess whose only
// contract is "takes Yul source, returns hex bytecode". Grounded on the
// teacher's consistent scoped-resource idiom (`defer cancel()`, `defer
// client.Close()`) generalized to a temp-directory-scoped subprocess
// instead of an RPC dial.
package asmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client invokes one assembler binary. BinaryPath and Args are fixed at
// construction; every Assemble call gets its own scratch directory.
type Client struct {
	BinaryPath string
	Args       []string
}

// New returns a Client for the assembler at binaryPath, passed extraArgs
// before the source file path on every invocation.
func New(binaryPath string, extraArgs ...string) *Client {
	return &Client{BinaryPath: binaryPath, Args: extraArgs}
}

// Assemble writes yulSource to a freshly made per-invocation directory,
// execs the assembler, and parses its stdout. The directory is removed
// on every return path, including a panic recovered at this boundary
// (spec §5's scoped-acquisition-with-guaranteed-release requirement).
func (c *Client) Assemble(ctx context.Context, yulSource string) (bytecodeHex string, err error) {
	dir, mkErr := os.MkdirTemp("", "yulc-asm-*")
	if mkErr != nil {
		return "", fmt.Errorf("temp dir: %w", mkErr)
	}
	defer func() {
		os.RemoveAll(dir)
		if r := recover(); r != nil {
			err = fmt.Errorf("assembler panic: %v", r)
		}
	}()

	srcPath := filepath.Join(dir, "contract.yul")
	if writeErr := os.WriteFile(srcPath, []byte(yulSource), 0o644); writeErr != nil {
		return "", fmt.Errorf("write source: %w", writeErr)
	}

	args := make([]string, 0, len(c.Args)+1)
	args = append(args, c.Args...)
	args = append(args, srcPath)

	cmd := exec.CommandContext(ctx, c.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if runErr := cmd.Run(); runErr != nil {
		return "", fmt.Errorf("%s: %w (stderr: %s)", c.BinaryPath, runErr, strings.TrimSpace(stderr.String()))
	}

	return parseOutput(stdout.Bytes())
}

// parseOutput accepts either a bare hex string or a {"bytecode":"0x.."}
// JSON envelope (SPEC_FULL §4.9), both normalized to a "0x"-prefixed,
// validated hex string.
func parseOutput(out []byte) (string, error) {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("empty assembler output")
	}
	if text[0] == '{' {
		var envelope struct {
			Bytecode string `json:"bytecode"`
		}
		if err := json.Unmarshal([]byte(text), &envelope); err != nil {
			return "", fmt.Errorf("unparseable JSON output: %w", err)
		}
		text = envelope.Bytecode
	}
	text = normalizeHexPrefix(text)
	if _, err := hexutil.Decode(text); err != nil {
		return "", fmt.Errorf("unparseable bytecode output %q: %w", text, err)
	}
	return text, nil
}

func normalizeHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
