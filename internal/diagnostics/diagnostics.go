// Package diagnostics provides the leveled logger and the accumulating
// error kinds shared by the analyzer, transformer and compiler facade.
//
// The teacher's CLI lessons log with the plain standard library logger
// (log.Printf / log.Fatalf) at every call site. A compiler cannot follow
// that pattern verbatim because it must accumulate diagnostics instead of
// exiting on the first error (spec §7), so this wraps the same *log.Logger
// in a small leveled type instead of reaching for a third-party logging
// library the teacher never uses.
package diagnostics

import (
	"fmt"
	"log"
	"os"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is a minimal leveled wrapper around log.Logger.
type Logger struct {
	out   *log.Logger
	level Level
}

// New returns a Logger writing to stderr at the given minimum level.
func New(level Level) *Logger {
	return &Logger{out: log.New(os.Stderr, "", log.LstdFlags), level: level}
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

// Kind distinguishes the error categories from spec §7.
type Kind int

const (
	KindParse Kind = iota
	KindSemantic
	KindUnsupported
	KindToolchain
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindSemantic:
		return "SemanticError"
	case KindUnsupported:
		return "UnsupportedError"
	case KindToolchain:
		return "ToolchainError"
	case KindInternal:
		return "InternalError"
	default:
		return "Error"
	}
}

// Diagnostic is a single accumulated compiler error.
type Diagnostic struct {
	Kind    Kind
	Message string
	Node    string // offending node kind/name, best-effort, empty if n/a
}

func (d *Diagnostic) Error() string {
	if d.Node != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Node)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func newDiag(k Kind, node string, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: k, Message: fmt.Sprintf(format, args...), Node: node}
}

func NewParseError(format string, args ...interface{}) *Diagnostic {
	return newDiag(KindParse, "", format, args...)
}

func NewSemanticError(node string, format string, args ...interface{}) *Diagnostic {
	return newDiag(KindSemantic, node, format, args...)
}

func NewUnsupportedError(node string, format string, args ...interface{}) *Diagnostic {
	return newDiag(KindUnsupported, node, format, args...)
}

func NewToolchainError(format string, args ...interface{}) *Diagnostic {
	return newDiag(KindToolchain, "", format, args...)
}

func NewInternalError(node string, format string, args ...interface{}) *Diagnostic {
	return newDiag(KindInternal, node, format, args...)
}

// Bag accumulates diagnostics across a compilation unit instead of
// aborting on the first error, per spec §7.
type Bag struct {
	logger *Logger
	items  []*Diagnostic
}

func NewBag(logger *Logger) *Bag {
	return &Bag{logger: logger}
}

func (b *Bag) Add(d *Diagnostic) {
	b.items = append(b.items, d)
	if b.logger != nil {
		if d.Kind == KindInternal {
			b.logger.Error("%s", d.Error())
		} else {
			b.logger.Warn("%s", d.Error())
		}
	}
}

func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

func (b *Bag) Errors() []error {
	errs := make([]error, len(b.items))
	for i, d := range b.items {
		errs[i] = d
	}
	return errs
}

// Strings renders each diagnostic's bare message, the shape the facade's
// {yul, abi, errors: [string]} result (spec §6, §8 scenario 6) expects —
// the compiler facade's error channel is just the message text, while
// Kind/Node stay attached to the Diagnostic/error value for callers (the
// logger, internal error reporting) that want the category too.
func (b *Bag) Strings() []string {
	out := make([]string, len(b.items))
	for i, d := range b.items {
		out[i] = d.Message
	}
	return out
}
