// Package errs implements the error-severity model described in the
// engine's error handling design: a small set of named kinds plus a
// batch accumulator that collects non-fatal diagnostics so they can be
// flushed together, instead of aborting on the first one.
package errs

import (
	"fmt"
	"strings"
)

// Kind names an error severity. Ordering matches the engine's escalation
// ladder: values below kWarning never abort anything, kVerify and above
// can.
type Kind int

const (
	KindTrace Kind = iota
	KindFinest
	KindFine
	KindMedium
	KindInfo
	KindImportant
	KindWarning
	KindVerify
	KindError
	KindFatal
	KindCodeError
)

func (k Kind) String() string {
	switch k {
	case KindTrace:
		return "trace"
	case KindFinest:
		return "finest"
	case KindFine:
		return "fine"
	case KindMedium:
		return "medium"
	case KindInfo:
		return "info"
	case KindImportant:
		return "important"
	case KindWarning:
		return "warning"
	case KindVerify:
		return "verify"
	case KindError:
		return "error"
	case KindFatal:
		return "fatal"
	case KindCodeError:
		return "code_error"
	default:
		return "unknown"
	}
}

// Fatal reports whether a diagnostic of this kind must abort the run
// immediately (kFatal, kCodeError), as opposed to accumulating in a
// Batch (kVerify, kError) or being purely informational.
func (k Kind) Fatal() bool {
	return k == KindFatal || k == KindCodeError
}

// Entry is a single recorded diagnostic.
type Entry struct {
	Kind    Kind
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Batch accumulates diagnostics so that Build/Validate can report every
// problem found in one pass rather than stopping at the first one.
// Batch is not safe for concurrent use; each worker/build pass owns its
// own Batch.
type Batch struct {
	entries  []Entry
	warnings []Entry
}

// Add records a diagnostic. kWarning entries are tracked separately so
// FormatWarnings can render the structured *warnings block independently
// of the fatal/error summary.
func (b *Batch) Add(kind Kind, format string, args ...any) {
	e := Entry{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if kind == KindWarning {
		b.warnings = append(b.warnings, e)
		return
	}
	b.entries = append(b.entries, e)
}

// HasErrors reports whether any kVerify/kError (or worse) entries were
// recorded.
func (b *Batch) HasErrors() bool {
	return len(b.entries) > 0
}

// Warnings returns the recorded kWarning entries.
func (b *Batch) Warnings() []Entry {
	return b.warnings
}

// Errors returns the recorded non-warning entries.
func (b *Batch) Errors() []Entry {
	return b.entries
}

// Error implements the error interface, rendering the batch as a numbered
// summary matching the engine's fatal-exit presentation.
func (b *Batch) Error() string {
	if !b.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("*errors\n")
	for i, e := range b.entries {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, e)
	}
	sb.WriteString("*end\n")
	return sb.String()
}

// FormatWarnings renders the accumulated warnings as the structured
// *warnings block described by the engine's downstream-tooling contract.
// It is the core's half of that interface; deciding where to print it
// (file, stdout, report stream) is a collaborator's responsibility.
func (b *Batch) FormatWarnings() string {
	if len(b.warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("*warnings\n")
	for i, w := range b.warnings {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, w.Message)
	}
	sb.WriteString("*end\n")
	return sb.String()
}

// AsError returns the batch as an error if it holds any non-warning
// entries, or nil otherwise — the idiomatic return shape for Validate/
// Build.
func (b *Batch) AsError() error {
	if !b.HasErrors() {
		return nil
	}
	return b
}
