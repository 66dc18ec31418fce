// Package bpe defines the error-kind vocabulary shared across the bpcore
// subsystems, plus the OR-able parse-diagnostic bitmask raised while
// decoding bundles.
package bpe

import "fmt"

// Code is one of the error kinds a caller of bpcore can receive. It
// implements error so it can be returned, wrapped, and compared with
// errors.Is.
type Code int

const (
	// Success is never returned as an error; it exists so zero-value
	// Code comparisons read naturally in tests and logs.
	Success Code = iota
	// ErrGeneric covers failures with no more specific Code.
	ErrGeneric
	// ErrTimeout means a caller-supplied deadline elapsed.
	ErrTimeout
	// ErrDuplicate means a key conflict (pool blocktype registration,
	// R-B tree insert, cache hash-index collision).
	ErrDuplicate
	// ErrIncomplete means truncation or a partial parse/copy.
	ErrIncomplete
	// ErrFailedIntegrityCheck means a decoded CRC did not match the
	// recomputed value.
	ErrFailedIntegrityCheck
	// ErrOutOfMemory means a pool's free list was exhausted.
	ErrOutOfMemory
	// ErrAPI means the caller passed invalid arguments.
	ErrAPI
)

func (c Code) Error() string {
	switch c {
	case Success:
		return "success"
	case ErrTimeout:
		return "timeout"
	case ErrDuplicate:
		return "duplicate"
	case ErrIncomplete:
		return "incomplete"
	case ErrFailedIntegrityCheck:
		return "failed integrity check"
	case ErrOutOfMemory:
		return "out of memory"
	case ErrAPI:
		return "api error"
	default:
		return "error"
	}
}

// Wrap attaches context to a Code the way the rest of the module wraps
// errors, while keeping errors.Is(err, code) working.
func Wrap(c Code, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), c)
}

// Flag is a bit in the parse-diagnostic mask a decoder ORs into a
// caller-provided mask and logs, per spec.md §7.
type Flag uint32

const (
	// FlagFailedToParse marks a structural CBOR parse failure.
	FlagFailedToParse Flag = 1 << iota
	// FlagNoncompliant marks a bundle that parsed but violates a
	// MUST in RFC 9171.
	FlagNoncompliant
	// FlagDropped marks a bundle the node discarded without relaying.
	FlagDropped
	// FlagDiagnostic marks a condition worth logging but not acting on.
	FlagDiagnostic
)

// Has reports whether f is set in the mask m.
func (m Flag) Has(f Flag) bool { return m&f != 0 }

// Set ORs f into *m, matching the "OR'd into a caller-provided mask"
// wording of spec.md §7.
func Set(m *Flag, f Flag) { *m |= f }
