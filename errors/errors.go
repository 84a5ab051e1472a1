// Package errors provides error handling for modelgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for users who need to fix their vocabulary data
//
// Usage:
//
//	// Wrap a sentinel with context
//	return errors.Wrapf(errors.ErrUnknownPrefix, "expanding %q", id)
//
//	// Add hints for users
//	return errors.WithHint(err, "declare the prefix in the extension @context")
//
//	// Check errors
//	if errors.Is(err, errors.ErrDuplicateField) {
//	    // handle duplicate
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
	Join         = crdb.Join
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinel errors for vocabulary resolution.
// Every fatal condition of a generation run wraps one of these, so callers can
// classify a failure with errors.Is() without parsing messages.
var (
	// ErrUnknownPrefix indicates an identifier uses a prefix missing from the namespace table
	ErrUnknownPrefix = New("namespace prefix not found")

	// ErrNotInSpec indicates a notInSpec entry names a field the canonical parent does not declare
	ErrNotInSpec = New("notInSpec field not found in parent")

	// ErrUnresolvableType indicates a range identifier is neither primitive, enum nor model
	ErrUnresolvableType = New("unrecognised type or enum referenced")

	// ErrAmbiguousReference indicates a referenceable field has more than one candidate type
	ErrAmbiguousReference = New("multiple types with referencing enabled")

	// ErrDuplicateField indicates two properties attach the same field name to one model
	ErrDuplicateField = New("duplicate field declaration")

	// ErrMissingContext indicates an extension document has no @context section
	ErrMissingContext = New("extension document has no @context")

	// ErrFetch indicates an extension document could not be retrieved
	ErrFetch = New("extension fetch failed")

	// ErrIncompatibleVersion indicates an extension requires a different base vocabulary version
	ErrIncompatibleVersion = New("incompatible vocabulary version")
)

// IsFatalVocabularyError reports whether err stems from a precondition violation
// of the vocabulary data itself (as opposed to I/O or configuration).
func IsFatalVocabularyError(err error) bool {
	return err != nil && IsAny(err,
		ErrUnknownPrefix,
		ErrNotInSpec,
		ErrUnresolvableType,
		ErrAmbiguousReference,
		ErrDuplicateField,
	)
}
