// Package compileerr implements the engine's typed compile-time errors,
// accumulated in an ErrorBucket and reported as a batch (spec §6/§7).
// Grounded on the teacher's config.Validate() single-return-error style,
// generalized to a multi-error bucket via the stdlib's errors.Join for
// batch reporting — the same "accumulate, then report together" shape
// scallop's front-compiler analyzer buckets use, expressed with Go's own
// idiom instead of a hand-rolled error-list type.
package compileerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the compile-error categories named in spec §6/§7.
// Parse is never produced by this repo (the surface parser is out of
// scope) but the kind exists so a future parser can populate it.
type Kind int

const (
	KindParse Kind = iota
	KindWildcardMisplaced
	KindInvalidCharLiteral
	KindOutputFileConfig
	KindCannotStratify
	KindAmbiguousDisjunctionHead
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindWildcardMisplaced:
		return "wildcard_misplaced"
	case KindInvalidCharLiteral:
		return "invalid_char_literal"
	case KindOutputFileConfig:
		return "output_file_config"
	case KindCannotStratify:
		return "cannot_stratify"
	case KindAmbiguousDisjunctionHead:
		return "ambiguous_disjunction_head"
	}
	return "unknown"
}

// Location is a source position. The surface parser is out of scope, so
// this repo's own errors (stratification, output-file config) leave it
// zero; it exists for a future parser to populate.
type Location struct {
	Line, Column int
}

type Error struct {
	Kind     Kind
	Message  string
	Location Location
}

func (e *Error) Error() string {
	if e.Location.Line == 0 && e.Location.Column == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Kind, e.Location.Line, e.Location.Column, e.Message)
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrorBucket accumulates compile errors so the whole batch is reported
// together instead of failing fast on the first one (spec §7
// "Propagation: compile errors accumulate in analyzer buckets").
type ErrorBucket struct {
	errs []*Error
}

func (b *ErrorBucket) Add(err *Error) {
	b.errs = append(b.errs, err)
}

func (b *ErrorBucket) HasErrors() bool { return len(b.errs) > 0 }

func (b *ErrorBucket) Errors() []*Error { return b.errs }

// Join reports the whole batch as a single error via the stdlib's
// errors.Join, preserving each individual *Error for callers that want to
// errors.As/errors.Is into a specific one.
func (b *ErrorBucket) Join() error {
	if len(b.errs) == 0 {
		return nil
	}
	wrapped := make([]error, len(b.errs))
	for i, e := range b.errs {
		wrapped[i] = e
	}
	return errors.Join(wrapped...)
}
