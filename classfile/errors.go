package classfile

import (
	"errors"
	"strconv"
)

// Sentinel error kinds. Every error the reader or writer raises wraps
// exactly one of these with %w, so callers can discriminate with
// errors.Is while still seeing offset/method context in Error().
var (
	// ErrMalformedInput covers truncated class files, bad magic, an
	// unknown constant-pool tag, or a code offset outside the method body.
	ErrMalformedInput = errors.New("asmgo: malformed input")

	// ErrUnresolvedLabel is raised when a writer is flushed while a label
	// still has pending forward references.
	ErrUnresolvedLabel = errors.New("asmgo: unresolved label")

	// ErrIllegalState covers resolving a label twice, an overflowing
	// short branch with no wide form, a MethodWriter that FinishMethod
	// does not know or that was never finished, and an AddConst value of
	// an unsupported type. Reading a label's offset before it is resolved
	// and reusing a label across writers are not detected.
	ErrIllegalState = errors.New("asmgo: illegal state")

	// ErrUnsupportedConstruct is raised when jsr/ret appear in a method
	// body for which full stack-map frame computation was requested.
	ErrUnsupportedConstruct = errors.New("asmgo: unsupported construct")

	// ErrOverflowLimit is raised when a method body exceeds 65535 bytes
	// after the resize pass, or a constant-pool index exceeds u16.
	ErrOverflowLimit = errors.New("asmgo: overflow limit")
)

// ParseError decorates one of the sentinel errors with the method and
// byte offset at which it was detected, mirroring the context the
// teacher's decoder embeds in its wrapped fmt.Errorf strings.
type ParseError struct {
	Kind   error
	Method string
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Method == "" {
		return e.Kind.Error() + ": " + e.Detail
	}
	return e.Kind.Error() + " in " + e.Method + " at offset " + strconv.Itoa(e.Offset) + ": " + e.Detail
}

func (e *ParseError) Unwrap() error { return e.Kind }
