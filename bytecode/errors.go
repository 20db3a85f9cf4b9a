package bytecode

import (
	"fmt"

	"github.com/go-asmgo/asmgo/classfile"
)

func malformed(method string, offset int, detail string) error {
	return &classfile.ParseError{Kind: classfile.ErrMalformedInput, Method: method, Offset: offset, Detail: detail}
}

func illegalState(detail string) error {
	return fmt.Errorf("%w: %s", classfile.ErrIllegalState, detail)
}

func unresolvedLabel(method string) error {
	return fmt.Errorf("%w: method %s flushed with live forward references", classfile.ErrUnresolvedLabel, method)
}

func unsupportedConstruct(method string, detail string) error {
	return fmt.Errorf("%w: %s in %s", classfile.ErrUnsupportedConstruct, detail, method)
}

func overflowLimit(detail string) error {
	return fmt.Errorf("%w: %s", classfile.ErrOverflowLimit, detail)
}
