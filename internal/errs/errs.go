// Package errs is the error taxonomy shared by the folder, manager and CLI layers.
//
// Errors carry a Code; errors.Is matches any two *Error values with the same code,
// so callers compare against the exported sentinels:
//
//	if errors.Is(err, errs.ErrViewLocked) { ... }
package errs

import (
	"errors"
	"fmt"
)

type Code int

const (
	CodeInternal Code = iota
	CodeNotInitialized
	CodeRecordNotFound
	CodeViewLocked
	CodeSelfOperation
	CodeAlreadyInSection
	CodeUnknownLayout
	CodeInvalidID
	CodeNotSupported
)

var codeNames = map[Code]string{
	CodeInternal:         "internal",
	CodeNotInitialized:   "not_initialized",
	CodeRecordNotFound:   "record_not_found",
	CodeViewLocked:       "view_locked",
	CodeSelfOperation:    "self_operation_rejected",
	CodeAlreadyInSection: "already_in_section",
	CodeUnknownLayout:    "unknown_layout",
	CodeInvalidID:        "invalid_identifier",
	CodeNotSupported:     "not_supported",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotInitialized   = &Error{Code: CodeNotInitialized, Msg: "folder not initialized"}
	ErrRecordNotFound   = &Error{Code: CodeRecordNotFound, Msg: "record not found"}
	ErrViewLocked       = &Error{Code: CodeViewLocked, Msg: "view is locked"}
	ErrSelfOperation    = &Error{Code: CodeSelfOperation, Msg: "operation on itself is not allowed"}
	ErrAlreadyInSection = &Error{Code: CodeAlreadyInSection, Msg: "already in section"}
	ErrUnknownLayout    = &Error{Code: CodeUnknownLayout, Msg: "unknown layout type"}
	ErrInvalidID        = &Error{Code: CodeInvalidID, Msg: "invalid identifier"}
	ErrNotSupported     = &Error{Code: CodeNotSupported, Msg: "not supported yet"}
)

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, msg string) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

func NotFound(kind, id string) error {
	return New(CodeRecordNotFound, "%s not found: %s", kind, id)
}

func Locked(id string) error {
	return New(CodeViewLocked, "view is locked: %s", id)
}

func AlreadyInSection(section, id string) error {
	return New(CodeAlreadyInSection, "%s already in %s", id, section)
}

func SelfOperation(msg string) error {
	return New(CodeSelfOperation, "%s", msg)
}

func UnknownLayout(layout fmt.Stringer) error {
	return New(CodeUnknownLayout, "unknown layout type: %s", layout)
}

func InvalidID(kind, id string, err error) error {
	return Wrap(CodeInvalidID, err, fmt.Sprintf("invalid %s id %q", kind, id))
}

func NotSupported(msg string) error {
	return New(CodeNotSupported, "%s", msg)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
