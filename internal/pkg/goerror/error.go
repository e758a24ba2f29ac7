// Package goerror is the error vocabulary shared by usecases and the HTTP
// layer. Usecases return *Error values built with the New* constructors and
// the router turns them into a status code and a client-safe message.
package goerror

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinels returned by repositories; usecases translate them into *Error.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)

// Kind says who is at fault.
type Kind int

const (
	KindServer Kind = iota
	KindBusiness
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindValidation:
		return "validation"
	default:
		return "server"
	}
}

// Code is the stable classification a client can branch on.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeUnauthorized
	CodeForbidden
	// CodeExpired marks an OTP, pending registration or session past its lifetime.
	CodeExpired
)

var codes = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeUnauthorized:  {"ERROR_CODE_UNAUTHORIZED", http.StatusUnauthorized},
	CodeForbidden:     {"ERROR_CODE_FORBIDDEN", http.StatusForbidden},
	CodeExpired:       {"ERROR_CODE_EXPIRED", http.StatusGone},
}

func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return codes[CodeInternal].name
}

// Status is the HTTP status for c. Unknown codes map to 500.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error carries a client-safe message next to the underlying cause.
type Error struct {
	err    error
	msg    string
	kind   Kind
	code   Code
	fields map[string]string
}

// Error returns the cause when there is one, so logs keep the detail while
// clients only ever see Msg.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.kind.String() + " error"
	}
}

func (e *Error) Msg() string               { return e.msg }
func (e *Error) Kind() Kind                { return e.kind }
func (e *Error) Code() Code                { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error             { return e.err }
func (e *Error) StatusCode() int           { return e.code.Status() }

// LogValue renders the error as a group in structured logs.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.kind.String()),
		slog.String("code", e.code.String()),
		slog.String("msg", e.msg),
	}
	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", kind: KindServer, code: CodeInternal}
}

func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, kind: KindBusiness, code: code}
}

// NewInvalidInput wraps a validator error, or builds field errors from
// alternating field and message arguments. An odd number of arguments is a
// malformed call and yields an invalid-format error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", kind: KindValidation, code: CodeInvalidInput}
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}
	return &Error{msg: "Validation error", kind: KindValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat reports an unparsable request. The optional message
// replaces the default.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 && msgs[0] != "" {
		msg = msgs[0]
	}
	return &Error{msg: msg, kind: KindValidation, code: CodeInvalidFormat}
}

// CodeOf returns the code carried by err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.code
	}
	return CodeInternal
}
