package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels returned by storage adapters. Usecases translate them before they
// reach a client.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)

// Type is the coarse bucket an Error falls in.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness // includes authentication and authorization failures
	TypeValidation
)

var typeTable = map[Type]struct{ name, fallback string }{
	TypeServer:     {"ERROR_TYPE_SERVER", "Internal error"},
	TypeBusiness:   {"ERROR_TYPE_BUSINESS", "Request rejected"},
	TypeValidation: {"ERROR_TYPE_VALIDATION", "Validation violation"},
}

func (t Type) String() string {
	if v, ok := typeTable[t]; ok {
		return v.name
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is the stable machine-readable reason carried in error responses.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeUnauthorized
	CodeForbidden
)

var codeTable = map[Code]struct {
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
}

func (c Code) String() string {
	if v, ok := codeTable[c]; ok {
		return v.name
	}
	return codeTable[CodeInternal].name
}

// Error pairs an optional internal cause with the message a client may see.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error returns the cause when present so logs keep the real reason; clients
// only ever see Msg.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}
	if v, ok := typeTable[e.errType]; ok {
		return v.fallback
	}
	return typeTable[TypeServer].fallback
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }

// StatusCode is the HTTP status for the error's code.
func (e *Error) StatusCode() int {
	if v, ok := codeTable[e.code]; ok {
		return v.status
	}
	return http.StatusInternalServerError
}

func build(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return build(err, "Internal server error", TypeServer, CodeInternal)
}

func NewBusiness(msg string, code Code) error {
	return build(nil, msg, TypeBusiness, code)
}

// NewUnauthorized is the single user-facing authentication failure. Every
// internal cause (unknown user, bad password, bad OTP, bad token) maps here.
func NewUnauthorized() error {
	return NewBusiness("Unauthorized", CodeUnauthorized)
}

// NewForbidden reports an authenticated caller lacking permission.
func NewForbidden() error {
	return NewBusiness("Forbidden", CodeForbidden)
}

// IsCode reports whether err is an *Error carrying code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.code == code
}

// NewInvalidInput wraps a validator error, or builds field errors from
// key/value pairs when err is nil. An odd pair count is a malformed request.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return build(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return build(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat reports an unparsable request; msg overrides the default.
func NewInvalidFormat(msg ...string) error {
	text := "Invalid request body"
	if len(msg) > 0 {
		text = msg[0]
	}
	return build(nil, text, TypeValidation, CodeInvalidFormat)
}
