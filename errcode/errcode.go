// Package errcode defines the stable error identifiers shared by every
// capability backend and driver in this module.
package errcode

// Code is a stable error identifier for capability operations.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes. There is deliberately no timeout code: the serial bridge
// waits on replies without a deadline (see the firmata package docs).
const (
	OK              Code = "ok"
	InvalidArgument Code = "invalid_argument"
	Unsupported     Code = "unsupported"
	NotReady        Code = "not_ready"
	Connection      Code = "connection_error"
	Protocol        Code = "protocol_error"

	Error Code = "error" // generic fallback
)

// E is an optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match a wrapped E against a bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
