package errors

import (
	"fmt"
	"runtime"
	"time"
)

// Error is a coded error with optional cause, context and captured stack.
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Context   map[string]string
	Stack     []Frame
	Timestamp time.Time
}

// Frame represents a stack frame
type Frame struct {
	Function string
	File     string
	Line     int
}

// Core constructors - code is compulsory first argument
func New(code Code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Stack:     captureStackTrace(),
	}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     err,
		Timestamp: time.Now(),
		Stack:     captureStackTrace(),
	}
}

func Wrapf(code Code, err error, format string, args ...interface{}) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// Methods on *Error for chaining - only essential ones
func (e *Error) AddContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Error methods
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HasCode reports whether err is a coded error carrying the given code.
func HasCode(err error, code Code) bool {
	if coded, ok := err.(*Error); ok {
		return coded.Code.Equals(code)
	}
	return false
}

// Helper functions
func captureStackTrace() []Frame {
	var frames []Frame
	for i := 1; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		frames = append(frames, Frame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}
	return frames
}
