// Package checkpoint decorates errors with the file and line they passed through,
// so a failed lookup deep inside a directory walk can be traced back without a
// stack trace.
//
// Both errors handed to Wrap stay visible to errors.Is and errors.As: the
// describing error (usually a package sentinel) and the cause underneath it.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
)

// From marks err with the caller position. It returns nil for a nil error.
// io.EOF is returned as is because callers compare it directly.
func From(err error) error {
	if err == nil || err == io.EOF {
		return err
	}

	return newCheckpoint(err, nil)
}

// Wrap marks cause with the caller position and describes it with err:
//
//	data, err := readSomething()
//	if err != nil {
//		return checkpoint.Wrap(err, ErrReadDir)
//	}
//
// errors.Is(result, ErrReadDir) and errors.Is(result, <cause>) both hold.
// Wrap returns nil if cause is nil and io.EOF unchanged.
func Wrap(cause, err error) error {
	if cause == nil || cause == io.EOF {
		return cause
	}

	return newCheckpoint(err, cause)
}

func newCheckpoint(err, cause error) *checkpoint {
	// Skip newCheckpoint and From/Wrap.
	_, file, line, ok := runtime.Caller(2)

	return &checkpoint{
		err:      err,
		cause:    cause,
		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

type checkpoint struct {
	err   error
	cause error

	callerOk bool
	file     string
	line     int
}

func (c *checkpoint) position() string {
	if !c.callerOk {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", c.file, c.line)
}

func (c *checkpoint) Error() string {
	if c.cause == nil {
		return fmt.Sprintf("[%s] %v", c.position(), c.err)
	}
	if c.err == nil {
		return fmt.Sprintf("[%s] %v", c.position(), c.cause)
	}
	return fmt.Sprintf("[%s] %v: %v", c.position(), c.err, c.cause)
}

// Unwrap exposes the cause. For checkpoints created by From the marked error
// itself is the cause.
func (c *checkpoint) Unwrap() error {
	if c.cause == nil {
		return c.err
	}
	return c.cause
}

func (c *checkpoint) Is(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
