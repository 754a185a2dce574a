package cmd

import (
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

func invalidArgument(msg string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if cause != nil {
		return b.WithCause(cause)
	}
	return b
}

func notFound(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msg).
		WithCause(cause)
}

func internalError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}

// exitCodeForError maps usage mistakes to 2 and every other failure to 1.
func exitCodeForError(err error) int {
	if err == nil {
		return 0
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return 2
	default:
		return 1
	}
}

// errorMessage renders err for the terminal as "<message>: <cause>".
// errbuilder fills a missing cause with its own message, which is not repeated.
func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if !errors.As(err, &builder) || strings.TrimSpace(builder.Msg) == "" {
		return err.Error()
	}
	if builder.Cause == nil {
		return builder.Msg
	}
	cause := errorMessage(builder.Cause)
	if cause == builder.Msg {
		return builder.Msg
	}
	return builder.Msg + ": " + cause
}
