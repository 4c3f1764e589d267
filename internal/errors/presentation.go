package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/rs/zerolog"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return formatUserError(e)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(e *Error) string {
	switch e.Type {
	case ErrorTypeInvalidTemplate:
		return formatTemplateError(e)
	case ErrorTypeCommandTooLong:
		return formatLengthError(e)
	case ErrorTypeFileNotFound:
		return formatFileError(e)
	case ErrorTypeTransport:
		return formatTransportError(e)
	case ErrorTypeConfig:
		return formatConfigError(e)
	default:
		return e.Error()
	}
}

func formatTemplateError(e *Error) string {
	if envVar, ok := e.Context["env_var"]; ok {
		return fmt.Sprintf("%s (set the %s environment variable)", e.Message, envVar)
	}
	return e.Message
}

func formatLengthError(e *Error) string {
	length, hasLength := e.Context["length"]
	max, hasMax := e.Context["max"]
	if hasLength && hasMax {
		return fmt.Sprintf("%s: %v bytes does not fit the %v byte limit", e.Message, length, max)
	}
	return e.Message
}

func formatFileError(e *Error) string {
	if path, ok := e.Context["path"]; ok {
		return fmt.Sprintf("%s: %s", e.Message, path)
	}
	return e.Error()
}

func formatTransportError(e *Error) string {
	msg := e.Error()
	if url, ok := e.Context["url"]; ok {
		msg = fmt.Sprintf("Transport error accessing %s: %s", url, msg)
	}
	return msg
}

func formatConfigError(e *Error) string {
	if field, ok := e.Context["field"]; ok {
		return fmt.Sprintf("Configuration error (%s): %s", field, e.Message)
	}
	return e.Message
}

// PresentError logs an error with its context fields on the given logger.
// It never exits the process.
func PresentError(logger zerolog.Logger, err error) {
	if err == nil {
		return
	}

	var e *Error
	if stderrors.As(err, &e) {
		event := logger.Error().Str("error_type", string(e.Type))
		for key, value := range e.Context {
			event = event.Interface(key, value)
		}
		if e.Cause != nil {
			event = event.AnErr("cause", e.Cause)
		}
		event.Msg(e.Message)
		return
	}

	logger.Error().Err(err).Msg("request failed")
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	var e *Error
	if stderrors.As(err, &e) {
		info["type"] = string(e.Type)
		info["message"] = e.Message
		info["context"] = e.Context

		if e.Cause != nil {
			info["cause"] = e.Cause.Error()
		}
	}

	return info
}
