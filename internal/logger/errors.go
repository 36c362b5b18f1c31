package logger

import (
	"errors"

	"github.com/localrivet/extractsum/internal/errortypes"
)

// Process exit codes for the CLI.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitDatabase = 3
)

// ExitCode classifies err for the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errortypes.IsValidationError(err):
		return ExitUsage
	case errortypes.IsDatabaseError(err):
		return ExitDatabase
	default:
		return ExitFailure
	}
}

// LogError logs err on l, adding the error type and fields of an AppError.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		l.Error("%v", err)
		return
	}

	fields := make(map[string]interface{}, len(appErr.Fields)+1)
	for k, v := range appErr.Fields {
		fields[k] = v
	}
	fields["error_type"] = string(appErr.Type)

	l.WithFields(fields).Error("%s", appErr.Error())
}

// LogError logs err on the default logger.
func LogError(err error) {
	defaultLogger.LogError(err)
}
