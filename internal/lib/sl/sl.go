// Package sl holds small helpers for log/slog.
package sl

import "log/slog"

// Err returns an "error" attribute carrying err's text.
//
//	log.Error("failed to write report", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
