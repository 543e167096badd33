// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package errutil provides helpers for logging and asserting on
// structured errors built with samber/oops.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError writes err to logger at error level. An oops error
// contributes its code and context map as structured attributes; any
// other error is logged as a plain string.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != "" {
		attrs = append(attrs, "code", code)
	}
	if errCtx := oopsErr.Context(); len(errCtx) > 0 {
		attrs = append(attrs, "context", errCtx)
	}
	logger.Error(msg, attrs...)
}
