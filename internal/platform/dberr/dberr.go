// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/fichas/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// A missing row maps to NotFound for the named resource. Every other failure
// (refused connection, timeout, broken query) means the store could not answer
// and maps to StoreUnavailable, with the action kept in the cause for logging.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping (pgx and database/sql drivers)
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Already classified errors pass through untouched
	if apperr.IsAppError(err) {
		return err
	}

	// 3. Everything else is a store failure
	return apperr.StoreUnavailable(fmt.Errorf("%s: %w", action, err))
}
