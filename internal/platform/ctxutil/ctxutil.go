// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
//
// Keys use a private type so that values set here never collide with keys
// from other packages, even when the underlying string is the same.
package ctxutil

import (
	"context"
	"log/slog"
)

type key string

const (
	keyRequestID key = "request_id"
	keySessionID key = "session_id"
	keyLogger    key = "logger"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// WithSessionID attaches the browsing session being served, and enriches the
// context logger with it so every log line of the request can be correlated.
func WithSessionID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, keySessionID, id)
	return WithLogger(ctx, GetLogger(ctx).With(slog.String("session_id", id)))
}

// GetSessionID retrieves the browsing session ID from the context.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(keySessionID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(keyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}
