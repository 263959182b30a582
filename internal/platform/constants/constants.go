// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the timeouts, rate limits, header names and Redis
// key layout shared by the API server, fichasctl and the stores.
package constants

import "time"

// # Metadata

const (
	AppName    = "fichas-api"
	AppVersion = "0.1.0-dev"
)

// # Server

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 2 * time.Minute
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout bounds a whole request, and also every PostgreSQL
	// statement through statement_timeout.
	GlobalRequestTimeout = 30 * time.Second

	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

// Limits are per client IP. A browsing session sends one request per
// keystroke or click, so the burst is generous.
const (
	DefaultRateLimitRPS      = 100.0
	DefaultRateLimitBurst    = 150
	RateLimitCleanupInterval = time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

// Keys of the bare error body written by middleware outside [respond].
const (
	FieldError = "error"
	FieldCode  = "code"
)

// # Redis Keys

const (
	// RedisPrefixFacet caches distinct facet values keyed by field and predicate.
	RedisPrefixFacet = "catalog:facet:"

	// RedisPrefixLink caches dependency map lookups keyed by link and parent value.
	RedisPrefixLink = "catalog:link:"

	// RedisKeyCacheGeneration is bumped after every import. Facet and link
	// keys embed it, so entries cached before the import are never read again.
	RedisKeyCacheGeneration = "catalog:generation"

	// RedisPrefixSession stores serialized browsing sessions.
	RedisPrefixSession = "catalog:session:"
)
