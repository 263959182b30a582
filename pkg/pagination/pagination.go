// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for paged list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters,
// how a requested page is clamped against a total count ([ComputeWindow]), and
// how the resulting metadata is delivered in the API response envelope.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// # Page Window

// Window describes the slice of a result set that is currently displayed.
//
// It is always derived from a total count and never stored as a source of truth.
type Window struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	Offset     int  `json:"offset"`
	FirstItem  int  `json:"first_item"` // 1-based ordinal, 0 when the set is empty
	LastItem   int  `json:"last_item"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// ComputeWindow clamps requestedPage into [1, totalPages] and derives the offset
// and item ordinals for that page.
//
// totalPages is max(1, ceil(totalItems / pageSize)), so an empty result set still
// has exactly one (empty) page. A pageSize below 1 is treated as 1.
func ComputeWindow(totalItems, pageSize, requestedPage int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := totalItems / pageSize
	if totalItems%pageSize != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	page := requestedPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize

	window := Window{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Offset:     offset,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}

	if totalItems > 0 {
		window.FirstItem = offset + 1
		window.LastItem = min(offset+pageSize, totalItems)
	}

	return window
}

// Prev returns the previous page number, or the current page on the first page.
func (w Window) Prev() int {
	if !w.HasPrev {
		return w.Page
	}
	return w.Page - 1
}

// Next returns the next page number, or the current page on the last page.
func (w Window) Next() int {
	if !w.HasNext {
		return w.Page
	}
	return w.Page + 1
}

// # Response Metadata

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	FirstItem  int  `json:"first_item"`
	LastItem   int  `json:"last_item"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// NewMeta constructs pagination metadata for a response from a computed [Window].
func NewMeta(window Window) Meta {
	return Meta{
		Page:       window.Page,
		Limit:      window.PageSize,
		Total:      window.TotalItems,
		TotalPages: window.TotalPages,
		FirstItem:  window.FirstItem,
		LastItem:   window.LastItem,
		HasPrev:    window.HasPrev,
		HasNext:    window.HasNext,
	}
}

// # Request Parsing

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultPage], [DefaultLimit], or [MaxLimit]. The page is only clamped from
// below here; the upper bound depends on the total and is applied by [ComputeWindow].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)
	limit := parseIntParam(r, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 {
		limit = DefaultLimit
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
