// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session tracks one user's browse state across requests.

A [State] is a value: each transition returns a new State and never mutates the
receiver. The [Service] applies a transition, runs the catalog flow for the new
state and persists the result with a version check, so a response computed for
an older state can never overwrite a newer one.

State machine:

	Browsing --Select(record)--> Viewing(id)
	Viewing  --Close | ChangeFilter | ChangeSearch | any page change--> Browsing

Any filter or search change also resets the page to 1.
*/
package session

import (
	"time"

	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/pkg/pagination"
)

// Mode is the coarse state of a session.
type Mode string

const (
	ModeBrowsing Mode = "browsing"
	ModeViewing  Mode = "viewing"
)

// State is the full browse state of one session.
type State struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`

	Selection catalog.Selection `json:"selection"`

	// Page is 1-based. It is clamped against the last computed TotalPages.
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`

	// Viewing is a snapshot of the opened record; nil while browsing.
	Viewing *catalog.Record `json:"viewing,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns the initial state: browsing, page 1, nothing filtered.
func New(id string, pageSize int) State {
	if pageSize < 1 {
		pageSize = pagination.DefaultLimit
	}
	return State{
		ID:         id,
		Page:       pagination.DefaultPage,
		PageSize:   pageSize,
		TotalPages: 1,
	}
}

// Mode reports whether a record is open.
func (s State) Mode() Mode {
	if s.Viewing != nil {
		return ModeViewing
	}
	return ModeBrowsing
}

// ChangeFilter sets one facet. "" or [catalog.AllValues] clears it.
// Setting a facet to the value it already holds is a no-op.
func (s State) ChangeFilter(field catalog.Field, value string) State {
	next := s.Selection.With(field, value)
	if next.Equal(s.Selection) {
		return s
	}
	return s.filtered(next)
}

// ChangeSearch replaces the search text. The same text is a no-op.
func (s State) ChangeSearch(text string) State {
	next := s.Selection.WithSearch(text)
	if next.Equal(s.Selection) {
		return s
	}
	return s.filtered(next)
}

func (s State) filtered(selection catalog.Selection) State {
	s.Selection = selection
	s.Page = pagination.DefaultPage
	s.Viewing = nil
	s.Version++
	return s
}

// ChangePage moves to page, clamped to [1, TotalPages]. It always closes an
// open record, even when the page does not move.
func (s State) ChangePage(page int) State {
	s.Page = min(max(page, 1), max(s.TotalPages, 1))
	s.Viewing = nil
	s.Version++
	return s
}

// NextPage moves one page forward. On the last page it does nothing.
func (s State) NextPage() State {
	if s.Page >= s.TotalPages {
		return s
	}
	return s.ChangePage(s.Page + 1)
}

// PrevPage moves one page back. On the first page it does nothing.
func (s State) PrevPage() State {
	if s.Page <= 1 {
		return s
	}
	return s.ChangePage(s.Page - 1)
}

// Select opens record.
func (s State) Select(record *catalog.Record) State {
	s.Viewing = record.Clone()
	s.Version++
	return s
}

// Close returns to browsing. Closing while browsing is a no-op.
func (s State) Close() State {
	if s.Viewing == nil {
		return s
	}
	s.Viewing = nil
	s.Version++
	return s
}

// Normalize stores what the catalog computed for this state: the selection
// with stale facets cleared, and the clamped page. It is part of the same
// transition and does not bump the version.
func (s State) Normalize(resolution *catalog.Resolution, window pagination.Window) State {
	s.Selection = resolution.Selection
	s.Page = window.Page
	s.TotalPages = window.TotalPages
	return s
}
