// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/fichas/pkg/pagination"
)

/*
TestComputeWindow_Clamping covers the 45 items / 20 per page layout and out of range requests.
*/
func TestComputeWindow_Clamping(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		requested int
		page      int
		pages     int
		offset    int
		first     int
		last      int
	}{
		{"first_page", 45, 20, 1, 1, 3, 0, 1, 20},
		{"last_page_partial", 45, 20, 3, 3, 3, 40, 41, 45},
		{"past_end_clamps_to_last", 45, 20, 5, 3, 3, 40, 41, 45},
		{"zero_clamps_to_first", 45, 20, 0, 1, 3, 0, 1, 20},
		{"negative_clamps_to_first", 45, 20, -7, 1, 3, 0, 1, 20},
		{"empty_set_has_one_page", 0, 20, 4, 1, 1, 0, 0, 0},
		{"exact_multiple", 40, 20, 2, 2, 2, 20, 21, 40},
		{"size_below_one_treated_as_one", 3, 0, 3, 3, 3, 2, 3, 3},
		{"huge_size_single_page", 45, math.MaxInt, 2, 1, 1, 0, 1, 45},
		{"huge_request_clamps_to_last", 45, 20, math.MaxInt, 3, 3, 40, 41, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := pagination.ComputeWindow(tt.total, tt.size, tt.requested)

			assert.Equal(t, tt.page, w.Page)
			assert.Equal(t, tt.pages, w.TotalPages)
			assert.Equal(t, tt.offset, w.Offset)
			assert.Equal(t, tt.first, w.FirstItem)
			assert.Equal(t, tt.last, w.LastItem)
		})
	}
}

/*
TestComputeWindow_Properties sweeps a grid of inputs and checks the clamping rules hold.
*/
func TestComputeWindow_Properties(t *testing.T) {
	for total := 0; total <= 60; total++ {
		for size := 1; size <= 12; size++ {
			for requested := -2; requested <= 70; requested += 3 {
				w := pagination.ComputeWindow(total, size, requested)

				assert.GreaterOrEqual(t, w.Page, 1)
				assert.LessOrEqual(t, w.Page, w.TotalPages)
				assert.Equal(t, (w.Page-1)*size, w.Offset)

				if w.Page == w.TotalPages {
					assert.GreaterOrEqual(t, w.Offset+size, total)
				}

				// Same inputs, same window.
				assert.Equal(t, w, pagination.ComputeWindow(total, size, requested))
			}
		}
	}
}

/*
TestWindow_Navigation verifies that prev/next never wrap around.
*/
func TestWindow_Navigation(t *testing.T) {
	first := pagination.ComputeWindow(45, 20, 1)
	assert.False(t, first.HasPrev)
	assert.Equal(t, 1, first.Prev())
	assert.True(t, first.HasNext)
	assert.Equal(t, 2, first.Next())

	last := pagination.ComputeWindow(45, 20, 3)
	assert.False(t, last.HasNext)
	assert.Equal(t, 3, last.Next())
	assert.True(t, last.HasPrev)
	assert.Equal(t, 2, last.Prev())

	single := pagination.ComputeWindow(0, 20, 1)
	assert.Equal(t, 1, single.Prev())
	assert.Equal(t, 1, single.Next())
}

/*
TestNewMeta checks that response metadata mirrors the window.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(pagination.ComputeWindow(45, 20, 2))

	assert.Equal(t, pagination.Meta{
		Page:       2,
		Limit:      20,
		Total:      45,
		TotalPages: 3,
		FirstItem:  21,
		LastItem:   40,
		HasPrev:    true,
		HasNext:    true,
	}, meta)
}

/*
TestFromRequest checks query parsing and clamping of page and limit.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit", "?page=3&limit=10", 3, 10},
		{"garbage", "?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
		{"negative_page", "?page=-2", pagination.DefaultPage, pagination.DefaultLimit},
		{"limit_above_max", "?limit=1000", pagination.DefaultPage, pagination.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/records"+tt.query, nil)
			params := pagination.FromRequest(req)

			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
		})
	}
}
