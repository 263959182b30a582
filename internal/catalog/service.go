// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"log/slog"
	"math"

	"github.com/taibuivan/fichas/internal/platform/apperr"
	"github.com/taibuivan/fichas/internal/platform/validate"
	"github.com/taibuivan/fichas/pkg/pagination"
)

// PageRequest asks for one page of a filtered result set.
type PageRequest struct {
	Page  int
	Size  int
	Order Order
}

// Result is one resolved, compiled and paginated view of the catalog.
type Result struct {
	Resolution *Resolution
	Predicate  Predicate
	Records    []*Record
	Window     pagination.Window
}

// Service runs the browse flow: resolve facets, compile the predicate, fetch a
// clamped page and mark which records have an image.
type Service struct {
	schema   Schema
	repo     Repository
	resolver *Resolver
	images   ImageStore
	logger   *slog.Logger
}

func NewService(schema Schema, repo Repository, links DependencyMap, images ImageStore, crossFilter bool, logger *slog.Logger) *Service {
	return &Service{
		schema:   schema,
		repo:     repo,
		resolver: NewResolver(schema, repo, links, crossFilter),
		images:   images,
		logger:   logger,
	}
}

// Schema returns the catalog layout the service was built with.
func (service *Service) Schema() Schema {
	return service.schema
}

// Resolve computes facet options for selection and clears stale values.
func (service *Service) Resolve(ctx context.Context, selection Selection) (*Resolution, error) {
	resolution, err := service.resolver.Resolve(ctx, selection)
	if err != nil {
		return nil, err
	}

	for _, field := range resolution.Reset {
		service.logger.Debug("facet_reset",
			slog.String("field", string(field)),
			slog.String("stale_value", selection.Value(field)),
		)
	}

	return resolution, nil
}

// Browse resolves selection and returns the requested page.
func (service *Service) Browse(ctx context.Context, selection Selection, request PageRequest) (*Result, error) {
	resolution, err := service.Resolve(ctx, selection)
	if err != nil {
		return nil, err
	}

	predicate := Compile(service.schema, resolution)

	records, window, err := service.Query(ctx, predicate, request)
	if err != nil {
		return nil, err
	}

	service.logger.Info("catalog_browse",
		slog.String("predicate", predicate.Key()),
		slog.Int("page", window.Page),
		slog.Int("total", window.TotalItems),
	)

	return &Result{
		Resolution: resolution,
		Predicate:  predicate,
		Records:    records,
		Window:     window,
	}, nil
}

// Query fetches one page of records matching predicate.
//
// A page past the end is clamped to the last page rather than reported as an
// error. The total is only known after the first query, so a clamped request
// is fetched again at the clamped offset.
func (service *Service) Query(ctx context.Context, predicate Predicate, request PageRequest) ([]*Record, pagination.Window, error) {
	if err := service.validateOrder(request.Order); err != nil {
		return nil, pagination.Window{}, err
	}

	// Pages past math.MaxInt/size would overflow the offset; they are past
	// the end of any catalog anyway and get clamped below.
	size := max(request.Size, 1)
	page := min(max(request.Page, 1), math.MaxInt/size)
	offset := (page - 1) * size

	records, total, err := service.repo.QueryPage(ctx, predicate, request.Order, offset, size)
	if err != nil {
		return nil, pagination.Window{}, err
	}

	window := pagination.ComputeWindow(total, size, page)
	if window.Offset != offset {
		records, total, err = service.repo.QueryPage(ctx, predicate, request.Order, window.Offset, size)
		if err != nil {
			return nil, pagination.Window{}, err
		}
		window = pagination.ComputeWindow(total, size, window.Page)
	}

	service.markImages(ctx, records)

	return records, window, nil
}

// GetRecord returns the record with the given id.
func (service *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	records, _, err := service.repo.QueryPage(ctx, Eq(FieldID, id), Order{}, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.NotFound("Record")
	}

	service.markImages(ctx, records)
	return records[0], nil
}

// FetchImage returns the image of record id. A missing image is NOT_FOUND.
func (service *Service) FetchImage(ctx context.Context, id string) (*Image, error) {
	if service.images == nil {
		return nil, apperr.NotFound("Image")
	}
	return service.images.FetchImage(ctx, id)
}

// ListImages returns the ids of every stored image.
func (service *Service) ListImages(ctx context.Context) ([]string, error) {
	if service.images == nil {
		return []string{}, nil
	}
	return service.images.ListImages(ctx)
}

// markImages sets HasImage on each record. A failed lookup only hides the
// image of that record; the rest of the page is still returned.
func (service *Service) markImages(ctx context.Context, records []*Record) {
	if service.images == nil {
		return
	}

	for _, record := range records {
		ok, err := service.images.HasImage(ctx, record.ID)
		if err != nil {
			service.logger.Warn("image_lookup_failed",
				slog.String("record_id", record.ID),
				slog.Any("error", err),
			)
		}
		record.HasImage = ok
	}
}

func (service *Service) validateOrder(order Order) error {
	validator := &validate.Validator{}
	validator.Custom("sort", order.Field != "" && !service.schema.IsSortable(order.Field), "unsupported sort field")
	return validator.Err()
}

// ValidateSelection rejects facet fields the schema does not declare.
func (service *Service) ValidateSelection(selection Selection) error {
	validator := &validate.Validator{}
	for field := range selection.Facets {
		_, ok := service.schema.Facet(field)
		validator.Custom(string(field), !ok, "unknown facet")
	}
	return validator.Err()
}
