// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/validate"
	"github.com/taibuivan/fichas/pkg/pagination"
	"github.com/taibuivan/fichas/pkg/uuid"
)

// View is what a client renders after each session command.
type View struct {
	Session State                  `json:"session"`
	Mode    Mode                   `json:"mode"`
	Facets  []catalog.FacetOptions `json:"facets"`
	Reset   []catalog.Field        `json:"reset"`
	Records []*catalog.Record      `json:"records"`
	Window  pagination.Window      `json:"window"`
}

// Service applies session transitions and renders the resulting catalog view.
type Service struct {
	repo            Repository
	catalog         *catalog.Service
	defaultPageSize int
	logger          *slog.Logger
	now             func() time.Time
}

func NewService(repo Repository, catalogService *catalog.Service, defaultPageSize int, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		catalog:         catalogService,
		defaultPageSize: defaultPageSize,
		logger:          logger,
		now:             time.Now,
	}
}

// Start opens a new session on the first page of the unfiltered catalog.
func (service *Service) Start(ctx context.Context, pageSize int) (*View, error) {
	if pageSize == 0 {
		pageSize = service.defaultPageSize
	}

	validator := &validate.Validator{}
	validator.Range("page_size", pageSize, 1, pagination.MaxLimit)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	view, state, err := service.render(ctx, New(uuid.New(), pageSize))
	if err != nil {
		return nil, err
	}

	if err := service.repo.Create(ctx, state); err != nil {
		return nil, err
	}

	service.logger.Info("session_started", slog.String("session_id", state.ID))
	return view, nil
}

// View renders a session without changing it.
func (service *Service) View(ctx context.Context, id string) (*View, error) {
	state, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view, _, err := service.render(ctx, state)
	return view, err
}

// ChangeFilter sets or clears one facet.
func (service *Service) ChangeFilter(ctx context.Context, id string, field catalog.Field, value string) (*View, error) {
	if _, ok := service.catalog.Schema().Facet(field); !ok {
		return nil, validate.RequiredError(string(field), "unknown facet")
	}

	return service.apply(ctx, id, func(state State) (State, error) {
		return state.ChangeFilter(field, value), nil
	})
}

// ChangeSearch replaces the search text.
func (service *Service) ChangeSearch(ctx context.Context, id string, text string) (*View, error) {
	validator := &validate.Validator{}
	validator.MaxLen("text", text, 200)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.apply(ctx, id, func(state State) (State, error) {
		return state.ChangeSearch(text), nil
	})
}

// ChangePage jumps to a page; out of range pages are clamped.
func (service *Service) ChangePage(ctx context.Context, id string, page int) (*View, error) {
	return service.apply(ctx, id, func(state State) (State, error) {
		return state.ChangePage(page), nil
	})
}

// NextPage moves forward one page; a no-op on the last page.
func (service *Service) NextPage(ctx context.Context, id string) (*View, error) {
	return service.apply(ctx, id, func(state State) (State, error) {
		return state.NextPage(), nil
	})
}

// PrevPage moves back one page; a no-op on the first page.
func (service *Service) PrevPage(ctx context.Context, id string) (*View, error) {
	return service.apply(ctx, id, func(state State) (State, error) {
		return state.PrevPage(), nil
	})
}

// Select opens a record.
func (service *Service) Select(ctx context.Context, id string, recordID string) (*View, error) {
	validator := &validate.Validator{}
	validator.Required("id", recordID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.apply(ctx, id, func(state State) (State, error) {
		record, err := service.catalog.GetRecord(ctx, recordID)
		if err != nil {
			return State{}, err
		}
		return state.Select(record), nil
	})
}

// Close returns to browsing.
func (service *Service) Close(ctx context.Context, id string) (*View, error) {
	return service.apply(ctx, id, func(state State) (State, error) {
		return state.Close(), nil
	})
}

// End deletes a session.
func (service *Service) End(ctx context.Context, id string) error {
	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.Info("session_ended", slog.String("session_id", id))
	return nil
}

// apply runs one transition: load, transition, render, then save only if the
// stored version is still the one the transition started from.
func (service *Service) apply(ctx context.Context, id string, transition func(State) (State, error)) (*View, error) {
	current, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := transition(current)
	if err != nil {
		return nil, err
	}

	view, next, err := service.render(ctx, next)
	if err != nil {
		return nil, err
	}

	if next.Version == current.Version {
		return view, nil
	}

	if err := service.repo.Save(ctx, next, current.Version); err != nil {
		if errors.Is(err, ErrStale) {
			service.logger.Warn("session_conflict",
				slog.String("session_id", id),
				slog.Int64("version", next.Version),
			)
		}
		return nil, err
	}

	return view, nil
}

// render runs the catalog flow for state and returns the view together with
// the state normalized to it (stale facets cleared, page clamped).
func (service *Service) render(ctx context.Context, state State) (*View, State, error) {
	result, err := service.catalog.Browse(ctx, state.Selection, catalog.PageRequest{
		Page: state.Page,
		Size: state.PageSize,
	})
	if err != nil {
		return nil, State{}, err
	}

	state = state.Normalize(result.Resolution, result.Window)
	state.UpdatedAt = service.now().UTC()

	reset := result.Resolution.Reset
	if reset == nil {
		reset = []catalog.Field{}
	}

	return &View{
		Session: state,
		Mode:    state.Mode(),
		Facets:  result.Resolution.Facets(service.catalog.Schema()),
		Reset:   reset,
		Records: result.Records,
		Window:  result.Window,
	}, state, nil
}
