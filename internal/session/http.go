package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/apperr"
	"github.com/taibuivan/fichas/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/fichas/internal/platform/request"
	"github.com/taibuivan/fichas/internal/platform/respond"
	"github.com/taibuivan/fichas/pkg/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// # Request bodies

type startInput struct {
	PageSize int `json:"page_size"`
}

type filterInput struct {
	Value string `json:"value"`
}

type searchInput struct {
	Text string `json:"text"`
}

type pageInput struct {
	Page int `json:"page"`
}

type selectInput struct {
	ID string `json:"id"`
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.start)

	router.Route("/{id}", func(sessionRoute chi.Router) {
		sessionRoute.Use(sessionContext)

		sessionRoute.Get("/", handler.view)
		sessionRoute.Delete("/", handler.end)

		sessionRoute.Put("/filters/{field}", handler.changeFilter)
		sessionRoute.Put("/search", handler.changeSearch)

		sessionRoute.Put("/page", handler.changePage)
		sessionRoute.Post("/page/next", handler.nextPage)
		sessionRoute.Post("/page/prev", handler.prevPage)

		sessionRoute.Put("/selection", handler.selectRecord)
		sessionRoute.Delete("/selection", handler.closeRecord)
	})
}

// sessionContext rejects malformed session ids and tags the request logger.
func sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id := requestutil.Param(request, "id")
		if !uuid.Valid(id) {
			respond.Error(writer, request, apperr.NotFound("Session"))
			return
		}
		next.ServeHTTP(writer, request.WithContext(ctxutil.WithSessionID(request.Context(), id)))
	})
}

func (handler *Handler) start(writer http.ResponseWriter, request *http.Request) {
	var input startInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Start(request.Context(), input.PageSize)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, view)
}

func (handler *Handler) view(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.View(request.Context(), requestutil.Param(request, "id"))
	handler.reply(writer, request, view, err)
}

func (handler *Handler) end(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.End(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) changeFilter(writer http.ResponseWriter, request *http.Request) {
	var input filterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	field := catalog.Field(requestutil.Param(request, "field"))
	view, err := handler.service.ChangeFilter(request.Context(), requestutil.Param(request, "id"), field, input.Value)
	handler.reply(writer, request, view, err)
}

func (handler *Handler) changeSearch(writer http.ResponseWriter, request *http.Request) {
	var input searchInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.ChangeSearch(request.Context(), requestutil.Param(request, "id"), input.Text)
	handler.reply(writer, request, view, err)
}

func (handler *Handler) changePage(writer http.ResponseWriter, request *http.Request) {
	var input pageInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.ChangePage(request.Context(), requestutil.Param(request, "id"), input.Page)
	handler.reply(writer, request, view, err)
}

func (handler *Handler) nextPage(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.NextPage(request.Context(), requestutil.Param(request, "id"))
	handler.reply(writer, request, view, err)
}

func (handler *Handler) prevPage(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.PrevPage(request.Context(), requestutil.Param(request, "id"))
	handler.reply(writer, request, view, err)
}

func (handler *Handler) selectRecord(writer http.ResponseWriter, request *http.Request) {
	var input selectInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Select(request.Context(), requestutil.Param(request, "id"), input.ID)
	handler.reply(writer, request, view, err)
}

func (handler *Handler) closeRecord(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Close(request.Context(), requestutil.Param(request, "id"))
	handler.reply(writer, request, view, err)
}

func (handler *Handler) reply(writer http.ResponseWriter, request *http.Request, view *View, err error) {
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}
