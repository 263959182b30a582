package catalog

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/fichas/internal/platform/request"
	"github.com/taibuivan/fichas/internal/platform/respond"
	"github.com/taibuivan/fichas/pkg/pagination"
)

// Query parameters that are not facet filters.
const (
	ParamSearch = "q"
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSort   = "sort"
	ParamDir    = "dir"
)

// Parameters starting with one of these are cache busters or campaign tags
// added by clients, never facets.
var ignoredParamPrefixes = []string{"_", "utm_"}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the stateless catalog endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/facets", handler.listFacets)
	router.Get("/records", handler.listRecords)
	router.Get("/records/{id}", handler.getRecord)
}

// RegisterImageRoutes mounts the image endpoints.
func (handler *Handler) RegisterImageRoutes(router chi.Router) {
	router.Get("/", handler.listImages)
	router.Get("/{id}", handler.getImage)
}

func (handler *Handler) listFacets(writer http.ResponseWriter, request *http.Request) {
	selection, err := handler.selection(request.URL.Query())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	resolution, err := handler.service.Resolve(request.Context(), selection)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"search": resolution.Selection.Search,
		"facets": resolution.Facets(handler.service.Schema()),
		"reset":  resetList(resolution.Reset),
	})
}

func (handler *Handler) listRecords(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	selection, err := handler.selection(query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	order := Order{Field: Field(query.Get(ParamSort)), Desc: query.Get(ParamDir) == "desc"}

	result, err := handler.service.Browse(request.Context(), selection, PageRequest{
		Page:  paginationParams.Page,
		Size:  paginationParams.Limit,
		Order: order,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Faceted(writer, result.Records, pagination.NewMeta(result.Window), map[string]any{
		"search": result.Resolution.Selection.Search,
		"facets": result.Resolution.Facets(handler.service.Schema()),
		"reset":  resetList(result.Resolution.Reset),
	})
}

func (handler *Handler) getRecord(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.GetRecord(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

func (handler *Handler) listImages(writer http.ResponseWriter, request *http.Request) {
	ids, err := handler.service.ListImages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	window := pagination.ComputeWindow(len(ids), paginationParams.Limit, paginationParams.Page)

	end := min(window.Offset+window.PageSize, len(ids))
	respond.Paginated(writer, ids[window.Offset:end], pagination.NewMeta(window))
}

func (handler *Handler) getImage(writer http.ResponseWriter, request *http.Request) {
	image, err := handler.service.FetchImage(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Blob(writer, image.ContentType, image.Data)
}

// selection reads the search text and facet filters from a query string.
// Every other parameter names a facet, except paging and sorting controls and
// the ignored prefixes.
func (handler *Handler) selection(query url.Values) (Selection, error) {
	selection := Selection{}.WithSearch(query.Get(ParamSearch))

	for key, values := range query {
		switch key {
		case ParamSearch, ParamPage, ParamLimit, ParamSort, ParamDir:
			continue
		}
		if ignoredParam(key) {
			continue
		}
		if len(values) > 0 {
			selection = selection.With(Field(key), values[0])
		}
	}

	if err := handler.service.ValidateSelection(selection); err != nil {
		return Selection{}, err
	}
	return selection, nil
}

func ignoredParam(key string) bool {
	return slices.ContainsFunc(ignoredParamPrefixes, func(prefix string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func resetList(fields []Field) []Field {
	if fields == nil {
		return []Field{}
	}
	return fields
}
