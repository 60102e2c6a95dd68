package game

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gameapi/internal/httpx"
)

const maxSearchTermLength = 200

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /games
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	params := Query{
		Platform: query.Get("platform"),
		Genre:    query.Get("genre"),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}

	games, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, games, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Search handles GET /games/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", `Missing search query parameter "q"`, nil)
		return
	}
	if len(term) > maxSearchTermLength {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Search query too long", nil)
		return
	}

	results, err := h.service.Search(r.Context(), term)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Catalog search failed", nil)
		return
	}

	httpx.JSONSuccess(w, r, results, nil)
}

// GetByID handles GET /games/{igdbID}
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	igdbID, err := strconv.ParseInt(r.PathValue("igdbID"), 10, 64)
	if err != nil || igdbID <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid IGDB ID", nil)
		return
	}

	g, cached, err := h.service.GetByIGDBID(r.Context(), igdbID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Game not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, g, map[string]any{"cached": cached})
}
