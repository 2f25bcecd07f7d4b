package handler

import (
	"net/http"
	"strconv"

	"bgg-mirror-api/internal/service"
	"bgg-mirror-api/pkg/apierror"
	"bgg-mirror-api/pkg/response"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// CatalogHandler serves the mirrored BGG data.
type CatalogHandler struct {
	repos service.Repositories
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(repos service.Repositories) *CatalogHandler {
	return &CatalogHandler{repos: repos}
}

// ListGames handles GET /api/v1/bgg_games
func (h *CatalogHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := pagination(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	games, err := h.repos.Games.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load games"))
		return
	}
	total, _, err := h.repos.Games.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load games"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, games, page, limit, total)
}

// ListAccessories handles GET /api/v1/bgg_accessories
func (h *CatalogHandler) ListAccessories(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := pagination(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	accessories, err := h.repos.Accessories.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load accessories"))
		return
	}
	total, _, err := h.repos.Accessories.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load accessories"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, accessories, page, limit, total)
}

// ListHotGames handles GET /api/v1/bgg_hotness/games
func (h *CatalogHandler) ListHotGames(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := pagination(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	hotGames, err := h.repos.HotGames.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load hot games"))
		return
	}
	total, _, err := h.repos.HotGames.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load hot games"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, hotGames, page, limit, total)
}

// ListHotPersons handles GET /api/v1/bgg_hotness/persons
func (h *CatalogHandler) ListHotPersons(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := pagination(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	persons, err := h.repos.HotPersons.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load hot persons"))
		return
	}
	total, _, err := h.repos.HotPersons.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load hot persons"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, persons, page, limit, total)
}

// ListPlays handles GET /api/v1/bgg_plays
func (h *CatalogHandler) ListPlays(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := pagination(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	plays, err := h.repos.Plays.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load plays"))
		return
	}
	total, _, err := h.repos.Plays.Stats(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load plays"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, plays, page, limit, total)
}

// pagination parses the page and limit query parameters.
func pagination(r *http.Request) (page, limit, offset int, err error) {
	page = 1
	limit = defaultPageLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, apierror.BadRequest("page must be a positive integer")
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, apierror.BadRequest("limit must be a positive integer")
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}

	return page, limit, (page - 1) * limit, nil
}
