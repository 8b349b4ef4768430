package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/browse"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiResponse{Success: status >= 200 && status < 300, Data: data}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode error response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.cfg.Catalog.ListCategories(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.cfg.Catalog.ListPlans(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, plans)
}

// session resolves the category and starts a browse session.
func (s *Server) session(w http.ResponseWriter, r *http.Request, key string) (*browse.Session, bool) {
	cats, err := s.cfg.Catalog.ListCategories(r.Context())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return nil, false
	}
	cat, err := browse.MatchCategory(cats, key)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "UNKNOWN_CATEGORY", err.Error())
		return nil, false
	}
	return browse.New(cat, s.cfg.Catalog, s.cfg.Names, browse.Config{
		PageSize: s.cfg.PageSize,
		Logger:   s.log.Named("browse"),
	}), true
}

// handleSetupsPage serves a deep link: bootstrap, cascade, and the
// one-shot search. ?page= and ?select= pick the page and detail item.
func (s *Server) handleSetupsPage(w http.ResponseWriter, r *http.Request) {
	loc, err := urlsync.Parse(r.URL.RequestURI())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_URL", err.Error())
		return
	}
	sess, ok := s.session(w, r, chi.URLParam(r, "category"))
	if !ok {
		return
	}
	sess.Open(r.Context(), loc)
	applyView(sess, r.URL.Query().Get("page"), r.URL.Query().Get("select"))
	s.respondJSON(w, http.StatusOK, sess.View())
}

// SearchRequest is the body of POST /api/setups/{category}/search.
type SearchRequest struct {
	// Location optionally seeds the session from a deep link.
	Location string   `json:"location,omitempty"`
	Changes  []Change `json:"changes"`
	Page     int      `json:"page,omitempty"`
	Select   int64    `json:"select,omitempty"`
}

// Change is one user edit; an empty Value clears the dimension.
type Change struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// handleSearch replays user changes in order, then runs a URL-updating
// search. The response location is the canonical deep link.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}
	key := chi.URLParam(r, "category")
	sess, ok := s.session(w, r, key)
	if !ok {
		return
	}
	ctx := r.Context()

	raw := req.Location
	if raw == "" {
		raw = "/" + urlsync.DefaultBase + "/" + sess.Category().Slug
	}
	loc, err := urlsync.Parse(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_URL", err.Error())
		return
	}
	sess.Bootstrap(ctx, loc)
	sess.Sync(ctx)

	for _, c := range req.Changes {
		dim, ok := model.ParseDimension(c.Dimension)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "UNKNOWN_DIMENSION", "unknown dimension "+strconv.Quote(c.Dimension))
			return
		}
		if err := sess.SelectByName(ctx, dim, c.Value); err != nil {
			code := "UNKNOWN_OPTION"
			if errors.Is(err, browse.ErrUnknownDimension) {
				code = "UNKNOWN_DIMENSION"
			}
			s.respondError(w, http.StatusUnprocessableEntity, code, err.Error())
			return
		}
		sess.Sync(ctx)
	}

	sess.Search(ctx, true)
	if req.Page > 0 {
		sess.SetPage(req.Page)
	}
	if req.Select != 0 {
		sess.Select(req.Select)
	}
	s.respondJSON(w, http.StatusOK, sess.View())
}

func applyView(sess *browse.Session, page, sel string) {
	if n, err := strconv.Atoi(page); err == nil {
		sess.SetPage(n)
	}
	if id, err := strconv.ParseInt(sel, 10, 64); err == nil {
		sess.Select(id)
	}
}
