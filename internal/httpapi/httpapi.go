package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/internal/repositories/content"
	"github.com/orgball2608/reel-ranker/internal/resolver"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"go.uber.org/fx"
)

const (
	maxBatchURLs    = 50
	maxBodyBytes    = 1 << 20
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type Opts struct {
	fx.In

	Config   *config.Config
	Logger   logger.Logger
	Resolver resolver.Client
	Repo     content.Repository
}

type Server struct {
	resolver  resolver.Client
	repo      content.Repository
	logger    logger.Logger
	secret    string
	anonymous bool
}

func New(opts Opts) *Server {
	s := &Server{
		resolver:  opts.Resolver,
		repo:      opts.Repo,
		logger:    opts.Logger.WithComponent("HTTP"),
		secret:    opts.Config.App.APISecret,
		anonymous: opts.Config.App.AllowAnonymous,
	}
	switch {
	case s.secret == "" && s.anonymous:
		s.logger.Warn("API secret not set, serving unauthenticated requests")
	case s.secret == "":
		s.logger.Warn("API secret not set, protected endpoints will reject every request")
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.Handle("POST /v1/instagram/resolve", s.authorize(http.HandlerFunc(s.resolveBatch)))
	mux.Handle("GET /v1/instagram/top", s.authorize(http.HandlerFunc(s.top)))
	return mux
}

type resolveRequest struct {
	URLs      []string `json:"urls"`
	CSRFToken string   `json:"csrfToken,omitempty"`
}

type itemError struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type resolveResponse struct {
	Data      []domain.ScoredContent `json:"data"`
	Errors    []itemError            `json:"errors"`
	CSRFToken string                 `json:"csrfToken,omitempty"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Kind      string                 `json:"kind,omitempty"`
}

func (s *Server) resolveBatch(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	urls := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		s.writeError(w, http.StatusBadRequest, "urls must not be empty")
		return
	}
	if len(urls) > maxBatchURLs {
		s.writeError(w, http.StatusBadRequest, "too many urls, max "+strconv.Itoa(maxBatchURLs))
		return
	}

	batch, err := s.resolver.ResolveBatch(r.Context(), urls, req.CSRFToken)
	if err != nil {
		s.logger.Error("Batch resolve failed", "urls", len(urls), "error", err)
		s.writeJSON(w, http.StatusBadGateway, resolveResponse{
			Data:    []domain.ScoredContent{},
			Errors:  []itemError{},
			Success: false,
			Error:   err.Error(),
			Kind:    instagram.Kind(err),
		})
		return
	}

	resp := resolveResponse{
		Data:      batch.Succeeded(),
		Errors:    []itemError{},
		CSRFToken: batch.Token.Value,
		Success:   true,
	}
	for _, f := range batch.Failed() {
		resp.Errors = append(resp.Errors, itemError{URL: f.SourceURL, Kind: f.Kind, Message: f.Err.Error()})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type topResponse struct {
	Data []domain.ScoredContent `json:"data"`
}

func (s *Server) top(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxTopLimit)
	}

	stored, err := s.repo.ListTop(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list top contents", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list contents")
		return
	}

	resp := topResponse{Data: make([]domain.ScoredContent, 0, len(stored))}
	for _, c := range stored {
		resp.Data = append(resp.Data, c.Content)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check request received", "method", r.Method, "url", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// authorize requires "Authorization: Bearer <secret>". Without a configured
// secret every request is rejected unless anonymous access is enabled.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return s.anonymous
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) == 1
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}
