package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vango-dev/consolenav/pkg/manifest"
	"github.com/vango-dev/consolenav/pkg/navigator"
	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/search"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, manifest.Build(s.nav.Tree()))
}

// recoverFor reports whether failed navigations of r recover to the
// fallback. ?recover overrides Config.Recover.
func (s *Server) recoverFor(r *http.Request) bool {
	if v := r.URL.Query().Get("recover"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return s.config.Recover
}

// handleNavigate runs one navigation. ?recover=true replaces a failed
// navigation with one to the fallback.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
		return
	}
	fallback := s.recoverFor(r)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.NavigateTimeout)
	defer cancel()

	var nav *navigator.Navigation
	if fallback {
		nav = s.nav.NavigateOrRecover(ctx, target)
	} else {
		nav = s.nav.Navigate(ctx, target)
	}
	s.writeJSON(w, statusFor(nav), nav)
}

// statusFor maps a navigation outcome to an HTTP status.
func statusFor(nav *navigator.Navigation) int {
	if !nav.Failed() {
		return http.StatusOK
	}

	var (
		notFound   *router.NotFoundError
		invalidURL *router.InvalidURLError
		validation *search.ValidationError
		loop       *router.RedirectLoopError
	)
	switch {
	case errors.As(nav.Err, &notFound):
		return http.StatusNotFound
	case errors.As(nav.Err, &invalidURL), errors.As(nav.Err, &validation):
		return http.StatusBadRequest
	case errors.As(nav.Err, &loop):
		return http.StatusLoopDetected
	case errors.Is(nav.Err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
