package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lbruzzone/daylist/internal/auth"
	"github.com/lbruzzone/daylist/internal/config"
	"github.com/lbruzzone/daylist/internal/notify"
	"github.com/lbruzzone/daylist/internal/observability"
	"github.com/lbruzzone/daylist/internal/tasks"
)

// Server exposes the task store, the notification channel, and the session
// guard to the UI over HTTP.
type Server struct {
	cfg      config.Config
	store    *tasks.Manager
	notifier *notify.Channel
	guard    *auth.Guard
	authSvc  auth.Service
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, store *tasks.Manager, notifier *notify.Channel, guard *auth.Guard, authSvc auth.Service, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		guard:    guard,
		authSvc:  authSvc,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/notifications", s.handleGetNotification)
	r.Post("/v1/notifications", s.handleDispatchNotification)
	r.Get("/v1/notifications/ws", s.handleNotificationsWS)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/v1/tasks", s.handleListTasks)
		r.Get("/v1/tasks/view", s.handleTaskView)
		r.Post("/v1/tasks", s.handleCreateTask)
		r.Patch("/v1/tasks/{id}", s.handleUpdateTask)
		r.Delete("/v1/tasks/{id}", s.handleDeleteTask)
		r.Post("/v1/session/signout", s.handleSignOut)
	})

	return r
}

// requireSession translates the guard decision for an HTTP caller: PENDING
// renders a placeholder (503, retryable), DENIED redirects to the login
// path, ADMITTED lets the request through.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch s.guard.Current() {
		case auth.DecisionPending:
			w.Header().Set("Retry-After", "1")
			respondError(w, http.StatusServiceUnavailable, "session_pending", "authentication state is still resolving")
		case auth.DecisionDenied:
			http.Redirect(w, r, s.cfg.LoginPath, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"task_state": string(s.store.State()),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"decision": string(s.guard.Current()),
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.authSvc.SignOut(r.Context()); err != nil {
		s.notifier.Dispatch("Error signing out", true, notify.KindError)
		s.metrics.ObserveNotification(string(notify.KindError))
		respondError(w, http.StatusBadGateway, "signout_failed", err.Error())
		return
	}
	s.notifier.Dispatch("Signed out", true, notify.KindInfo)
	s.metrics.ObserveNotification(string(notify.KindInfo))
	respondJSON(w, http.StatusOK, map[string]any{"status": "signed_out"})
}

func (s *Server) handleNotificationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	states, cancel := s.notifier.Subscribe()
	defer cancel()

	// Readers only consume; the read loop exists to notice the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Late joiners start from the current state.
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(s.notifier.Current()); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
