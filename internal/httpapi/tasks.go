package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lbruzzone/daylist/internal/notify"
	"github.com/lbruzzone/daylist/internal/tasks"
)

type createTaskRequest struct {
	Title    string         `json:"title"`
	Date     string         `json:"date"`
	Priority tasks.Priority `json:"priority"`
}

type updateTaskRequest struct {
	Title    *string         `json:"title"`
	Date     *string         `json:"date"`
	Priority *tasks.Priority `json:"priority"`
}

type dispatchRequest struct {
	Message string      `json:"message"`
	Active  bool        `json:"active"`
	Kind    notify.Kind `json:"kind"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"state": string(s.store.State()),
		"tasks": s.store.Snapshot(),
	})
}

func (s *Server) handleTaskView(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"groups": s.store.PresentationView(),
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	task, outcome := s.store.Create(r.Context(), tasks.Draft{
		Title:    req.Title,
		Date:     req.Date,
		Priority: req.Priority,
	})
	switch outcome {
	case tasks.OutcomeSkipped:
		// Deliberate pass-through on blank titles: no store call, no
		// notification, nothing created.
		w.WriteHeader(http.StatusNoContent)
	case tasks.OutcomeFailed:
		respondError(w, http.StatusBadGateway, "task_create_failed", "remote store rejected the create")
	default:
		respondJSON(w, http.StatusCreated, task)
	}
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_task_id", "missing task id")
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	task, outcome := s.store.Update(r.Context(), id, tasks.Patch{
		Title:    req.Title,
		Date:     req.Date,
		Priority: req.Priority,
	})
	if outcome == tasks.OutcomeFailed {
		respondError(w, http.StatusBadGateway, "task_update_failed", "remote store rejected the update")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_task_id", "missing task id")
		return
	}

	if outcome := s.store.Delete(r.Context(), id); outcome == tasks.OutcomeFailed {
		respondError(w, http.StatusBadGateway, "task_delete_failed", "remote store rejected the delete")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleGetNotification(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.notifier.Current())
}

func (s *Server) handleDispatchNotification(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.notifier.Dispatch(req.Message, req.Active, req.Kind)
	s.metrics.ObserveNotification(string(req.Kind))
	respondJSON(w, http.StatusOK, s.notifier.Current())
}
