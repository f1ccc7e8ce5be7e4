package tasks

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lbruzzone/daylist/internal/docstore"
	"github.com/lbruzzone/daylist/internal/notify"
	"github.com/lbruzzone/daylist/internal/observability"
)

// Manager is the single authority mediating between UI-issued task mutations
// and the remote document store. It owns the in-memory collection for one
// admitted session, keeps it in insertion order, and reports every operation
// outcome through the notification channel. Remote failures are logged and
// dispatched as error notifications; they are never re-raised to callers.
type Manager struct {
	store      docstore.Store
	collection string
	notifier   *notify.Channel
	metrics    *observability.Metrics

	mu    sync.RWMutex
	state State
	order []string
	tasks map[string]Task
}

func NewManager(store docstore.Store, collection string, notifier *notify.Channel, metrics *observability.Metrics) *Manager {
	if strings.TrimSpace(collection) == "" {
		collection = "todos"
	}
	return &Manager{
		store:      store,
		collection: collection,
		notifier:   notifier,
		metrics:    metrics,
		state:      StateEmpty,
		tasks:      make(map[string]Task),
	}
}

// Load fetches the entire remote collection and replaces the local one
// wholesale. Invoked once per admitted session. On failure the prior
// collection and lifecycle state are left untouched; there is no automatic
// retry — the caller surface may re-trigger.
func (m *Manager) Load(ctx context.Context) Outcome {
	m.mu.Lock()
	prev := m.state
	m.state = StateLoading
	m.mu.Unlock()

	start := time.Now()
	records, err := m.store.ListRecords(ctx, m.collection)
	if err != nil {
		log.Printf("task load failed: %v", err)
		m.mu.Lock()
		m.state = prev
		m.mu.Unlock()
		m.metrics.ObserveTaskOperation("load", string(OutcomeFailed))
		m.dispatch("Error loading tasks", notify.KindError)
		return OutcomeFailed
	}

	order := make([]string, 0, len(records))
	byID := make(map[string]Task, len(records))
	for _, rec := range records {
		task := Task{
			ID:       rec.ID,
			Title:    rec.Title,
			Date:     rec.Date,
			Priority: Priority(rec.Status),
		}
		order = append(order, task.ID)
		byID[task.ID] = task
	}

	m.mu.Lock()
	m.order = order
	m.tasks = byID
	m.state = StateLoaded
	m.mu.Unlock()

	m.metrics.ObserveTaskOperation("load", string(OutcomeApplied))
	m.metrics.ObserveCollectionLoad(len(order), time.Since(start))
	return OutcomeApplied
}

// Create persists a draft and, only after the store confirms, appends the
// id-bearing task to the collection. A whitespace-only title short-circuits
// with no remote call and no notification; that silence is deliberate
// pass-through policy, surfaced to callers as OutcomeSkipped.
func (m *Manager) Create(ctx context.Context, draft Draft) (Task, Outcome) {
	if strings.TrimSpace(draft.Title) == "" {
		m.metrics.ObserveTaskOperation("create", string(OutcomeSkipped))
		return Task{}, OutcomeSkipped
	}

	id, err := m.store.CreateRecord(ctx, m.collection, docstore.Fields{
		Title:  draft.Title,
		Date:   draft.Date,
		Status: string(draft.Priority),
	})
	if err != nil {
		log.Printf("task create failed: %v", err)
		m.metrics.ObserveTaskOperation("create", string(OutcomeFailed))
		m.dispatch("Error adding task", notify.KindError)
		return Task{}, OutcomeFailed
	}

	task := Task{
		ID:       id,
		Title:    draft.Title,
		Date:     draft.Date,
		Priority: draft.Priority,
	}

	m.mu.Lock()
	m.order = append(m.order, task.ID)
	m.tasks[task.ID] = task
	size := len(m.order)
	m.mu.Unlock()

	m.metrics.ObserveTaskOperation("create", string(OutcomeApplied))
	m.metrics.ObserveCollectionSize(size)
	m.dispatch("Added successfully", notify.KindSuccess)
	return task, OutcomeApplied
}

// Update persists the patch keyed by id and shallow-merges it locally only
// after the store confirms, so a concurrent reader never observes a value
// the store rejected. Fields absent from the patch are retained. A missing
// id surfaces through the store's own not-found failure.
func (m *Manager) Update(ctx context.Context, id string, patch Patch) (Task, Outcome) {
	var status *string
	if patch.Priority != nil {
		s := string(*patch.Priority)
		status = &s
	}
	err := m.store.UpdateRecord(ctx, m.collection, id, docstore.Patch{
		Title:  patch.Title,
		Date:   patch.Date,
		Status: status,
	})
	if err != nil {
		log.Printf("task update failed: id=%s %v", id, err)
		m.metrics.ObserveTaskOperation("update", string(OutcomeFailed))
		m.dispatch("Error updating task", notify.KindError)
		return Task{}, OutcomeFailed
	}

	m.mu.Lock()
	task, held := m.tasks[id]
	task.ID = id
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Date != nil {
		task.Date = *patch.Date
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if held {
		m.tasks[id] = task
	}
	m.mu.Unlock()

	m.metrics.ObserveTaskOperation("update", string(OutcomeApplied))
	m.dispatch("Updated successfully", notify.KindSuccess)
	return task, OutcomeApplied
}

// Delete removes the remote record, then the local entry. The relative
// order of all other entries is preserved. Deleting an id the store does
// not hold is the store's failure to report; there is no pre-validation.
func (m *Manager) Delete(ctx context.Context, id string) Outcome {
	if err := m.store.DeleteRecord(ctx, m.collection, id); err != nil {
		log.Printf("task delete failed: id=%s %v", id, err)
		m.metrics.ObserveTaskOperation("delete", string(OutcomeFailed))
		m.dispatch("Error deleting task", notify.KindError)
		return OutcomeFailed
	}

	m.mu.Lock()
	delete(m.tasks, id)
	out := m.order[:0]
	for _, existing := range m.order {
		if existing == id {
			continue
		}
		out = append(out, existing)
	}
	m.order = out
	size := len(m.order)
	m.mu.Unlock()

	m.metrics.ObserveTaskOperation("delete", string(OutcomeApplied))
	m.metrics.ObserveCollectionSize(size)
	m.dispatch("Deleted successfully", notify.KindSuccess)
	return OutcomeApplied
}

// Snapshot returns the collection in insertion order.
func (m *Manager) Snapshot() []Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Task, 0, len(m.order))
	for _, id := range m.order {
		if task, ok := m.tasks[id]; ok {
			out = append(out, task)
		}
	}
	return out
}

// State reports the collection lifecycle for the current session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Reset discards the collection on session teardown (sign-out or navigation
// away). The next admitted session rebuilds it wholesale via Load.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.state = StateEmpty
	m.order = nil
	m.tasks = make(map[string]Task)
	m.mu.Unlock()
	m.metrics.ObserveCollectionSize(0)
}

func (m *Manager) dispatch(message string, kind notify.Kind) {
	if m.notifier == nil {
		return
	}
	m.notifier.Dispatch(message, true, kind)
	m.metrics.ObserveNotification(string(kind))
}
