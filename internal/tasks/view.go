package tasks

import (
	"strings"
	"time"
)

// Group is one display section of the presentation view: all tasks sharing a
// raw date key, labeled for humans.
type Group struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Tasks []Task `json:"tasks"`
}

// PresentationView partitions the collection by its raw date keys. Keys are
// compared by string equality — no normalization, so two spellings of the
// same calendar day form distinct groups. Groups appear in the order their
// key was first encountered walking the collection, and tasks keep their
// collection order within a group. Pure projection: recomputed on every
// call, deterministic for a fixed collection.
func (m *Manager) PresentationView() []Group {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := make([]Group, 0, len(m.order))
	index := make(map[string]int, len(m.order))
	for _, id := range m.order {
		task, ok := m.tasks[id]
		if !ok {
			continue
		}
		i, seen := index[task.Date]
		if !seen {
			i = len(groups)
			index[task.Date] = i
			groups = append(groups, Group{
				Key:   task.Date,
				Label: GroupLabel(task.Date),
			})
		}
		groups[i].Tasks = append(groups[i].Tasks, task)
	}
	return groups
}

// GroupLabel renders a date key as a weekday/day/month heading, e.g.
// "Monday, 2 January". Keys that do not parse as a plain calendar date fall
// back to the raw key rather than guessing at a day.
func GroupLabel(key string) string {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(key))
	if err != nil {
		return key
	}
	return d.Format("Monday, 2 January")
}
