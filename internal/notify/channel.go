package notify

import (
	"sync"
)

// Kind classifies a notification for the UI.
type Kind string

const (
	KindNone    Kind = ""
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// State is the single live notification. When Active is false the state is
// the canonical empty form: no message, no kind.
type State struct {
	Active  bool   `json:"active"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

// Channel holds exactly one notification at a time. Dispatch fully replaces
// the previous state whether or not it was acknowledged; readers always see
// the most recent write. A Channel is created empty and lives for the
// process lifetime.
type Channel struct {
	mu    sync.RWMutex
	state State

	subscribers map[int]chan State
	nextSubID   int
}

func NewChannel() *Channel {
	return &Channel{
		subscribers: make(map[int]chan State),
	}
}

// Dispatch replaces the current state. It is synchronous and total: it
// cannot fail and does not schedule auto-dismissal. Callers clear the
// channel by dispatching with active=false, which normalizes message and
// kind to the empty form.
func (c *Channel) Dispatch(message string, active bool, kind Kind) {
	next := State{Active: active, Message: message, Kind: kind}
	if !active {
		next.Message = ""
		next.Kind = KindNone
	}

	c.mu.Lock()
	c.state = next
	subs := make([]chan State, 0, len(c.subscribers))
	for _, ch := range c.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- next:
		default:
			// Never let a slow subscriber block Dispatch; it will catch
			// up from Current on its next read.
		}
	}
}

// Current returns a snapshot of the live notification.
func (c *Channel) Current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers a listener for every subsequent dispatch. The returned
// cancel func unregisters and closes the channel.
func (c *Channel) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 64)
	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subscribers[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}
