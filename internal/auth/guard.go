package auth

import (
	"context"
	"sync"

	"github.com/lbruzzone/daylist/internal/observability"
)

// Decision is the guard's verdict for the protected view.
type Decision string

const (
	// DecisionPending: the provider is still resolving. Render a
	// placeholder; do not redirect.
	DecisionPending Decision = "pending"
	// DecisionDenied: resolved, nobody signed in. Redirect to the
	// unauthenticated entry point.
	DecisionDenied Decision = "denied"
	// DecisionAdmitted: resolved identity. The protected view may mount.
	DecisionAdmitted Decision = "admitted"
)

// Evaluate maps a session to a guard decision. Loading wins over identity.
func Evaluate(s Session) Decision {
	if s.Loading {
		return DecisionPending
	}
	if s.UserID == "" {
		return DecisionDenied
	}
	return DecisionAdmitted
}

// Hooks are the guard's side effects on decision transitions.
type Hooks struct {
	// OnAdmit fires once per admitted session and triggers the initial
	// collection load.
	OnAdmit func(ctx context.Context, userID string)
	// OnDeny fires on every transition into DENIED — including from
	// ADMITTED on an external sign-out — and performs redirect/teardown.
	OnDeny func()
}

// Guard gates the protected view on the observed auth session. It holds no
// retry logic: a denied session is only reconsidered on the next emission
// from the auth service.
type Guard struct {
	metrics *observability.Metrics

	mu      sync.RWMutex
	current Decision
}

func NewGuard(metrics *observability.Metrics) *Guard {
	return &Guard{
		metrics: metrics,
		current: DecisionPending,
	}
}

// Current returns the latest decision. Before any emission it is PENDING.
func (g *Guard) Current() Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Run re-evaluates on every session emission until ctx is cancelled or the
// stream closes. It blocks; callers run it in a goroutine.
func (g *Guard) Run(ctx context.Context, svc Service, hooks Hooks) {
	sessions := svc.Sessions(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case session, ok := <-sessions:
			if !ok {
				return
			}
			g.apply(ctx, session, hooks)
		}
	}
}

func (g *Guard) apply(ctx context.Context, session Session, hooks Hooks) {
	next := Evaluate(session)

	g.mu.Lock()
	prev := g.current
	g.current = next
	g.mu.Unlock()

	g.metrics.ObserveGuardDecision(string(next))

	switch {
	case next == DecisionAdmitted && prev != DecisionAdmitted:
		if hooks.OnAdmit != nil {
			hooks.OnAdmit(ctx, session.UserID)
		}
	case next == DecisionDenied && prev != DecisionDenied:
		if hooks.OnDeny != nil {
			hooks.OnDeny()
		}
	}
}
