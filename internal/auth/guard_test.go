package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name    string
		session Session
		want    Decision
	}{
		{"loading without identity", Session{Loading: true}, DecisionPending},
		{"loading with identity", Session{Loading: true, UserID: "u1"}, DecisionPending},
		{"resolved without identity", Session{}, DecisionDenied},
		{"resolved with identity", Session{UserID: "u1"}, DecisionAdmitted},
	}
	for _, tc := range cases {
		if got := Evaluate(tc.session); got != tc.want {
			t.Fatalf("%s: Evaluate() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGuardAdmitTriggersLoadOncePerSession(t *testing.T) {
	svc := NewStaticService("")
	guard := NewGuard(nil)

	var admits atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go guard.Run(ctx, svc, Hooks{
		OnAdmit: func(_ context.Context, userID string) {
			if userID != "u1" {
				t.Errorf("OnAdmit userID = %q, want %q", userID, "u1")
			}
			admits.Add(1)
		},
	})

	svc.Set(Session{UserID: "u1"})
	waitFor(t, func() bool { return guard.Current() == DecisionAdmitted })

	// Re-emitting the same admitted identity must not re-trigger the load.
	svc.Set(Session{UserID: "u1"})
	time.Sleep(20 * time.Millisecond)
	if got := admits.Load(); got != 1 {
		t.Fatalf("admit hook fired %d times, want 1", got)
	}
}

func TestGuardDeniesAfterAdmitted(t *testing.T) {
	svc := NewStaticService("u1")
	guard := NewGuard(nil)

	var denies atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go guard.Run(ctx, svc, Hooks{
		OnDeny: func() { denies.Add(1) },
	})

	waitFor(t, func() bool { return guard.Current() == DecisionAdmitted })

	// External sign-out: the transition out of ADMITTED must redirect, not
	// merely stop rendering.
	svc.Set(Session{})
	waitFor(t, func() bool { return guard.Current() == DecisionDenied })
	waitFor(t, func() bool { return denies.Load() == 1 })
}

func TestGuardPendingPerformsNoSideEffects(t *testing.T) {
	svc := NewStaticService("")
	guard := NewGuard(nil)

	var fired atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go guard.Run(ctx, svc, Hooks{
		OnAdmit: func(context.Context, string) { fired.Add(1) },
	})

	// Initial emission is a resolved empty session → denied, no admit.
	waitFor(t, func() bool { return guard.Current() == DecisionDenied })

	svc.Set(Session{Loading: true, UserID: "u1"})
	waitFor(t, func() bool { return guard.Current() == DecisionPending })
	if fired.Load() != 0 {
		t.Fatalf("admit hook fired during pending/denied states")
	}
}

func TestGuardReAdmissionFiresAgain(t *testing.T) {
	svc := NewStaticService("u1")
	guard := NewGuard(nil)

	var admits atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go guard.Run(ctx, svc, Hooks{
		OnAdmit: func(context.Context, string) { admits.Add(1) },
	})

	waitFor(t, func() bool { return admits.Load() == 1 })

	svc.Set(Session{})
	waitFor(t, func() bool { return guard.Current() == DecisionDenied })

	// A fresh sign-in is a fresh session: the collection reloads wholesale.
	svc.Set(Session{UserID: "u2"})
	waitFor(t, func() bool { return admits.Load() == 2 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}
