package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPServiceEmitsIdentityChanges(t *testing.T) {
	var signedIn atomic.Bool
	signedIn.Store(true)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/identity" {
			http.NotFound(w, r)
			return
		}
		session := Session{}
		if signedIn.Load() {
			session.UserID = "u1"
		}
		_ = json.NewEncoder(w).Encode(session)
	}))
	defer provider.Close()

	svc := NewHTTPService(provider.URL, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := svc.Sessions(ctx)

	first := <-sessions
	if !first.Loading {
		t.Fatalf("first emission = %+v, want loading", first)
	}

	got := nextSession(t, sessions)
	if got.UserID != "u1" || got.Loading {
		t.Fatalf("second emission = %+v, want resolved u1", got)
	}

	signedIn.Store(false)
	got = nextSession(t, sessions)
	if got.UserID != "" || got.Loading {
		t.Fatalf("third emission = %+v, want resolved empty", got)
	}
}

func TestHTTPServiceSignOut(t *testing.T) {
	var signoutCalls atomic.Int32
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/signout" && r.Method == http.MethodPost {
			signoutCalls.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer provider.Close()

	svc := NewHTTPService(provider.URL, time.Second)
	if err := svc.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if signoutCalls.Load() != 1 {
		t.Fatalf("signout calls = %d, want 1", signoutCalls.Load())
	}
}

func TestHTTPServiceSignOutReportsFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer provider.Close()

	svc := NewHTTPService(provider.URL, time.Second)
	if err := svc.SignOut(context.Background()); err == nil {
		t.Fatalf("SignOut() error = nil, want failure")
	}
}

func nextSession(t *testing.T, ch <-chan Session) Session {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("no session emitted within deadline")
		return Session{}
	}
}
