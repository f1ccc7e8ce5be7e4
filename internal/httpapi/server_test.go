package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lbruzzone/daylist/internal/auth"
	"github.com/lbruzzone/daylist/internal/config"
	"github.com/lbruzzone/daylist/internal/docstore"
	"github.com/lbruzzone/daylist/internal/notify"
	"github.com/lbruzzone/daylist/internal/tasks"
)

func newTestServer(t *testing.T, userID string) (*httptest.Server, *notify.Channel) {
	t.Helper()
	cfg := config.Config{
		TasksCollection: "todos",
		LoginPath:       "/login",
	}
	notifier := notify.NewChannel()
	store := tasks.NewManager(docstore.NewInMemoryStore(), cfg.TasksCollection, notifier, nil)
	svc := auth.NewStaticService(userID)
	guard := auth.NewGuard(nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go guard.Run(ctx, svc, auth.Hooks{
		OnAdmit: func(ctx context.Context, _ string) { store.Load(ctx) },
		OnDeny:  store.Reset,
	})

	want := auth.DecisionAdmitted
	if userID == "" {
		want = auth.DecisionDenied
	}
	deadline := time.Now().Add(2 * time.Second)
	for guard.Current() != want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if guard.Current() != want {
		t.Fatalf("guard decision = %q, want %q", guard.Current(), want)
	}

	srv := New(cfg, store, notifier, guard, svc, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, notifier
}

func TestTaskRoundTrip(t *testing.T) {
	ts, notifier := newTestServer(t, "u1")

	body, _ := json.Marshal(map[string]string{
		"title":    "buy milk",
		"date":     "2026-09-01",
		"priority": "High",
	})
	res, err := http.Post(ts.URL+"/v1/tasks", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var created tasks.Task
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created task has no id: %+v", created)
	}
	if got := notifier.Current(); got.Kind != notify.KindSuccess {
		t.Fatalf("notification kind = %q, want %q", got.Kind, notify.KindSuccess)
	}

	viewRes, err := http.Get(ts.URL + "/v1/tasks/view")
	if err != nil {
		t.Fatalf("view request error = %v", err)
	}
	defer viewRes.Body.Close()
	var view struct {
		Groups []tasks.Group `json:"groups"`
	}
	if err := json.NewDecoder(viewRes.Body).Decode(&view); err != nil {
		t.Fatalf("decode view response: %v", err)
	}
	if len(view.Groups) != 1 || view.Groups[0].Key != "2026-09-01" {
		t.Fatalf("view groups = %+v, want single 2026-09-01 group", view.Groups)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/tasks/"+created.ID, nil)
	delRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request error = %v", err)
	}
	defer delRes.Body.Close()
	if delRes.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", delRes.StatusCode, http.StatusOK)
	}

	listRes, err := http.Get(ts.URL + "/v1/tasks")
	if err != nil {
		t.Fatalf("list request error = %v", err)
	}
	defer listRes.Body.Close()
	var list struct {
		Tasks []tasks.Task `json:"tasks"`
	}
	if err := json.NewDecoder(listRes.Body).Decode(&list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Tasks) != 0 {
		t.Fatalf("tasks after delete = %+v, want empty", list.Tasks)
	}
}

func TestCreateBlankTitleIsNoContent(t *testing.T) {
	ts, notifier := newTestServer(t, "u1")

	body, _ := json.Marshal(map[string]string{"title": "   ", "date": "2026-09-01"})
	res, err := http.Post(ts.URL+"/v1/tasks", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("create status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
	if got := notifier.Current(); got != (notify.State{}) {
		t.Fatalf("notification state = %+v, want untouched", got)
	}
}

func TestDeniedSessionRedirectsToLogin(t *testing.T) {
	ts, _ := newTestServer(t, "")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	res, err := client.Get(ts.URL + "/v1/tasks")
	if err != nil {
		t.Fatalf("list request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusFound)
	}
	if got := res.Header.Get("Location"); got != "/login" {
		t.Fatalf("location = %q, want %q", got, "/login")
	}
}

func TestNotificationEndpointClearsState(t *testing.T) {
	ts, notifier := newTestServer(t, "u1")

	notifier.Dispatch("Added successfully", true, notify.KindSuccess)

	body, _ := json.Marshal(map[string]any{"message": "", "active": false, "kind": ""})
	res, err := http.Post(ts.URL+"/v1/notifications", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("dispatch request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("dispatch status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var state notify.State
	if err := json.NewDecoder(res.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state != (notify.State{}) {
		t.Fatalf("state after clear = %+v, want empty", state)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, "u1")

	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}
