package testutil_test

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/testutil"
)

func get(t *testing.T, srv *testutil.Server, path string) (int, string) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestServer_CannedResponses(t *testing.T) {
	srv := testutil.NewServer("users").
		JSON(http.MethodGet, "/users", http.StatusOK, `{"id":7,"name":"Ann"}`).
		JSON(http.MethodGet, "/missing", http.StatusNotFound, `{"error":"nope"}`)
	testutil.T(t).Setup(srv)

	status, body := get(t, srv, "/users?id=7")
	if status != http.StatusOK || body != `{"id":7,"name":"Ann"}` {
		t.Errorf("unexpected reply %d %q", status, body)
	}

	status, _ = get(t, srv, "/missing")
	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}

	status, body = get(t, srv, "/unregistered")
	if status != http.StatusNotFound || !strings.Contains(body, "no route") {
		t.Errorf("expected no-route 404, got %d %q", status, body)
	}

	if got := srv.Hits(http.MethodGet, "/users"); got != 1 {
		t.Errorf("expected 1 hit on /users, got %d", got)
	}
	if got := srv.TotalHits(); got != 3 {
		t.Errorf("expected 3 total hits, got %d", got)
	}
	if q := srv.Requests()[0].Query.Get("id"); q != "7" {
		t.Errorf("expected recorded query id=7, got %q", q)
	}
}

func TestServer_Lifecycle(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewServer("lifecycle")

	if h := srv.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Error("expected second Start() to fail")
	}
	if h := srv.Health(ctx); !h.Healthy() {
		t.Errorf("expected healthy after Start, got %s", h.Status)
	}
	if srv.Host() == "" {
		t.Error("expected host after Start")
	}
	if err := srv.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if srv.URL() != "" {
		t.Error("expected empty URL after Stop")
	}
}

func TestServer_ResetSnapshotRestore(t *testing.T) {
	srv := testutil.NewServer("state").JSON(http.MethodGet, "/a", http.StatusOK, `{}`)
	h := testutil.T(t)
	h.Setup(srv)

	snapshot := h.Snapshot(srv)
	srv.JSON(http.MethodGet, "/b", http.StatusOK, `{}`)
	get(t, srv, "/a")

	h.Reset(srv)
	if srv.TotalHits() != 0 {
		t.Errorf("expected no hits after Reset, got %d", srv.TotalHits())
	}

	h.Restore(srv, snapshot)
	if status, _ := get(t, srv, "/b"); status != http.StatusNotFound {
		t.Errorf("expected /b to be gone after Restore, got %d", status)
	}

	if err := srv.Restore(context.Background(), "bogus"); err == nil {
		t.Error("expected Restore to reject a foreign snapshot")
	}
}

func TestServer_DelayAbandonedByClient(t *testing.T) {
	srv := testutil.NewServer("slow").Handle(http.MethodGet, "/slow", testutil.Response{
		Body:  `{}`,
		Delay: time.Second,
	})
	testutil.T(t).Setup(srv)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL()+"/slow", nil)
	if _, err := srv.Client().Do(req); err == nil {
		t.Fatal("expected client timeout")
	}
}

func TestServer_Describe(t *testing.T) {
	srv := testutil.NewServer("d").JSON(http.MethodGet, "/x", http.StatusOK, `{}`)
	if got := srv.Describe(); got.Type != "fake-upstream" || got.Details != "routes=1" {
		t.Errorf("unexpected description %+v", got)
	}
}

func TestFixtures(t *testing.T) {
	fsys := testutil.Fixtures(map[string]string{"user_ok.json": `{"id":1}`})
	data, err := fs.ReadFile(fsys, "user_ok.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"id":1}` {
		t.Errorf("unexpected fixture contents %q", data)
	}
}
