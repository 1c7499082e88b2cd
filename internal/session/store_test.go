package session

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sanctumfront/internal/apiclient"
	"github.com/sanctumfront/internal/logger"
)

func newTestStore(t *testing.T) (*Store, *int) {
	t.Helper()
	created := 0
	store := NewStore(func(visitorID string) (*Visitor, error) {
		created++
		return &Visitor{Auth: NewManager(newFakeAPI(), logger.Discard())}, nil
	}, logger.Discard())
	return store, &created
}

func TestStore_GetCreatesOnce(t *testing.T) {
	store, created := newTestStore(t)

	a1, err := store.Get("visitor-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	a2, _ := store.Get("visitor-a")
	b, _ := store.Get("visitor-b")

	if a1 != a2 {
		t.Errorf("same visitor should get the same state")
	}
	if a1 == b || a1.Auth == b.Auth {
		t.Errorf("different visitors must not share a manager")
	}
	if *created != 2 {
		t.Errorf("expected 2 managers created, got %d", *created)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Len())
	}
}

func TestStore_GetErrors(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Get(""); !errors.Is(err, ErrEmptyVisitorID) {
		t.Errorf("expected ErrEmptyVisitorID, got %v", err)
	}

	boom := errors.New("boom")
	failing := NewStore(func(string) (*Visitor, error) { return nil, boom }, logger.Discard())
	if _, err := failing.Get("v"); !errors.Is(err, boom) {
		t.Errorf("expected factory error to be wrapped, got %v", err)
	}
	if failing.Len() != 0 {
		t.Errorf("failed creation must not be stored")
	}
}

func TestStore_Sweep(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, _ = store.Get("old")
	now = now.Add(30 * time.Minute)
	_, _ = store.Get("fresh")
	now = now.Add(40 * time.Minute)

	removed := store.Sweep(time.Hour)
	if removed != 1 {
		t.Errorf("expected 1 session removed, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session remaining, got %d", store.Len())
	}

	// Touching a session refreshes it
	_, _ = store.Get("fresh")
	now = now.Add(59 * time.Minute)
	if store.Sweep(time.Hour) != 0 {
		t.Errorf("recently used session should survive")
	}
}

func TestStore_Remove(t *testing.T) {
	store, _ := newTestStore(t)
	_, _ = store.Get("v")
	store.Remove("v")
	if store.Len() != 0 {
		t.Errorf("expected empty store after Remove")
	}
}

func TestStore_StartSweeper(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.StartSweeper("not a schedule", time.Minute); err == nil {
		t.Errorf("expected invalid schedule error")
	}

	if err := store.StartSweeper("@every 1h", time.Minute); err != nil {
		t.Fatalf("StartSweeper() error = %v", err)
	}
	store.Stop()
	// Stopping twice is harmless
	store.Stop()
}

func TestClientFactory(t *testing.T) {
	factory := ClientFactory("http://localhost:3000", logger.Discard())

	a, err := factory("a")
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	b, _ := factory("b")

	if a.Client == b.Client {
		t.Errorf("visitors must not share a client")
	}
	if a.Client.BaseURL() != "http://localhost:3000" {
		t.Errorf("BaseURL() = %q", a.Client.BaseURL())
	}
	if a.Auth.Snapshot().State != StateUnknown {
		t.Errorf("new visitor should start unknown")
	}

	if _, err := ClientFactory("not a url", logger.Discard())("c"); err == nil {
		t.Errorf("expected error for invalid base URL")
	}
}

func TestClientFactory_SharedHTTPClient(t *testing.T) {
	shared := &http.Client{}
	factory := ClientFactory("http://localhost:3000", logger.Discard(), apiclient.WithHTTPClient(shared))

	for _, id := range []string{"a", "b"} {
		if _, err := factory(id); err != nil {
			t.Fatalf("factory(%q) error = %v", id, err)
		}
	}

	if shared.Jar != nil {
		t.Errorf("visitors must get their own jar, not one attached to the shared client")
	}
}
