package search

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestControllerLifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documents": [{"id": "a", "title": "hello world"}]}`))
	}))
	defer srv.Close()

	c := NewController(srv.URL+"/search-index.json", srv.Client())
	if c.State() != StateLoading {
		t.Fatalf("initial state = %v, want loading", c.State())
	}
	if _, ok := c.Query(Params{Query: "hello"}); ok {
		t.Fatal("queries before load must be no-ops")
	}
	if c.StatusLine() != StatusLoading {
		t.Errorf("status = %q", c.StatusLine())
	}

	if err := c.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.State() != StateReady {
		t.Fatalf("state after load = %v, want ready", c.State())
	}
	res, ok := c.Query(Params{Query: "hello"})
	if !ok || res.Total != 1 {
		t.Fatalf("query after load: ok=%v res=%+v", ok, res)
	}
}

func TestControllerUnavailableOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewController(srv.URL+"/search-index.json", srv.Client())
	if err := c.Load(t.Context()); err == nil {
		t.Fatal("expected load error")
	}
	if c.State() != StateUnavailable {
		t.Fatalf("state = %v, want unavailable", c.State())
	}
	if c.StatusLine() != StatusUnavailable {
		t.Errorf("status = %q", c.StatusLine())
	}
}

func TestControllerKeepsSessionOnFailedReload(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		f := fail
		mu.Unlock()
		if f {
			http.Error(w, "gone", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"documents": [{"id": "a", "title": "hello"}]}`))
	}))
	defer srv.Close()

	c := NewController(srv.URL, srv.Client())
	if err := c.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	mu.Lock()
	fail = true
	mu.Unlock()
	if err := c.Load(t.Context()); err == nil {
		t.Fatal("expected reload error")
	}
	if c.State() != StateReady {
		t.Fatalf("failed reload must keep the ready session, state = %v", c.State())
	}
	if _, ok := c.Query(Params{Query: "hello"}); !ok {
		t.Fatal("session lost after failed reload")
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)
	var mu sync.Mutex
	calls := 0
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected a single coalesced call, got %d", calls)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Stop()
	select {
	case <-fired:
		t.Fatal("stopped debouncer must not fire")
	case <-time.After(60 * time.Millisecond):
	}
}
