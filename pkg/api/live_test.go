package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vrypan/bsearch/pkg/realtime"
)

func dialLive(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing live channel: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) liveResponse {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame liveResponse
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	return frame
}

func TestLiveSearchDebouncedEvaluation(t *testing.T) {
	server, _, _ := newTestServer(t)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialLive(t, srv)

	// A burst of keystrokes: only the last one should be evaluated.
	for _, q := range []string{"b", "bl", "blo", "blog"} {
		if err := conn.WriteJSON(liveRequest{Query: q}); err != nil {
			t.Fatalf("writing frame: %v", err)
		}
	}

	frame := readFrame(t, conn)
	if frame.Event != "results" {
		t.Fatalf("event = %q", frame.Event)
	}
	if frame.Query != "blog" {
		t.Fatalf("debounce should keep only the last keystroke, got query %q", frame.Query)
	}
	if frame.Total != 2 {
		t.Fatalf("total = %d", frame.Total)
	}
}

func TestLiveSortChangeReusesResults(t *testing.T) {
	server, _, _ := newTestServer(t)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialLive(t, srv)

	if err := conn.WriteJSON(liveRequest{Query: "blog"}); err != nil {
		t.Fatal(err)
	}
	first := readFrame(t, conn)
	if first.Total != 2 {
		t.Fatalf("total = %d", first.Total)
	}

	// Sort-only change answers immediately from the cached result set.
	if err := conn.WriteJSON(liveRequest{Query: "blog", Sort: "newest"}); err != nil {
		t.Fatal(err)
	}
	second := readFrame(t, conn)
	if second.Sort != "newest" {
		t.Fatalf("sort = %q", second.Sort)
	}
	if second.Total != 2 {
		t.Fatalf("sort change must keep the result set, total = %d", second.Total)
	}
	if second.Results[0].ID != "cast-1" {
		t.Fatalf("newest order: %s first", second.Results[0].ID)
	}
}

func TestLiveFacetChangeEvaluatesImmediately(t *testing.T) {
	server, _, _ := newTestServer(t)
	// A debounce window far larger than the read deadlines below, so a
	// facet change that went through the debouncer misses them.
	server.debounce = time.Second
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialLive(t, srv)

	// The initial keystroke is debounced as usual.
	if err := conn.WriteJSON(liveRequest{Query: "blog"}); err != nil {
		t.Fatal(err)
	}
	first := readFrame(t, conn)
	if first.Total != 2 {
		t.Fatalf("total = %d", first.Total)
	}

	if err := conn.WriteJSON(liveRequest{Query: "blog", Type: "farcaster"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var second liveResponse
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("facet change must evaluate immediately, not after the debounce window: %v", err)
	}
	if second.Total != 1 || second.Results[0].ID != "cast-1" {
		t.Fatalf("facet change must re-query: %+v", second.SearchResponse)
	}

	// Clearing the facet while the query text stays put is also immediate.
	if err := conn.WriteJSON(liveRequest{Query: "blog"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var third liveResponse
	if err := conn.ReadJSON(&third); err != nil {
		t.Fatalf("facet clear must evaluate immediately: %v", err)
	}
	if third.Total != 2 {
		t.Fatalf("facet clear total = %d", third.Total)
	}
}

func TestLiveReloadPushesFreshResults(t *testing.T) {
	server, hub, _ := newTestServer(t)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dialLive(t, srv)

	if err := conn.WriteJSON(liveRequest{Query: "blog"}); err != nil {
		t.Fatal(err)
	}
	if frame := readFrame(t, conn); frame.Event != "results" {
		t.Fatalf("event = %q", frame.Event)
	}

	hub.Broadcast(realtime.ReloadEvent{Documents: 2, LoadedAt: time.Now()})

	frame := readFrame(t, conn)
	if frame.Event != "reload" {
		t.Fatalf("event = %q, want reload", frame.Event)
	}
	if frame.Query != "blog" {
		t.Fatalf("reload should re-run the last query, got %q", frame.Query)
	}
}
