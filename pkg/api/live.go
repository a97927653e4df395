package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vrypan/bsearch/pkg/index"
	"github.com/vrypan/bsearch/pkg/realtime"
	"github.com/vrypan/bsearch/pkg/search"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is CORS-open; the live channel follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleLive answers GET /api/live, upgrading to a WebSocket carrying
// search-as-you-type traffic. The client sends its full query state on
// every keystroke or control change; the server debounces evaluation so
// only the last frame in a burst hits the engine. A frame that only
// changes the sort mode reuses the previous result set without
// re-querying. Index reloads push fresh results for the session's last
// query.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("live upgrade: %v", err)
		return
	}

	ls := &liveSession{
		id:        uuid.NewString(),
		server:    s,
		conn:      conn,
		debouncer: search.NewDebouncer(s.debounce),
	}
	s.logger.Debugf("live session %s connected", ls.id)
	ls.run()
}

// liveSession is one connected live-search client. Frames are written
// from the debouncer's timer goroutine, the reload forwarder and the read
// loop, so writes are serialized with a mutex (gorilla allows a single
// writer at a time).
type liveSession struct {
	id        string
	server    *Server
	conn      *websocket.Conn
	debouncer *search.Debouncer

	writeMu sync.Mutex

	mu        sync.Mutex
	hasLast   bool
	last      search.Params
	baseItems []index.Result // engine order, for sort-only changes
	tokens    []string
}

func (ls *liveSession) run() {
	defer func() {
		ls.debouncer.Stop()
		_ = ls.conn.Close()
		ls.server.logger.Debugf("live session %s closed", ls.id)
	}()

	done := make(chan struct{})
	defer close(done)
	if ls.server.hub != nil {
		hubID, events := ls.server.hub.Register()
		defer ls.server.hub.Unregister(hubID)
		go ls.forwardReloads(events, done)
	}

	for {
		var req liveRequest
		if err := ls.conn.ReadJSON(&req); err != nil {
			return
		}
		ls.handle(req.params())
	}
}

// handle routes one inbound frame. Only typing is debounced: a frame
// whose query text matches the last evaluated one is a control change
// (facet select or sort) and takes effect immediately, cancelling any
// pending evaluation. Sort-only changes additionally skip the engine and
// re-sort the cached result set.
func (ls *liveSession) handle(p search.Params) {
	ls.mu.Lock()
	sortOnly := ls.hasLast && sameQueryState(ls.last, p) && ls.last.Sort != p.Sort
	controlChange := ls.hasLast && !sortOnly && ls.last.Query == p.Query
	if sortOnly {
		ls.last.Sort = p.Sort
	}
	ls.mu.Unlock()

	if sortOnly {
		ls.debouncer.Stop()
		ls.pushSorted(p.Sort)
		return
	}
	if controlChange {
		ls.debouncer.Stop()
		ls.evaluate(p, "results")
		return
	}
	ls.debouncer.Trigger(func() {
		ls.evaluate(p, "results")
	})
}

// evaluate runs the query and pushes a result frame. The engine is always
// asked for relevance order; the requested sort is applied to a copy so
// later sort-only frames can go back to relevance without re-querying.
func (ls *liveSession) evaluate(p search.Params, event string) {
	base := p
	base.Sort = search.SortRelevance
	res, ok := ls.server.controller.Query(base)
	if !ok {
		ls.push(liveResponse{
			Event:          event,
			SearchResponse: SearchResponse{Status: ls.server.controller.StatusLine()},
		})
		return
	}

	ls.mu.Lock()
	ls.hasLast = true
	ls.last = p
	ls.baseItems = res.Items
	ls.tokens = res.Tokens
	ls.mu.Unlock()

	res.Items = sortedCopy(res.Items, p.Sort)
	res.Sort = p.Sort
	if res.Sort == "" {
		res.Sort = search.SortRelevance
	}
	ls.push(liveResponse{Event: event, SearchResponse: ls.server.searchResponse(res)})
}

// pushSorted re-emits the last base result set under a new sort mode.
func (ls *liveSession) pushSorted(mode string) {
	ls.mu.Lock()
	res := search.Results{
		Query:  ls.last.Query,
		Sort:   mode,
		Tokens: ls.tokens,
		Items:  sortedCopy(ls.baseItems, mode),
		Total:  len(ls.baseItems),
	}
	ls.mu.Unlock()
	if res.Sort == "" {
		res.Sort = search.SortRelevance
	}
	ls.push(liveResponse{Event: "results", SearchResponse: ls.server.searchResponse(res)})
}

// forwardReloads re-runs the session's last query when a fresh index is
// swapped in.
func (ls *liveSession) forwardReloads(events <-chan realtime.ReloadEvent, done <-chan struct{}) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			ls.mu.Lock()
			hasLast := ls.hasLast
			last := ls.last
			ls.mu.Unlock()
			if hasLast {
				ls.evaluate(last, "reload")
			}
		case <-done:
			return
		}
	}
}

func (ls *liveSession) push(frame liveResponse) {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()
	if err := ls.conn.WriteJSON(frame); err != nil {
		ls.server.logger.Debugf("live session %s write: %v", ls.id, err)
	}
}

// sameQueryState reports whether two Params differ at most in sort mode.
func sameQueryState(a, b search.Params) bool {
	return a.Query == b.Query &&
		a.Language == b.Language &&
		a.Type == b.Type &&
		a.Tag == b.Tag &&
		a.Year == b.Year
}

func sortedCopy(items []index.Result, mode string) []index.Result {
	if mode != search.SortNewest {
		return items
	}
	out := make([]index.Result, len(items))
	copy(out, items)
	return search.Resort(out, mode)
}
