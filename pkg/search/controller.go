package search

import (
	"context"
	"net/http"
	"sync"

	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/log"
)

// State is the controller's load state. It maps directly to the three
// user-visible status messages.
type State int

const (
	StateLoading State = iota
	StateReady
	StateUnavailable
)

// Controller holds the current Session and its load state. It performs
// the payload fetch and swaps in a fresh Session on reload. All methods
// are safe for concurrent use; queries against a controller that is not
// ready return empty Results.
type Controller struct {
	location string
	client   *http.Client
	logger   *log.Logger

	mu      sync.RWMutex
	state   State
	session *Session
}

// NewController creates a controller for the payload at location (an HTTP
// URL or a local file path). No fetch happens until Load.
func NewController(location string, client *http.Client) *Controller {
	return &Controller{
		location: location,
		client:   client,
		logger:   log.ForComponent("session"),
		state:    StateLoading,
	}
}

// Load fetches the payload and builds a fresh Session. On failure the
// controller moves to (or stays in) the unavailable state and the error is
// logged for diagnostics; an existing ready session is kept so a failed
// reload does not take search down.
func (c *Controller) Load(ctx context.Context) error {
	payload, err := core.LoadPayload(ctx, c.client, c.location)
	if err != nil {
		c.logger.Errorf("loading payload: %v", err)
		c.mu.Lock()
		if c.session == nil {
			c.state = StateUnavailable
		}
		c.mu.Unlock()
		return err
	}
	session, err := NewSession(payload)
	if err != nil {
		c.logger.Errorf("building session: %v", err)
		c.mu.Lock()
		if c.session == nil {
			c.state = StateUnavailable
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.session = session
	c.state = StateReady
	c.mu.Unlock()
	c.logger.Infof("search index ready: %d documents", session.Documents())
	return nil
}

// Session returns the current session, or nil when not ready.
func (c *Controller) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// State returns the current load state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Query evaluates Params against the current session. When the controller
// is not ready it returns empty Results and false.
func (c *Controller) Query(p Params) (Results, bool) {
	s := c.Session()
	if s == nil {
		return Results{}, false
	}
	return s.Query(p), true
}

// StatusLine returns the status message for the controller's load state.
func (c *Controller) StatusLine() string {
	switch c.State() {
	case StateReady:
		return StatusReadyPrompt
	case StateUnavailable:
		return StatusUnavailable
	default:
		return StatusLoading
	}
}
