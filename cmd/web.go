package cmd

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzhttp"
	"github.com/urfave/cli/v3"
	"github.com/vrypan/bsearch/pkg/api"
	"github.com/vrypan/bsearch/pkg/config"
	"github.com/vrypan/bsearch/pkg/core"
	"github.com/vrypan/bsearch/pkg/log"
	"github.com/vrypan/bsearch/pkg/realtime"
	"github.com/vrypan/bsearch/pkg/render"
	"github.com/vrypan/bsearch/pkg/render/common"
	"github.com/vrypan/bsearch/pkg/search"
	"github.com/vrypan/bsearch/pkg/version"
)

//go:embed web/static/*
var staticFS embed.FS

//go:embed web/templates/search.html
var searchPageHTML string

// WebCommand creates the web command with both API and UI
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start web server with both API endpoints and HTML interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "host:port to listen on (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), c.String("listen"))
		},
	}
}

// WebServer holds the server configuration and dependencies
type WebServer struct {
	config     *config.Config
	controller *search.Controller
	renderers  *render.Registry
	hub        *realtime.Hub
	apiServer  *api.Server
	page       *template.Template
	logger     *log.Logger
}

// startWebServer starts the web server with both API and UI
func startWebServer(ctx context.Context, configPath, listen string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listen == "" {
		listen = cfg.Listen
	}

	logger := log.ForComponent("web")

	controller := search.NewController(cfg.IndexURL(), http.DefaultClient)
	renderers := render.NewRegistry(cfg.BaseURL)
	hub := realtime.NewHub(4)
	apiServer := api.NewServer(controller, renderers, hub, cfg.Debounce.Duration)

	page, err := template.New("search").Funcs(common.GetTemplateFuncs()).Parse(searchPageHTML)
	if err != nil {
		return fmt.Errorf("parsing search page template: %w", err)
	}

	webServer := &WebServer{
		config:     cfg,
		controller: controller,
		renderers:  renderers,
		hub:        hub,
		apiServer:  apiServer,
		page:       page,
		logger:     logger,
	}

	// A failed initial load leaves the controller unavailable; the UI
	// stays up and reports that instead of the process dying.
	if err := controller.Load(ctx); err != nil {
		logger.Warnf("initial payload load failed, serving in unavailable state: %v", err)
	}

	if cfg.Watch {
		stop, err := webServer.watchPayload(ctx)
		if err != nil {
			logger.Warnf("payload watch disabled: %v", err)
		} else if stop != nil {
			defer stop()
		}
	}

	mux := http.NewServeMux()

	// API routes
	apiServer.RegisterRoutes(mux)

	// Web UI routes
	mux.HandleFunc("GET /{$}", webServer.handleSearchPage)
	mux.HandleFunc("GET /search", webServer.handleSearchPage)

	// Static assets
	mux.HandleFunc("GET /static/", webServer.handleStatic)

	handler := gzhttp.GzipHandler(api.CorsMiddleware(mux))

	server := &http.Server{
		Addr:    listen,
		Handler: handler,
	}

	go func() {
		logger.Infof("starting web server on http://%s", listen)
		logger.Infof("  GET /          - search page")
		logger.Infof("  GET /api/search - search JSON API")
		logger.Infof("  GET /api/facets - facet values")
		logger.Infof("  GET /api/live   - live search WebSocket")
		logger.Infof("  GET /health     - health check")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Infof("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// watchPayload reloads the index when a local payload file changes. Editors
// and generators tend to write in bursts, so reloads go through the same
// debouncer the live channel uses. Returns a stop function, or nil when the
// payload is remote.
func (s *WebServer) watchPayload(ctx context.Context) (func(), error) {
	location := s.config.IndexURL()
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: generators typically replace the file, which
	// drops inotify watches placed on the file itself.
	dir := filepath.Dir(location)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	debouncer := search.NewDebouncer(s.config.Debounce.Duration)
	target := filepath.Clean(location)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				s.logger.Debugf("payload changed (%s), scheduling reload", event.Op)
				debouncer.Trigger(func() { s.reload(ctx) })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warnf("payload watch error: %v", err)
			}
		}
	}()

	return func() {
		debouncer.Stop()
		if err := watcher.Close(); err != nil {
			s.logger.Warnf("closing watcher: %v", err)
		}
	}, nil
}

// reload refetches the payload and notifies live sessions. A failed reload
// keeps the previous session serving.
func (s *WebServer) reload(ctx context.Context) {
	if err := s.controller.Load(ctx); err != nil {
		s.logger.Errorf("reload failed: %v", err)
		return
	}
	docs := 0
	if session := s.controller.Session(); session != nil {
		docs = session.Documents()
	}
	s.hub.Broadcast(realtime.ReloadEvent{Documents: docs, LoadedAt: time.Now()})
	s.logger.Infof("index reloaded: %d documents, %d live sessions notified", docs, s.hub.Size())
}

// pageData is the template context for the search page.
type pageData struct {
	Title     string
	Params    search.Params
	Status    string
	Cards     []template.HTML
	Total     int
	Languages []core.Language
	Facets    core.Facets
	Searched  bool
	Version   string
}

// handleSearchPage renders the server-side search page. The page works
// without JavaScript; the live WebSocket channel only upgrades it.
func (s *WebServer) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	params := search.ParseParams(r.URL.Query())
	if params.Limit == 0 || params.Limit > 100 {
		params.Limit = 100
	}

	data := pageData{
		Title:   "Search",
		Params:  params,
		Status:  s.controller.StatusLine(),
		Version: version.APIVersion(),
	}

	session := s.controller.Session()
	if session != nil {
		data.Languages = session.Languages()
		data.Facets = session.Facets()

		var results search.Results
		if params.Blank() {
			if params.Filter() != nil {
				results = session.Browse(params)
				data.Searched = true
			}
		} else {
			results = session.Query(params)
			data.Searched = true
		}
		if data.Searched {
			data.Status = results.StatusLine()
			data.Total = results.Total
			for _, item := range results.Items {
				data.Cards = append(data.Cards, s.renderers.Render(item.Document, results.Tokens))
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Errorf("rendering search page: %v", err)
	}
}

// handleStatic serves static assets from embedded files
func (s *WebServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	filePath := "web/static/" + strings.TrimPrefix(path, "/static/")

	content, err := staticFS.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".ico"):
		w.Header().Set("Content-Type", "image/x-icon")
	case strings.HasSuffix(path, ".png"):
		w.Header().Set("Content-Type", "image/png")
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(content); err != nil {
		s.logger.Warnf("writing static content: %v", err)
	}
}
