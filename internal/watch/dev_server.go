package watch

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed assets/reload.js
var reloadScript string

// DevServerConfig holds configuration for the dev server
type DevServerConfig struct {
	Host     string
	Port     int
	Root     string // directory to watch
	Patterns []string
	Ignored  []string
	Debounce time.Duration
	Builder  *Builder
}

// DevServer watches stylesheets, rebuilds them on change and serves the
// output with live reload.
type DevServer struct {
	config     DevServerConfig
	builder    *Builder
	logger     *zap.Logger
	reload     *ReloadServer
	watcher    *FileWatcher
	httpServer *http.Server

	buildMutex sync.Mutex
	stateMutex sync.RWMutex
	last       *BuildResult
	lastAt     time.Time
}

// NewDevServer creates a new development server
func NewDevServer(config DevServerConfig) (*DevServer, error) {
	if config.Builder == nil {
		return nil, fmt.Errorf("dev server needs a builder")
	}
	if config.Host == "" {
		config.Host = "localhost"
	}

	logger := config.Builder.Logger().Named("devserver")
	ds := &DevServer{
		config:  config,
		builder: config.Builder,
		logger:  logger,
		reload:  NewReloadServer(logger),
	}

	var err error
	ds.watcher, err = NewFileWatcher(WatcherConfig{
		Root:     config.Root,
		Patterns: config.Patterns,
		Ignored:  config.Ignored,
		Debounce: config.Debounce,
		Logger:   ds.logger,
	}, ds.HandleChange)
	if err != nil {
		ds.reload.Close()
		return nil, err
	}
	return ds, nil
}

// Handler returns the dev server routes
func (ds *DevServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/__reload", ds.reload.HandleWebSocket)
	r.Get("/__reload.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Header().Set("Cache-Control", "no-cache")
		fmt.Fprint(w, reloadScript)
	})
	r.Get("/__status", ds.handleStatus)

	css := http.StripPrefix("/css/", http.FileServer(http.Dir(ds.builder.OutputDir())))
	r.Get("/css/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		css.ServeHTTP(w, r)
	})
	return r
}

// Start runs an initial build, starts watching and serves until ctx ends.
func (ds *DevServer) Start(ctx context.Context) error {
	ds.rebuild(ctx, nil)

	if err := ds.watcher.Start(); err != nil {
		return err
	}

	addr := net.JoinHostPort(ds.config.Host, strconv.Itoa(ds.config.Port))
	ds.httpServer = &http.Server{
		Addr:              addr,
		Handler:           ds.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ds.logger.Info("serving stylesheets", zap.String("dir", ds.builder.OutputDir()), zap.String("addr", addr))
		errCh <- ds.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return ds.Stop()
	case err := <-errCh:
		ds.Stop()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Stop shuts the server down
func (ds *DevServer) Stop() error {
	err := ds.watcher.Stop()
	ds.reload.Close()
	if ds.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := ds.httpServer.Shutdown(ctx); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// HandleChange rebuilds after files changed
func (ds *DevServer) HandleChange(files []string) error {
	ds.rebuild(context.Background(), files)
	return nil
}

func (ds *DevServer) rebuild(ctx context.Context, files []string) {
	ds.buildMutex.Lock()
	defer ds.buildMutex.Unlock()

	var (
		result *BuildResult
		err    error
	)
	if files == nil {
		ds.logger.Info("building", zap.String("root", ds.config.Root))
		result, err = ds.builder.Build(ctx)
	} else {
		ds.reload.NotifyBuilding(files)
		result, err = ds.builder.Rebuild(ctx, files)
	}
	if err != nil {
		ds.logger.Error("build failed", zap.Error(err))
		ds.reload.NotifyError(&ErrorInfo{Message: err.Error()})
		return
	}

	ds.stateMutex.Lock()
	ds.last, ds.lastAt = result, time.Now()
	ds.stateMutex.Unlock()

	for _, fe := range result.Errors {
		ds.logger.Warn("compile failed", zap.String("path", fe.Path), zap.Error(fe.Err))
	}
	if !result.OK() {
		fe := result.Errors[0]
		ds.reload.NotifyError(ErrorInfoFrom(fe.Path, fe.Err))
		return
	}

	ds.logger.Info("build finished", zap.Int("written", len(result.Written)), zap.Duration("duration", result.Duration))
	if len(result.Removed) > 0 {
		ds.reload.NotifyReload()
	} else if urls := ds.URLs(result.Written); len(urls) > 0 {
		ds.reload.NotifyCSS(urls)
	}
	ds.reload.NotifySuccess(result.Duration)
}

// URLs maps output files to the paths the server serves them at
func (ds *DevServer) URLs(outputs []string) []string {
	urls := make([]string, 0, len(outputs))
	for _, out := range outputs {
		rel, err := filepath.Rel(ds.builder.OutputDir(), out)
		if err != nil {
			continue
		}
		urls = append(urls, "/css/"+filepath.ToSlash(rel))
	}
	return urls
}

type statusResponse struct {
	Connections int      `json:"connections"`
	BuiltAt     string   `json:"built_at,omitempty"`
	Written     []string `json:"written"`
	Errors      []string `json:"errors"`
	DurationMS  int64    `json:"duration_ms"`
	CacheHits   int      `json:"cache_hits"`
}

func (ds *DevServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Connections: ds.reload.ConnectionCount(),
		Written:     []string{},
		Errors:      []string{},
	}

	ds.stateMutex.RLock()
	if ds.last != nil {
		resp.BuiltAt = ds.lastAt.UTC().Format(time.RFC3339)
		resp.Written = append(resp.Written, ds.URLs(ds.last.Written)...)
		for _, fe := range ds.last.Errors {
			resp.Errors = append(resp.Errors, fe.Err.Error())
		}
		resp.DurationMS = ds.last.Duration.Milliseconds()
		if ds.last.Metrics != nil {
			resp.CacheHits = ds.last.Metrics.CacheHits
		}
	}
	ds.stateMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
