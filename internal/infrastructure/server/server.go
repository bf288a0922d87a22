package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/A5R13L/gmod-monaco-editor/internal/api/http"
	"github.com/A5R13L/gmod-monaco-editor/internal/api/middleware"
	"github.com/A5R13L/gmod-monaco-editor/internal/api/ws"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/bridge"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/completion"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/editor"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/theme"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/config"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	sessions *session.Registry
	bridge   *bridge.Bridge
	hub      *ws.Hub
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics

	seeding chan struct{}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.ConfigFor(cfg.Logging.Level, cfg.Logging.Development))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing editor server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Duration("debounce", cfg.Session.Debounce),
		zap.Int("history", cfg.Session.HistorySize),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	sessions := session.NewRegistry(editor.NewHeadlessView(), editor.NewBuffer,
		session.WithLogger(logger.Component("session")),
		session.WithHistorySize(cfg.Session.HistorySize),
		session.WithRevealDelay(cfg.Session.RevealDelay),
		session.WithMetrics(metrics),
	)

	feedOpts := completion.DefaultFeedOptions()
	feedOpts.Timeout = cfg.Completion.FeedTimeout
	feed := completion.NewFeed(feedOpts, logger.Component("feed")).WithMetrics(metrics)

	hub := ws.NewHub(logger.Component("ws"), metrics)
	b := bridge.New(hub, sessions, vfs.New(), bridge.Config{
		Debounce:     cfg.Session.Debounce,
		MatchTimeout: cfg.Search.MatchTimeout,
		Themes:       theme.NewRegistry(),
		Completion:   completion.NewStore(),
		Feed:         feed,
		Logger:       logger.Component("bridge"),
		Metrics:      metrics,
	})
	hub.Attach(b)

	s := &Server{
		sessions: sessions,
		bridge:   b,
		hub:      hub,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		seeding:  make(chan struct{}),
	}

	if err := s.loadAssets(); err != nil {
		s.release()
		return nil, err
	}
	go s.seed(context.Background())

	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           compress(s.router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	if !s.config.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(s.logger.Component("http")))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.config.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.config.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.config.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.config.RateLimit.RequestsPerSecond,
			Burst:             s.config.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(s.bridge, s.metrics, s.logger.Component("api"))
	handlers.Register(router)

	router.GET("/ws", s.hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return router
}

// compress gzips responses for clients that accept it. WebSocket upgrades
// bypass the wrapper since they hijack the connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// loadAssets reads the configured theme and snippet files. A configured
// file that cannot be read or parsed is a startup error.
func (s *Server) loadAssets() error {
	if path := s.config.Assets.ThemesFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read themes file: %w", err)
		}
		n, err := s.bridge.Themes().LoadYAML(data)
		if err != nil {
			return fmt.Errorf("failed to load themes from %s: %w", path, err)
		}
		s.logger.Info("Loaded themes", zap.String("file", path), zap.Int("count", n))
	}

	if path := s.config.Assets.SnippetsFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read snippets file: %w", err)
		}
		n, err := s.bridge.Completion().LoadSnippetsTOML(data)
		if err != nil {
			return fmt.Errorf("failed to load snippets from %s: %w", path, err)
		}
		s.logger.Info("Loaded snippets", zap.String("file", path), zap.Int("count", n))
	}
	return nil
}

// seed fills the VFS and completion store in the background. Failures are
// logged; the editor works without either.
func (s *Server) seed(ctx context.Context) {
	defer close(s.seeding)

	if dir := s.config.VFS.SeedDir; dir != "" {
		n, err := vfs.LoadDir(ctx, s.bridge.FS(), dir, vfs.LoadOptions{
			Patterns:    s.config.VFS.Patterns,
			MaxFileSize: s.config.VFS.MaxFileSize,
		})
		if err != nil {
			s.logger.Warn("Failed to seed files", zap.String("dir", dir), zap.Error(err))
		} else {
			s.logger.Info("Seeded files", zap.String("dir", dir), zap.Int("count", n))
		}
	}

	if url := s.config.Completion.FeedURL; url != "" {
		n := s.bridge.ExtendAutocompleteWithURL(ctx, url)
		s.logger.Info("Extended completion from feed", zap.String("url", url), zap.Int("added", n))
	}
}

// WaitSeeded blocks until background seeding has finished or ctx is done
func (s *Server) WaitSeeded(ctx context.Context) error {
	select {
	case <-s.seeding:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler returns the root handler, including compression
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Bridge exposes the editor bridge
func (s *Server) Bridge() *bridge.Bridge {
	return s.bridge
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones, then
// releases the editor state
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown did not complete", zap.Error(err))
	}
	s.release()
	return err
}

func (s *Server) release() {
	s.hub.Close()
	s.bridge.Close()
	s.sessions.Close()
	s.metrics.Close()
	_ = s.logger.Sync()
}
