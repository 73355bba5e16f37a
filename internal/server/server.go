package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"

	"zennovel/internal/api"
	"zennovel/internal/config"
	"zennovel/internal/library"
	"zennovel/internal/logging"
)

// StatusFunc reports daemon runtime information for the status endpoint.
type StatusFunc func(ctx context.Context) Status

// Status is the payload of the status endpoint.
type Status struct {
	Running      bool   `json:"running"`
	DatabasePath string `json:"database_path"`
	Novels       int    `json:"novels"`
	Version      string `json:"version"`
}

// Server serves the HTTP API.
type Server struct {
	bind   string
	logger *slog.Logger
	status StatusFunc

	novels     *api.NovelService
	chapters   *api.ChapterService
	engagement *api.EngagementService
	ingestSvc  *api.IngestService

	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
}

// New builds a Server over the given store. status may be nil, in which case
// the status endpoint reports only that the server is up.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger, status StatusFunc) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("server requires config and store")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("server requires a bind address")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logging.WithComponent(logger, "api")

	srv := &Server{
		bind:       bind,
		logger:     logger,
		status:     status,
		novels:     api.NewNovelService(store),
		chapters:   api.NewChapterService(store),
		engagement: api.NewEngagementService(store),
		ingestSvc:  api.NewIngestService(store, cfg, logger),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.CustomRecovery(recoveryLogger(logger)))
	engine.Use(requestLogger(logger))
	engine.Use(sessionMiddleware())
	srv.engine = engine
	srv.registerRoutes()

	srv.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *Server) registerRoutes() {
	root := s.engine.Group("/api")

	root.GET("/status", s.handleStatus)
	root.GET("/home", s.handleHome)
	root.GET("/genres", s.handleGenres)
	root.GET("/novels", s.handleListNovels)
	root.GET("/novels/:id", s.handleNovelDetail)
	root.POST("/novels/:id/rate", s.handleRateNovel)
	root.GET("/chapters/:id", s.handleChapterDetail)
	root.GET("/tags/:slug", s.handleNovelsByTag)

	root.GET("/bookmarks", s.handleBookmarks)
	root.POST("/bookmarks/toggle/:novelID", s.handleToggleBookmark)
	root.POST("/progress/:novelID/:chapterID", s.handleUpdateProgress)
	root.GET("/history", s.handleHistory)

	root.GET("/comments/:chapterID", s.handleListComments)
	root.POST("/comments/:chapterID", s.handleAddComment)
	root.DELETE("/comments/delete/:commentID", s.handleDeleteComment)

	admin := root.Group("/admin")
	admin.POST("/novels", s.handleImportNovel)
	admin.POST("/novels/:id/reingest", s.handleReingestNovel)
	admin.DELETE("/novels/:id", s.handleDeleteNovel)
}

// Start binds the listener and serves in the background until ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", "address", listener.Addr().String())
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler exposes the routing engine for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
