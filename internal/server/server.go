// Package server exposes the ingestion pipeline over HTTP: process files
// into the vector store, delete them, and clean up records for files that
// no longer exist.
package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	darkvec "github.com/darkvec/darkvec"
	"github.com/darkvec/darkvec/ingest"
)

// Ingestor processes one file into the store.
type Ingestor interface {
	IngestFile(ctx context.Context, path string) (ingest.IngestResult, error)
}

// Cleaner removes store records for files missing on disk.
type Cleaner interface {
	Clean(ctx context.Context) ([]string, error)
}

// Config holds server configuration.
type Config struct {
	Addr string
	// DataDir is the knowledge base root; request paths resolve under it.
	DataDir string
	// Concurrency bounds how many files are ingested in parallel.
	Concurrency int
}

// Server wires the ingestion pipeline behind an HTTP API.
type Server struct {
	echo     *echo.Echo
	ingestor Ingestor
	cleaner  Cleaner
	store    darkvec.VectorStore
	cfg      Config
	logger   *slog.Logger
}

// New creates a Server. Files are processed concurrently up to
// cfg.Concurrency at a time (minimum 1).
func New(ingestor Ingestor, cleaner Cleaner, store darkvec.VectorStore, cfg Config, logger *slog.Logger) *Server {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:     e,
		ingestor: ingestor,
		cleaner:  cleaner,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleStatus)
	s.echo.POST("/store/process_all", s.handleProcessAll)
	s.echo.POST("/store/process_files", s.handleProcessFiles)
	s.echo.POST("/store/delete_files", s.handleDeleteFiles)
	s.echo.POST("/store/cleanup", s.handleCleanup)
}

// FilesRequest is the request body for the process_files and delete_files
// endpoints. Paths are relative to the data directory.
type FilesRequest struct {
	FilePaths []string `json:"file_paths"`
}

// ProcessResponse reports which files resulted in new store records.
type ProcessResponse struct {
	Message          string   `json:"message"`
	ProcessedFiles   []string `json:"processed_files"`
	UnprocessedFiles []string `json:"unprocessed_files"`
}

// ErrorResponse carries a pipeline failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.String(http.StatusOK, "darkvec is running and ready to accept requests")
}

func (s *Server) handleProcessAll(c echo.Context) error {
	paths, err := s.listKnowledgeFiles()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return s.processPaths(c, paths)
}

func (s *Server) handleProcessFiles(c echo.Context) error {
	var req FilesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	paths := make([]string, len(req.FilePaths))
	for i, p := range req.FilePaths {
		paths[i] = filepath.Join(s.cfg.DataDir, p)
	}
	return s.processPaths(c, paths)
}

func (s *Server) handleDeleteFiles(c echo.Context) error {
	var req FilesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	for _, p := range req.FilePaths {
		path := filepath.Join(s.cfg.DataDir, p)
		if err := s.store.DeleteByPath(ctx, path); err != nil {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		s.logger.Info("deleted file records", slog.String("path", path))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "success"})
}

func (s *Server) handleCleanup(c echo.Context) error {
	removed, err := s.cleaner.Clean(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":       "success",
		"removed_files": removed,
	})
}

// processPaths ingests paths with bounded concurrency. Files that need no
// new records (unchanged, empty, unsupported type) are reported as
// unprocessed; any other failure aborts the batch.
func (s *Server) processPaths(c echo.Context, paths []string) error {
	var (
		mu          sync.Mutex
		processed   []string
		unprocessed []string
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.SetLimit(s.cfg.Concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			res, err := s.ingestor.IngestFile(ctx, path)

			var unsupported *darkvec.ErrUnsupportedFileType
			if errors.As(err, &unsupported) {
				s.logger.Warn("skipping unsupported file",
					slog.String("path", path),
					slog.String("error", err.Error()))
				err = nil
			}
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if res.Processed {
				processed = append(processed, path)
			} else {
				unprocessed = append(unprocessed, path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	sort.Strings(processed)
	sort.Strings(unprocessed)
	return c.JSON(http.StatusOK, ProcessResponse{
		Message:          "success",
		ProcessedFiles:   processed,
		UnprocessedFiles: unprocessed,
	})
}

// listKnowledgeFiles returns every regular file under the data directory.
func (s *Server) listKnowledgeFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.cfg.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Start begins serving on the configured address, blocking until the
// server stops.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.cfg.Addr))
	return s.echo.Start(s.cfg.Addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
