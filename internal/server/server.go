package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"tallychart/internal/charts"
	"tallychart/internal/config"
	"tallychart/internal/fetchers"
	"tallychart/internal/logger"
	"tallychart/internal/mocks"
	"tallychart/internal/reports"
	"tallychart/internal/storage"
)

// Server serves the tally chart page, its PNG rendering and stored reports
type Server struct {
	Config    *config.Config
	Provider  fetchers.Provider
	Generator *reports.Generator
	Storage   storage.StorageClient

	log           *logger.Logger
	generateMutex sync.Mutex
}

// NewDatasetProvider picks the dataset provider for cfg: the mock service in
// mockup mode, otherwise one chosen by the dataset source.
func NewDatasetProvider(cfg *config.Config) (fetchers.Provider, error) {
	if cfg.MockupMode {
		dir := cfg.MockDataDir
		if dir != "" {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve MOCK_DATA_DIR %s: %w", dir, err)
			}
			dir = abs
		}
		svc := mocks.NewMockService(dir)
		source := svc.DataDir()
		if source == "" {
			source = "built-in sample"
		}
		logger.Info("Mockup mode enabled", map[string]interface{}{"mock_data": source})
		return svc, nil
	}
	p, err := fetchers.NewProvider(cfg.DatasetSource, cfg.DatasetSheet)
	if err != nil {
		return nil, err
	}
	if hp, ok := p.(*fetchers.HTTPProvider); ok && cfg.HTTPTimeout > 0 {
		hp.SetTimeout(cfg.HTTPTimeout)
	}
	return p, nil
}

// ReportOptions maps chart settings from cfg
func ReportOptions(cfg *config.Config) reports.Options {
	return reports.Options{
		Container:      cfg.ContainerID,
		Viewport:       charts.Viewport{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
		AssetsHost:     cfg.EChartsAssetsHost,
		ResizeDebounce: cfg.ResizeDebounce,
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, provider fetchers.Provider, store storage.StorageClient) *Server {
	log := logger.GetGlobalLogger().WithComponent("server")
	log.Info("Server configured", map[string]interface{}{
		"provider":    provider.Name(),
		"output_mode": cfg.OutputMode,
		"backend":     cfg.Backend,
	})

	return &Server{
		Config:    cfg,
		Provider:  provider,
		Generator: reports.NewGenerator(provider, ReportOptions(cfg), log),
		Storage:   store,
		log:       log,
	}
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/chart.png", s.HandleChartImage)
	mux.HandleFunc("/generate", s.HandleGenerate)
	mux.HandleFunc("/reports", s.HandleListReports)
	mux.HandleFunc("/files/", s.HandleFileProxy)

	// Handle root path last (catch-all)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// HTTPServer wraps the routes with the service timeouts
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.Config.Port,
		Handler:      s.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts it down
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", map[string]interface{}{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}
