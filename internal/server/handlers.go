package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tallychart/internal/charts"
	"tallychart/internal/config"
	"tallychart/internal/models"
	"tallychart/internal/storage"
)

// maxImageSide bounds on-demand PNG renders
const maxImageSide = 4096

// HandleRoot renders the tally page live from the dataset provider
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, err := s.Generator.RenderPage(r.Context(), "/chart.png")
	if err != nil {
		s.renderFailed(w, "page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page.HTML))
}

// HandleChartImage renders the chart as PNG, optionally relayouted to the
// width and height query parameters
func (s *Server) HandleChartImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vp, err := s.viewportFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := s.Generator.RenderImage(r.Context(), vp)
	if err != nil {
		s.renderFailed(w, "image", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(img)
}

// viewportFromQuery returns nil when neither dimension is given; a missing
// dimension falls back to the configured size
func (s *Server) viewportFromQuery(r *http.Request) (*charts.Viewport, error) {
	q := r.URL.Query()
	ws, hs := q.Get("width"), q.Get("height")
	if ws == "" && hs == "" {
		return nil, nil
	}

	vp := charts.Viewport{Width: s.Config.ChartWidth, Height: s.Config.ChartHeight}
	parse := func(name, v string, dst *int) error {
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxImageSide {
			return errors.New("invalid " + name + ": must be an integer between 1 and " + strconv.Itoa(maxImageSide))
		}
		*dst = n
		return nil
	}
	if err := parse("width", ws, &vp.Width); err != nil {
		return nil, err
	}
	if err := parse("height", hs, &vp.Height); err != nil {
		return nil, err
	}
	return &vp, nil
}

// renderFailed maps render errors onto status codes: bad data is the
// source's fault, everything else is ours
func (s *Server) renderFailed(w http.ResponseWriter, what string, err error) {
	s.log.Error("Chart "+what+" render failed", err)

	status := http.StatusInternalServerError
	var ve *models.ValidationError
	if errors.As(err, &ve) || errors.Is(err, models.ErrEmptyDataset) {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]interface{}{
		"error":  "Chart " + what + " render failed",
		"detail": err.Error(),
	})
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.GetVersion(),
		"checks": map[string]string{
			"provider": s.Provider.Name(),
			"backend":  s.Config.Backend,
			"storage":  s.Config.OutputMode,
		},
	})
}

// HandleGenerate renders the page and image and stores them (HTTP handler)
func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Try to acquire the mutex - if already locked, return error immediately
	if !s.generateMutex.TryLock() {
		s.log.Warn("Report generation already in progress, rejecting new request")
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   "Report generation already in progress",
			"message": "Another report generation is currently running. Please wait for it to complete before starting a new one.",
			"status":  "conflict",
		})
		return
	}
	defer s.generateMutex.Unlock()

	result, err := s.Generator.Generate(r.Context(), s.Storage)
	if err != nil {
		s.renderFailed(w, "report", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleFileProxy serves stored files from local storage or GCS
func (s *Server) HandleFileProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filePath := strings.TrimPrefix(r.URL.Path, "/files/")
	if filePath == "" {
		http.Error(w, "File path required", http.StatusBadRequest)
		return
	}

	fileData, err := s.Storage.GetFile(r.Context(), filePath)
	if errors.Is(err, storage.ErrInvalidPath) {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Warn("Failed to get file from storage", map[string]interface{}{
			"path":  filePath,
			"error": err.Error(),
		})
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", storage.GetContentType(filePath))
	w.Write(fileData)
}

// HandleListReports lists recent reports
func (s *Server) HandleListReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Get limit from query parameter (default 10, capped at 100)
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
		if limit > 100 {
			limit = 100
		}
	}

	reportPaths, err := s.Storage.ListReports(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to list reports", err)
		http.Error(w, "Failed to list reports: "+err.Error(), http.StatusInternalServerError)
		return
	}

	urls := make([]string, 0, len(reportPaths))
	for _, p := range reportPaths {
		urls = append(urls, "/files/"+p)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports":   reportPaths,
		"urls":      urls,
		"count":     len(reportPaths),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
