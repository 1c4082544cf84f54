package storage

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// ReportPageName is the page every report folder is listed by
const ReportPageName = "index.html"

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// GenerateReportFolderPath generates a consistent folder path for reports
// Format: YYYY/MM/DD/IssueChart-YYYY-MM-DD-HH-MM-SS
func GenerateReportFolderPath(timestamp time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d/IssueChart-%04d-%02d-%02d-%02d-%02d-%02d",
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Hour(), timestamp.Minute(), timestamp.Second())
}

// CleanPath normalizes a slash-separated path relative to the storage root
// and rejects absolute paths and parent references.
func CleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

// reportFilePath joins a bare file name onto the report folder for timestamp
func reportFilePath(filename string, timestamp time.Time) (string, error) {
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, "/\\") {
		return "", fmt.Errorf("%w: file name %q", ErrInvalidPath, filename)
	}
	return GenerateReportFolderPath(timestamp) + "/" + filename, nil
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "text/javascript"
	case ".md":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// newestFirst sorts report paths by folder timestamp, newest first, and applies limit
func newestFirst(reportPaths []string, limit int) []string {
	sort.Sort(sort.Reverse(sort.StringSlice(reportPaths)))
	if limit > 0 && limit < len(reportPaths) {
		reportPaths = reportPaths[:limit]
	}
	return reportPaths
}
