package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"tallychart/internal/logger"
)

// GCSClient handles Google Cloud Storage operations
type GCSClient struct {
	client *storage.Client
	bucket string
	log    *logger.Logger
}

// NewGCSClient creates a new GCS client
func NewGCSClient(ctx context.Context, bucketName string) (*GCSClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client: client,
		bucket: bucketName,
		log:    logger.GetGlobalLogger().WithComponent("gcs"),
	}, nil
}

// Close closes the GCS client
func (g *GCSClient) Close() error {
	return g.client.Close()
}

// StoreFile uploads a file into the report folder for timestamp
func (g *GCSClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) (string, error) {
	objectPath, err := reportFilePath(filename, timestamp)
	if err != nil {
		return "", err
	}

	g.log.Debug("Storing file to GCS", map[string]interface{}{
		"bucket": g.bucket,
		"object": objectPath,
	})

	writer := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = GetContentType(filename)
	writer.CacheControl = "public, max-age=3600"
	writer.Metadata = map[string]string{
		"generated-at": timestamp.Format(time.RFC3339),
		"filename":     filename,
	}

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to write file to GCS: %w", err)
	}

	// Close finalizes the upload
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS file upload: %w", err)
	}

	g.log.Info("File stored", map[string]interface{}{
		"object": objectPath,
		"bytes":  len(fileData),
	})
	return objectPath, nil
}

// GetFile retrieves any file from GCS
func (g *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	objectPath, err := CleanPath(filePath)
	if err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(g.bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader for file %s: %w", objectPath, err)
	}
	defer reader.Close()

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", objectPath, err)
	}

	return fileData, nil
}

// FileExists checks whether the object exists
func (g *GCSClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	objectPath, err := CleanPath(filePath)
	if err != nil {
		return false, err
	}

	_, err = g.client.Bucket(g.bucket).Object(objectPath).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get attributes for %s: %w", objectPath, err)
	}
	return true, nil
}

// ListReports lists report pages in the bucket, newest first
func (g *GCSClient) ListReports(ctx context.Context, limit int) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{})

	var reportPaths []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		if strings.HasSuffix(attrs.Name, "/"+ReportPageName) {
			reportPaths = append(reportPaths, attrs.Name)
		}
	}

	return newestFirst(reportPaths, limit), nil
}
