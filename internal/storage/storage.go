package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"

	cfg "github.com/templui/securefiles/internal/config"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage is a destination for downloaded files.
type Storage interface {
	// Save stores the content at the given path, replacing any existing file
	Save(ctx context.Context, path string, file io.Reader) error

	// Delete removes a file at the given path
	Delete(ctx context.Context, path string) error

	// URL returns where the stored file can be found
	URL(path string) string
}

// New picks the S3 sink when a bucket is configured, the local directory otherwise.
func New(ctx context.Context, c *cfg.Config) (Storage, error) {
	if c.DownloadS3Bucket == "" {
		slog.Debug("using local download directory", "dir", c.DownloadDir)
		return NewLocalStorage(c.DownloadDir)
	}

	slog.Info("initializing S3 download storage",
		"bucket", c.DownloadS3Bucket,
		"region", c.DownloadS3Region,
		"endpoint", c.DownloadS3Endpoint,
	)
	return NewS3Storage(ctx, S3Config{
		Region:        c.DownloadS3Region,
		Bucket:        c.DownloadS3Bucket,
		AccessKey:     c.DownloadS3AccessKey,
		SecretKey:     c.DownloadS3SecretKey,
		Endpoint:      c.DownloadS3Endpoint,
		PresignExpiry: c.DownloadS3PresignExpiry,
	})
}
