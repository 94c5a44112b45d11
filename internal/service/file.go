package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/oauth2"

	"github.com/templui/securefiles/internal/apiclient"
	"github.com/templui/securefiles/internal/model"
	"github.com/templui/securefiles/internal/storage"
	"github.com/templui/securefiles/internal/validation"
)

// FileService is the client-side view of the user's files. The snapshot is
// always whatever the server last returned; mutations are followed by a
// fresh listing rather than local edits.
type FileService struct {
	client        *apiclient.Client
	auth          *AuthService
	maxUploadSize int64

	mu        sync.RWMutex
	issued    uint64           // sequence of the most recent List call
	requested model.FileFilter // filter of the most recent List call
	applied   uint64           // sequence of the listing held in files
	files     []model.FileRecord
	filter    model.FileFilter // filter files was fetched with
}

func NewFileService(client *apiclient.Client, auth *AuthService, maxUploadSize int64) *FileService {
	return &FileService{
		client:        client,
		auth:          auth,
		maxUploadSize: maxUploadSize,
	}
}

func (s *FileService) token() (*oauth2.Token, error) {
	sess := s.auth.Session()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return sess.Token(), nil
}

// fail wraps err with the operation sentinel. A rejected session is
// invalidated and the snapshot dropped.
func (s *FileService) fail(ctx context.Context, op error, err error) error {
	if apiclient.IsUnauthorized(err) {
		err = s.auth.Invalidate(ctx, err)
		s.reset()
	}
	return fmt.Errorf("%w: %w", op, err)
}

func (s *FileService) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
	s.filter = model.FileFilter{}
	s.applied = s.issued
}

// List fetches the files matching filter. The snapshot only moves forward:
// a listing that returns after a newer one has been applied is handed back
// to its caller but not stored. Files and Filter always describe the same
// listing.
func (s *FileService) List(ctx context.Context, filter model.FileFilter) ([]model.FileRecord, error) {
	token, err := s.token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.requested = filter
	s.mu.Unlock()

	files, err := s.client.ListFiles(ctx, token, filter)
	if err != nil {
		return nil, s.fail(ctx, ErrList, err)
	}

	s.mu.Lock()
	if seq > s.applied {
		s.applied = seq
		s.files = files
		s.filter = filter
	} else {
		slog.Debug("discarding stale file listing", "seq", seq, "applied", s.applied)
	}
	s.mu.Unlock()

	return files, nil
}

// Refresh re-runs List with the most recently requested filter.
func (s *FileService) Refresh(ctx context.Context) ([]model.FileRecord, error) {
	s.mu.RLock()
	filter := s.requested
	s.mu.RUnlock()
	return s.List(ctx, filter)
}

// Files returns the current snapshot. Empty without a session.
func (s *FileService) Files() []model.FileRecord {
	if s.auth.State() != Authenticated {
		return []model.FileRecord{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FileRecord, len(s.files))
	copy(out, s.files)
	return out
}

// Filter is the filter the current snapshot was fetched with.
func (s *FileService) Filter() model.FileFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Upload sends every file in one multipart request. An empty selection is
// rejected locally without contacting the server.
func (s *FileService) Upload(ctx context.Context, files []model.UploadFile, folder string) error {
	if err := validation.ValidateUpload(files, s.maxUploadSize); err != nil {
		return err
	}

	token, err := s.token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}

	if err := s.client.Upload(ctx, token, files, folder); err != nil {
		return s.fail(ctx, ErrUpload, err)
	}

	slog.Info("uploaded files", "count", len(files), "folder", folder)
	return nil
}

// Download resolves the link the file can be fetched from.
func (s *FileService) Download(ctx context.Context, fileID string) (string, error) {
	token, err := s.token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}

	link, err := s.client.DownloadLink(ctx, token, fileID)
	if err != nil {
		return "", s.fail(ctx, ErrDownload, err)
	}

	url, ok := link.Resolve()
	if !ok {
		return "", fmt.Errorf("%w: %w", ErrDownload, ErrNoDownloadURL)
	}
	return url, nil
}

// Fetch downloads the file content into sink under name and returns the
// stored location. An empty name falls back to the listed filename, then
// to the file ID.
func (s *FileService) Fetch(ctx context.Context, fileID string, sink storage.Storage, name string) (string, error) {
	url, err := s.Download(ctx, fileID)
	if err != nil {
		return "", err
	}

	if name == "" {
		name = s.filename(fileID)
	}

	body, size, err := s.client.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer func() { _ = body.Close() }()

	if err := sink.Save(ctx, name, body); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}

	if size >= 0 {
		slog.Debug("downloaded file", "id", fileID, "name", name, "size", humanize.IBytes(uint64(size)))
	}
	return sink.URL(name), nil
}

func (s *FileService) filename(fileID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.ID == fileID && f.Filename != "" {
			return f.Filename
		}
	}
	return fileID
}

func (s *FileService) Delete(ctx context.Context, fileID string) error {
	token, err := s.token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	if err := s.client.DeleteFile(ctx, token, fileID); err != nil {
		return s.fail(ctx, ErrDelete, err)
	}

	slog.Info("deleted file", "id", fileID)
	return nil
}
