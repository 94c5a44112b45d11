package validation

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/templui/securefiles/internal/model"
)

// ValidationError is a local rejection raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidateUpload checks an upload selection. maxSize <= 0 disables the
// size check. Files with an unknown size (-1) pass the size check.
func ValidateUpload(files []model.UploadFile, maxSize int64) error {
	if len(files) == 0 {
		return &ValidationError{Field: "files", Message: "Please select at least one file"}
	}

	for i, f := range files {
		if strings.TrimSpace(f.Name) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("files[%d]", i),
				Message: "file name is required",
			}
		}
		if f.Content == nil {
			return &ValidationError{Field: f.Name, Message: "file has no content"}
		}
		if maxSize > 0 && f.Size > maxSize {
			return &ValidationError{
				Field:   f.Name,
				Message: fmt.Sprintf("file too large: maximum size is %s", humanize.IBytes(uint64(maxSize))),
			}
		}
	}

	return nil
}

// DetectContentType sniffs the first 512 bytes of r and rewinds it.
// Falls back to the extension of name when the content is not recognised,
// then to application/octet-stream.
func DetectContentType(name string, r io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, "text/plain") {
		return detected, nil
	}

	// Plain text and unknown binaries are better described by the extension
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt, nil
	}

	return detected, nil
}
