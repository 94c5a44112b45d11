package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrUpload           = errors.New("upload failed")
	ErrDownload         = errors.New("download failed")
	ErrDelete           = errors.New("delete failed")
	ErrList             = errors.New("failed to fetch files")
	ErrNoDownloadURL    = errors.New("no download URL received")
)

// SessionError reports that the server rejected the stored session, which
// has been cleared. The user must log in again.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session expired, please log in again: %v", e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
