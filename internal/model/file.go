package model

import (
	"io"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypePDF      FileType = "pdf"
	FileTypeDoc      FileType = "doc"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeArchive  FileType = "archive"
	FileTypeOther    FileType = "other"
)

// FileTypes lists the values the server is known to filter on.
var FileTypes = []FileType{
	FileTypeImage,
	FileTypePDF,
	FileTypeDoc,
	FileTypeDocument,
	FileTypeVideo,
	FileTypeAudio,
	FileTypeArchive,
	FileTypeOther,
}

// ParseFileType matches s against FileTypes, ignoring case and surrounding
// space.
func ParseFileType(s string) (FileType, bool) {
	t := FileType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FileTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// FileTypeNames is FileTypes as a comma-separated list for help text.
func FileTypeNames() string {
	names := make([]string, len(FileTypes))
	for i, t := range FileTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Label is the display name of the type ("pdf" -> "PDF", "image" -> "Image").
func (t FileType) Label() string {
	switch t {
	case "":
		return "Other"
	case FileTypePDF:
		return "PDF"
	}
	return cases.Title(language.English).String(string(t))
}

// FileRecord is a server-owned snapshot of one stored file.
// The client never mutates it; changes happen server-side and are re-fetched.
type FileRecord struct {
	ID          string    `json:"_id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	FileType    FileType  `json:"fileType"`
	Folder      string    `json:"folder"`
	OwnerID     string    `json:"user"`
	UploadedAt  time.Time `json:"uploadTime"`
}

// FileFilter narrows a listing. Empty fields are not sent.
type FileFilter struct {
	Folder   string
	FileType string
}

func (f FileFilter) Query() url.Values {
	q := url.Values{}
	if f.Folder != "" {
		q.Set("folder", f.Folder)
	}
	if f.FileType != "" {
		q.Set("fileType", f.FileType)
	}
	return q
}

// DownloadLink is the response of GET /files/{id}/download. Servers have
// used three different field names for the link over time.
type DownloadLink struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	SignedURL   string `json:"signedUrl"`
}

// Resolve picks url, then downloadUrl, then signedUrl.
func (d DownloadLink) Resolve() (string, bool) {
	switch {
	case d.URL != "":
		return d.URL, true
	case d.DownloadURL != "":
		return d.DownloadURL, true
	case d.SignedURL != "":
		return d.SignedURL, true
	}
	return "", false
}

// UploadFile is one local blob to send in a multipart upload.
type UploadFile struct {
	Name        string
	Size        int64 // -1 if unknown
	ContentType string
	Content     io.Reader
}
