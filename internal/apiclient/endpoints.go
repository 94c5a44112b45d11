package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/templui/securefiles/internal/ctxkeys"
	"github.com/templui/securefiles/internal/model"
	"golang.org/x/oauth2"
)

// Register creates an account. The response body is ignored.
func (c *Client) Register(ctx context.Context, creds model.Credentials) error {
	return c.do(ctx, call{
		op:       "auth.register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     creds,
		fallback: "Registration failed",
	}, nil)
}

// Login exchanges email and password for a token pair.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.TokenPair, error) {
	var pair model.TokenPair
	err := c.do(ctx, call{
		op:       "auth.login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     creds.LoginPayload(),
		fallback: "Login failed",
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh exchanges a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	var pair model.TokenPair
	err := c.do(ctx, call{
		op:       "auth.refresh",
		method:   http.MethodPost,
		path:     "/auth/refresh",
		body:     map[string]string{"refreshToken": refreshToken},
		fallback: "Token refresh failed",
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Upload sends files as one multipart request. folder is omitted when empty.
func (c *Client) Upload(ctx context.Context, token *oauth2.Token, files []model.UploadFile, folder string) error {
	body := &Multipart{FileField: "files", Files: files}
	if folder != "" {
		body.Fields = map[string]string{"folder": folder}
	}

	return c.do(ctx, call{
		op:       "files.upload",
		method:   http.MethodPost,
		path:     "/files/upload",
		body:     body,
		token:    token,
		fallback: "Upload failed",
	}, nil)
}

// ListFiles fetches the file records matching filter. A missing, null or
// malformed "files" collection yields an empty list rather than an error.
func (c *Client) ListFiles(ctx context.Context, token *oauth2.Token, filter model.FileFilter) ([]model.FileRecord, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		op:       "files.list",
		method:   http.MethodGet,
		path:     "/files",
		query:    filter.Query(),
		token:    token,
		fallback: "Failed to fetch files",
	}, &raw)
	if err != nil {
		return nil, err
	}

	records, err := decodeListing(raw)
	if err != nil {
		// Fail open: a broken listing is shown as empty, but stays visible in logs.
		slog.Warn("malformed file listing, treating as empty", "error", err)
		return []model.FileRecord{}, nil
	}
	return records, nil
}

func decodeListing(raw json.RawMessage) ([]model.FileRecord, error) {
	records := []model.FileRecord{}
	if len(raw) == 0 {
		return records, nil
	}

	var payload struct {
		Files json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Files) == 0 || string(payload.Files) == "null" {
		return records, nil
	}
	if err := json.Unmarshal(payload.Files, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DownloadLink asks the server for a download URL for one file.
func (c *Client) DownloadLink(ctx context.Context, token *oauth2.Token, fileID string) (*model.DownloadLink, error) {
	var link model.DownloadLink
	err := c.do(ctx, call{
		op:       "files.download",
		method:   http.MethodGet,
		path:     "/files/" + url.PathEscape(fileID) + "/download",
		token:    token,
		fallback: "Failed to get download link",
	}, &link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteFile removes one file. The response body is ignored.
func (c *Client) DeleteFile(ctx context.Context, token *oauth2.Token, fileID string) error {
	return c.do(ctx, call{
		op:       "files.delete",
		method:   http.MethodDelete,
		path:     "/files/" + url.PathEscape(fileID),
		token:    token,
		fallback: "Failed to delete file",
	}, nil)
}

// Fetch opens the content behind a resolved download URL. No bearer token is
// sent: signed URLs authorize themselves and may point at another host.
// Relative URLs are resolved against the API base URL. The caller closes the
// reader.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	target, err := c.resolve(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid download URL: %w", err)
	}

	ctx = ctxkeys.WithOperation(ctx, ctxkeys.OperationFetch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Op: ctxkeys.OperationFetch, URL: redact(req.URL), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, 0, readHTTPError(resp, "Failed to download file")
	}

	return resp.Body, resp.ContentLength, nil
}

func (c *Client) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
