package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/templui/securefiles/internal/model"
	"golang.org/x/oauth2"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	c := New(Config{BaseURL: ts.URL + "/api/"})
	return c, ts
}

func bearer(token string) *oauth2.Token {
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}

func TestRequest_JSONBodyAndBearer(t *testing.T) {
	var gotAuth, gotType, gotPath string
	var gotBody map[string]string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Request(context.Background(), http.MethodPost, "/things", map[string]string{"name": "x"}, bearer("AT"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer AT" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotType)
	}
	if gotPath != "/api/things" {
		t.Errorf("expected /api/things, got %s", gotPath)
	}
	if gotBody["name"] != "x" {
		t.Errorf("unexpected body %v", gotBody)
	}
	if !out.OK {
		t.Error("expected response to be decoded")
	}
}

func TestRequest_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var out map[string]any
	if err := c.Request(context.Background(), http.MethodGet, "/ping", nil, nil, &out); err != nil {
		t.Fatalf("empty 2xx body should not fail: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestRequest_ErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Email already registered"}`, "Email already registered"},
		{"error field", http.StatusConflict, `{"error":"duplicate"}`, "duplicate"},
		{"message wins over error", http.StatusBadRequest, `{"message":"m","error":"e"}`, "m"},
		{"non-string message", http.StatusBadRequest, `{"message":{"code":1}}`, "Bad Request"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"empty body", http.StatusInternalServerError, ``, "Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil, nil)
			he, ok := AsHTTPError(err)
			if !ok {
				t.Fatalf("expected HTTPError, got %T: %v", err, err)
			}
			if he.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, he.Status)
			}
			if he.Message != tc.want {
				t.Errorf("expected message %q, got %q", tc.want, he.Message)
			}
		})
	}
}

func TestRequest_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(Config{BaseURL: url})
	err := c.Request(context.Background(), http.MethodGet, "/files", nil, nil, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %T: %v", err, err)
	}
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.URL != url+"/files" {
		t.Errorf("unexpected network error detail: %+v", ne)
	}
	if _, ok := AsHTTPError(err); ok {
		t.Error("network error must not be an HTTPError")
	}
}

func TestRequest_SingleAttempt(t *testing.T) {
	attempts := 0
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_ = c.Request(context.Background(), http.MethodGet, "/files", nil, nil, nil)
	if attempts != 1 {
		t.Errorf("expected exactly one attempt, got %d", attempts)
	}
}

func TestHTTPError_Unauthorized(t *testing.T) {
	for status, want := range map[int]bool{401: true, 403: true, 400: false, 404: false, 500: false} {
		if got := (&HTTPError{Status: status}).Unauthorized(); got != want {
			t.Errorf("status %d: Unauthorized() = %v", status, got)
		}
	}
	if !IsUnauthorized(errors.Join(errors.New("wrapped"), &HTTPError{Status: 401})) {
		t.Error("expected wrapped 401 to be detected")
	}
}

func TestMultipart_Upload(t *testing.T) {
	type part struct {
		field, filename, contentType, content string
	}
	var parts []part
	var folder, gotAuth string

	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/files/upload" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		mr, err := r.MultipartReader()
		if err != nil {
			t.Errorf("expected multipart body: %v", err)
			return
		}
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("next part: %v", err)
				return
			}
			data, _ := io.ReadAll(p)
			if p.FileName() == "" {
				if p.FormName() == "folder" {
					folder = string(data)
				}
				continue
			}
			parts = append(parts, part{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(data)})
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"uploaded"}`))
	}))
	defer ts.Close()

	files := []model.UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Content: strings.NewReader("alpha")},
		{Name: `we"ird.bin`, Content: strings.NewReader("beta")},
	}
	if err := c.Upload(context.Background(), bearer("AT"), files, "reports"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer AT" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if folder != "reports" {
		t.Errorf("expected folder field, got %q", folder)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 file parts, got %d", len(parts))
	}
	if parts[0] != (part{"files", "a.txt", "text/plain", "alpha"}) {
		t.Errorf("unexpected first part %+v", parts[0])
	}
	if parts[1].filename != `we"ird.bin` || parts[1].contentType != "application/octet-stream" {
		t.Errorf("unexpected second part %+v", parts[1])
	}
}

func TestUpload_NoFolderField(t *testing.T) {
	var sawFolder bool
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, sawFolder = r.MultipartForm.Value["folder"]
	}))
	defer ts.Close()

	files := []model.UploadFile{{Name: "a.txt", Content: strings.NewReader("x")}}
	if err := c.Upload(context.Background(), bearer("AT"), files, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawFolder {
		t.Error("empty folder must not be sent")
	}
}

func TestUpload_ServerMessage(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"message":"File too large"}`))
	}))
	defer ts.Close()

	files := []model.UploadFile{{Name: "big.iso", Content: strings.NewReader("x")}}
	err := c.Upload(context.Background(), bearer("AT"), files, "")
	he, ok := AsHTTPError(err)
	if !ok || he.Message != "File too large" {
		t.Fatalf("expected server message, got %v", err)
	}
}
