package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/templui/securefiles/internal/model"
)

func TestUpload_UnbuildableRequestStartsNoWriter(t *testing.T) {
	c := New(Config{BaseURL: "http://bad host"})
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		files := []model.UploadFile{{Name: "a.txt", Size: 5, Content: strings.NewReader("hello")}}
		err := c.Upload(context.Background(), bearer("AT"), files, "docs")
		if err == nil || !strings.Contains(err.Error(), "build files.upload request") {
			t.Fatalf("expected request build error, got %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if after := runtime.NumGoroutine(); after > before {
		t.Errorf("goroutines grew from %d to %d", before, after)
	}
}

type brokenFile struct{}

func (brokenFile) Read([]byte) (int, error) { return 0, errors.New("disk unplugged") }

func TestUpload_LocalReadFailureIsNotNetworkError(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	files := []model.UploadFile{{Name: "a.txt", Size: -1, Content: brokenFile{}}}
	err := c.Upload(context.Background(), bearer("AT"), files, "")

	if !errors.Is(err, ErrUploadSource) {
		t.Fatalf("expected ErrUploadSource, got %v", err)
	}
	if errors.Is(err, ErrNetwork) {
		t.Errorf("a local read failure must not be reported as a network error: %v", err)
	}
	if !strings.Contains(err.Error(), "disk unplugged") || !strings.Contains(err.Error(), "a.txt") {
		t.Errorf("expected the file name and cause in %q", err)
	}
}

func TestUpload_ServerDownIsNetworkError(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1/api"})

	files := []model.UploadFile{{Name: "a.txt", Size: 5, Content: strings.NewReader("hello")}}
	err := c.Upload(context.Background(), bearer("AT"), files, "")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if errors.Is(err, ErrUploadSource) {
		t.Errorf("connection refused is not a local read failure: %v", err)
	}
}
