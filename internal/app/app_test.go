package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/templui/securefiles/internal/config"
	"github.com/templui/securefiles/internal/model"
	"github.com/templui/securefiles/internal/service"
)

func testConfig(t *testing.T, apiURL string) *config.Config {
	return &config.Config{
		AppEnv:            "development",
		APIURL:            apiURL,
		SessionDriver:     "sqlite",
		SessionConnection: filepath.Join(t.TempDir(), "nested", "session.db"),
		SessionProfile:    apiURL,
		DownloadDir:       t.TempDir(),
	}
}

func TestNew_SessionSurvivesRestart(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected a request ID on every API call")
		}
		w.Write([]byte(`{"accessToken":"AT","refreshToken":"RT"}`))
	}))
	defer ts.Close()

	ctx := context.Background()
	cfg := testConfig(t, ts.URL+"/api")

	first, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = first.AuthService.Login(ctx, model.Credentials{Email: "a@b.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer second.Close()

	if !second.AuthService.Restore(ctx) {
		t.Fatal("expected session to be restored from disk")
	}
	if second.AuthService.State() != service.Authenticated {
		t.Error("expected authenticated state")
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	cfg := &config.Config{APIURL: "http://localhost:5000/api", SessionDriver: "memory"}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.DB != nil {
		t.Error("memory driver must not open a database")
	}
	if a.AuthService.Restore(context.Background()) {
		t.Error("fresh memory store should hold no session")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), &config.Config{APIURL: "http://x", SessionDriver: "etcd"})
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestDownloads_LocalByDefault(t *testing.T) {
	cfg := &config.Config{APIURL: "http://x", SessionDriver: "memory", DownloadDir: t.TempDir()}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	sink, err := a.Downloads(context.Background())
	if err != nil {
		t.Fatalf("Downloads: %v", err)
	}
	if got := sink.URL("a.txt"); got != filepath.Join(cfg.DownloadDir, "a.txt") {
		t.Errorf("unexpected local path %s", got)
	}
}
