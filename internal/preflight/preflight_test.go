package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vinscan/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckExportDirectoryMissingIsFine(t *testing.T) {
	result := CheckExportDirectory(filepath.Join(t.TempDir(), "later"))
	if !result.Passed {
		t.Fatalf("expected pass for a directory created on demand, got %s", result.Detail)
	}
}

func TestCheckCredential(t *testing.T) {
	cfg := config.Default()
	cfg.Recognition.APIKey = ""
	if result := CheckCredential(&cfg); result.Passed {
		t.Fatal("expected failure without key")
	}
	cfg.Recognition.APIKey = "secret-abcd"
	result := CheckCredential(&cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if strings.Contains(result.Detail, "secret") || !strings.Contains(result.Detail, "abcd") {
		t.Fatalf("expected masked key, got %q", result.Detail)
	}
}

func TestCheckRecognition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "good-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Recognition.BaseURL = srv.URL
	cfg.Recognition.APIKey = "good-key"
	if result := CheckRecognition(context.Background(), &cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}

	cfg.Recognition.APIKey = "bad-key"
	result := CheckRecognition(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if !strings.Contains(result.Detail, "auth failed") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestRunAllSkipsRemoteWithoutKey(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = base
	cfg.Paths.LogDir = base
	cfg.Paths.ExportDir = base
	cfg.Recognition.APIKey = ""

	results := RunAll(context.Background(), &cfg, true)
	if len(results) != 4 {
		t.Fatalf("expected 4 local results, got %d", len(results))
	}
	if AllPassed(results) {
		t.Fatal("missing credential should fail one check")
	}
	for _, r := range results[:3] {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
}
