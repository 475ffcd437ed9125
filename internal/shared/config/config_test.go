package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envFrom(vals map[string]string) func(string) string {
	return func(key string) string { return vals[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg := load(envFrom(nil))

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %s", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval)
	}
	if cfg.StallTimeout != 60*time.Second {
		t.Fatalf("unexpected stall timeout: %s", cfg.StallTimeout)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Fatalf("unexpected max upload: %d", cfg.MaxUploadBytes)
	}
	if cfg.AppName != "Enterprise Contract Analysis System" {
		t.Fatalf("unexpected app name: %s", cfg.AppName)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev-like default env")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg := load(envFrom(map[string]string{
		"API_BASE_URL":     "http://backend:9000/",
		"POLL_INTERVAL":    "250ms",
		"STALL_TIMEOUT":    "bogus",
		"MAX_UPLOAD_BYTES": "1024",
		"ENV":              "prod",
	}))

	if cfg.APIBaseURL != "http://backend:9000" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval)
	}
	if cfg.StallTimeout != 60*time.Second {
		t.Fatalf("invalid duration should fall back, got %s", cfg.StallTimeout)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Fatalf("unexpected max upload: %d", cfg.MaxUploadBytes)
	}
	if cfg.Env != "production" || cfg.IsDevLike() {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	body := `app_name: Contract Desk
api_base_url: http://file-backend:8000
texts:
  stage_errors:
    3: Summary step timed out
  progress_fallback: Working...
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg := load(envFrom(map[string]string{
		"CONFIG_FILE":  path,
		"API_BASE_URL": "http://env-backend:8000",
	}))

	if cfg.AppName != "Contract Desk" {
		t.Fatalf("unexpected app name: %s", cfg.AppName)
	}
	if cfg.APIBaseURL != "http://env-backend:8000" {
		t.Fatalf("env should win over file, got %s", cfg.APIBaseURL)
	}
	if got := cfg.Texts.StageError(3); got != "Summary step timed out" {
		t.Fatalf("unexpected stage 3 message: %s", got)
	}
	if got := cfg.Texts.StageError(1); got != "Failed to extract text from document" {
		t.Fatalf("default stage messages should survive merge, got %s", got)
	}
	if got := cfg.Texts.ProgressMessage(9); got != "Working..." {
		t.Fatalf("unexpected fallback: %s", got)
	}
}

func TestTextsLookups(t *testing.T) {
	texts := DefaultTexts()
	cases := []struct {
		status int
		want   string
	}{
		{0, "extracting contract text..."},
		{1, "identifying contract metadata..."},
		{2, "creating contract summary..."},
		{3, "analysing potential risks..."},
		{4, "executing analysis engine..."},
		{5, "Processing..."},
		{-1, "Processing..."},
		{42, "Processing..."},
	}
	for _, tc := range cases {
		if got := texts.ProgressMessage(tc.status); got != tc.want {
			t.Fatalf("status %d: expected %q, got %q", tc.status, tc.want, got)
		}
	}

	if got := texts.StageError(5); got != "Failed to finalize analysis" {
		t.Fatalf("unexpected stage 5: %s", got)
	}
	for _, key := range []int{0, 6, 99} {
		if got := texts.StageError(key); got != "Processing failed" {
			t.Fatalf("key %d: unexpected fallback %s", key, got)
		}
	}
}
