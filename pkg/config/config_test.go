package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestValidate_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"neither token nor proxy", Config{}, true},
		{"token only", Config{Token: "r8_abc"}, false},
		{"proxy only", Config{ProxyURL: "http://localhost:9000"}, false},
		{"both", Config{Token: "r8_abc", ProxyURL: "http://localhost:9000"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.WithDefaults().Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrMissingCredentials) {
					t.Fatalf("expected ErrMissingCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_PollingInterval(t *testing.T) {
	cfg := Config{Token: "t", PollingIntervalMS: -1}.WithDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative polling interval")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval())
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvBaseURL, "http://example.test/v1")
	t.Setenv(EnvProxyURL, "")
	t.Setenv(EnvPollingInterval, "250")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.Token != "env-token" || cfg.BaseURL != "http://example.test/v1" || cfg.PollingIntervalMS != 250 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadEnv_InvalidInterval(t *testing.T) {
	t.Setenv(EnvPollingInterval, "soon")
	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for non-numeric interval")
	}
}

func TestResolveToken(t *testing.T) {
	t.Setenv("CUSTOM_TOKEN", "from-env")

	cfg := Config{}.ResolveToken(EnvTokenProvider{Key: "CUSTOM_TOKEN"})
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", cfg.Token)
	}

	cfg = Config{Token: "explicit"}.ResolveToken(StaticTokenProvider("ignored"))
	if cfg.Token != "explicit" {
		t.Errorf("explicit token was overwritten: %q", cfg.Token)
	}

	cfg = Config{}.ResolveToken(nil)
	if cfg.Token != "" {
		t.Errorf("nil provider set token %q", cfg.Token)
	}
}

func TestLoadFileYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "base_url: http://y/v1\ntoken: yt\npolling_interval_ms: 100\nheaders:\n  X-Trace: abc\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://y/v1" || cfg.Token != "yt" || cfg.PollingIntervalMS != 100 || cfg.Headers["X-Trace"] != "abc" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFileJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"proxy_url":"http://proxy","polling_interval_ms":42}`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProxyURL != "http://proxy" || cfg.PollingIntervalMS != 42 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFileTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "token=\"tt\"\npolling_interval_ms=7\n[headers]\nX-Env=\"dev\"\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "tt" || cfg.PollingIntervalMS != 7 || cfg.Headers["X-Env"] != "dev" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := LoadFile(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestMerge(t *testing.T) {
	base := Config{BaseURL: "http://a", Token: "base", Headers: map[string]string{"A": "1", "B": "1"}}
	override := Config{Token: "over", PollingIntervalMS: 10, Headers: map[string]string{"B": "2"}}

	got := Merge(base, override)
	if got.BaseURL != "http://a" || got.Token != "over" || got.PollingIntervalMS != 10 {
		t.Fatalf("unexpected merge: %+v", got)
	}
	if got.Headers["A"] != "1" || got.Headers["B"] != "2" {
		t.Fatalf("unexpected headers: %v", got.Headers)
	}
	if base.Headers["B"] != "1" {
		t.Fatal("Merge mutated base headers")
	}
}
