package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_NoConfig(t *testing.T) {
	tmp := t.TempDir()
	cfg, path, xe := LoadConfig(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
	if cfg.Profiles == nil {
		t.Fatal("expected non-nil Profiles map")
	}
	if len(cfg.Profiles) != 0 {
		t.Fatalf("expected empty profiles, got %d", len(cfg.Profiles))
	}
}

func TestLoadConfig_ExplicitConfigMissing(t *testing.T) {
	tmp := t.TempDir()
	_, _, xe := LoadConfig(Options{WorkDir: tmp, HomeDir: tmp, ConfigPath: "no_such.yaml"})
	if xe == nil {
		t.Fatal("expected error")
	}
	if xe.Code != "XCRED_CFG_NOT_FOUND" {
		t.Fatalf("expected XCRED_CFG_NOT_FOUND, got %s", xe.Code)
	}
}

func TestLoadConfig_WorkDirConfig(t *testing.T) {
	tmp := t.TempDir()
	cfg := []byte(`profiles:
  dev:
    backend: file
    service: myapp
    file_path: ./secrets.json
  prod:
    backend: keyring
    service: myapp-prod
log_level: debug
mcp:
  transport: streamable_http
  http:
    addr: 127.0.0.1:9999
    auth_token: keyring:xcred/mcp-token
`)
	path := filepath.Join(tmp, "xcred.yaml")
	if err := os.WriteFile(path, cfg, 0o600); err != nil {
		t.Fatal(err)
	}

	file, cfgPath, xe := LoadConfig(Options{WorkDir: tmp, HomeDir: tmp})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if cfgPath != path {
		t.Fatalf("expected path %q, got %q", path, cfgPath)
	}
	if len(file.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(file.Profiles))
	}

	dev := file.Profiles["dev"]
	if dev.Backend != "file" {
		t.Errorf("expected backend=file, got %q", dev.Backend)
	}
	if dev.Service != "myapp" {
		t.Errorf("expected service=myapp, got %q", dev.Service)
	}
	if dev.FilePath != "./secrets.json" {
		t.Errorf("expected file_path=./secrets.json, got %q", dev.FilePath)
	}
	if file.Profiles["prod"].Backend != "keyring" {
		t.Errorf("expected prod backend=keyring")
	}
	if file.LogLevel != "debug" {
		t.Errorf("expected log_level=debug, got %q", file.LogLevel)
	}
	if file.MCP.Transport != "streamable_http" || file.MCP.HTTP.Addr != "127.0.0.1:9999" {
		t.Errorf("unexpected mcp config: %+v", file.MCP)
	}
	if file.MCP.HTTP.AuthToken != "keyring:xcred/mcp-token" {
		t.Errorf("expected auth_token ref, got %q", file.MCP.HTTP.AuthToken)
	}
}

func TestLoadConfig_HomeDirConfig(t *testing.T) {
	workDir := t.TempDir()
	homeDir := t.TempDir()

	cfgDir := filepath.Join(homeDir, ".config", "xcred")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := []byte(`profiles:
  home:
    backend: memory
`)
	path := filepath.Join(cfgDir, "xcred.yaml")
	if err := os.WriteFile(path, cfg, 0o600); err != nil {
		t.Fatal(err)
	}

	file, cfgPath, xe := LoadConfig(Options{WorkDir: workDir, HomeDir: homeDir})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if cfgPath != path {
		t.Fatalf("expected path %q, got %q", path, cfgPath)
	}
	if _, ok := file.Profiles["home"]; !ok {
		t.Fatal("expected 'home' profile")
	}
}

func TestLoadConfig_WorkDirTakesPrecedence(t *testing.T) {
	workDir := t.TempDir()
	homeDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(workDir, "xcred.yaml"), []byte("profiles:\n  work:\n    backend: file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfgDir := filepath.Join(homeDir, ".config", "xcred")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "xcred.yaml"), []byte("profiles:\n  home:\n    backend: memory\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	file, cfgPath, xe := LoadConfig(Options{WorkDir: workDir, HomeDir: homeDir})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if cfgPath != filepath.Join(workDir, "xcred.yaml") {
		t.Fatalf("expected work dir config, got %q", cfgPath)
	}
	if _, ok := file.Profiles["work"]; !ok {
		t.Fatal("expected 'work' profile from work dir")
	}
	if _, ok := file.Profiles["home"]; ok {
		t.Fatal("should not have 'home' profile from home dir")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "xcred.yaml")
	if err := os.WriteFile(path, []byte(`invalid: yaml: syntax: [`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, xe := LoadConfig(Options{WorkDir: tmp, HomeDir: tmp})
	if xe == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if xe.Code != "XCRED_CFG_INVALID" {
		t.Fatalf("expected XCRED_CFG_INVALID, got %s", xe.Code)
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	customPath := filepath.Join(tmp, "custom.yaml")
	if err := os.WriteFile(customPath, []byte("profiles:\n  explicit:\n    backend: memory\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	file, cfgPath, xe := LoadConfig(Options{ConfigPath: customPath})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if cfgPath != customPath {
		t.Fatalf("expected path %q, got %q", customPath, cfgPath)
	}
	if _, ok := file.Profiles["explicit"]; !ok {
		t.Fatal("expected 'explicit' profile")
	}
}

func TestExpandHome(t *testing.T) {
	home := filepath.Join("/", "home", "alice")
	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/secrets.json", filepath.Join(home, "secrets.json")},
		{"/abs/secrets.json", "/abs/secrets.json"},
		{"relative.json", "relative.json"},
		{"~bob/x", "~bob/x"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in, home); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := ExpandHome("~/x", ""); got != "~/x" {
		t.Errorf("ExpandHome without home = %q", got)
	}
}
