package app

import (
	"path/filepath"
	"testing"

	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	_ "github.com/zx06/xcred/internal/store/file"
	_ "github.com/zx06/xcred/internal/store/memory"
)

func TestOpenKeychain_UnsupportedBackend(t *testing.T) {
	kc, xe := OpenKeychain(KeychainOptions{Backend: "unsupported"})
	if kc != nil {
		t.Fatal("expected nil keychain")
	}
	if xe == nil {
		t.Fatal("expected error")
	}
	if xe.Code != errors.CodeBackendUnsupported {
		t.Errorf("expected CodeBackendUnsupported, got %s", xe.Code)
	}
}

func TestOpenKeychain_Memory(t *testing.T) {
	kc, xe := OpenKeychain(KeychainOptions{Backend: "memory"})
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if !kc.SetString("svc", "acct", "v") || kc.String("svc", "acct") != "v" {
		t.Fatal("memory keychain round trip failed")
	}
}

func TestOpenKeychain_FileRequiresPath(t *testing.T) {
	_, xe := OpenKeychain(KeychainOptions{Backend: "file"})
	if xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected CodeCfgInvalid, got %v", xe)
	}
}

func TestOpenProfileKeychain_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	r := config.Resolved{Backend: "file", Profile: config.Profile{FilePath: path}}

	kc, xe := OpenProfileKeychain(r, nil)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if !kc.SetString("svc", "acct", "persisted") {
		t.Fatal("write failed")
	}

	again, xe := OpenProfileKeychain(r, nil)
	if xe != nil {
		t.Fatal(xe)
	}
	if got := again.String("svc", "acct"); got != "persisted" {
		t.Fatalf("reopened value = %q", got)
	}
}

func TestResolveSecret_UsesProfileService(t *testing.T) {
	kc, _ := OpenKeychain(KeychainOptions{Backend: "memory"})
	kc.SetString("myapp", "token", "t0k3n")

	got, xe := ResolveSecret("keyring:token", kc, config.Profile{Service: "myapp"}, false)
	if xe != nil {
		t.Fatalf("unexpected error: %v", xe)
	}
	if got != "t0k3n" {
		t.Fatalf("got %q", got)
	}

	if _, xe := ResolveSecret("plaintext", kc, config.Profile{}, false); xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("plaintext should be rejected, got %v", xe)
	}
}
