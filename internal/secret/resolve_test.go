package secret

import (
	"testing"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/store/memory"
)

func TestParseKeyringRef(t *testing.T) {
	tests := []struct {
		name        string
		ref         string
		def         string
		wantService string
		wantAccount string
		wantErr     bool
	}{
		{
			name:        "service and account",
			ref:         "xcred/mcp-token",
			wantService: "xcred",
			wantAccount: "mcp-token",
		},
		{
			name:        "account with path",
			ref:         "myapp/prod/db_password",
			wantService: "myapp",
			wantAccount: "prod/db_password",
		},
		{
			name:        "default service",
			ref:         "token",
			def:         "myapp",
			wantService: "myapp",
			wantAccount: "token",
		},
		{
			name:    "no default service",
			ref:     "token",
			wantErr: true,
		},
		{
			name:    "empty ref",
			ref:     "",
			def:     "myapp",
			wantErr: true,
		},
		{
			name:    "empty account",
			ref:     "myapp/",
			wantErr: true,
		},
		{
			name:    "empty service",
			ref:     "/token",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, account, xe := parseKeyringRef(tt.ref, tt.def)
			if tt.wantErr {
				if xe == nil {
					t.Fatalf("parseKeyringRef(%q) expected error", tt.ref)
				}
				if xe.Code != errors.CodeCfgInvalid {
					t.Fatalf("code = %s", xe.Code)
				}
				return
			}
			if xe != nil {
				t.Fatalf("parseKeyringRef(%q) unexpected error: %v", tt.ref, xe)
			}
			if service != tt.wantService || account != tt.wantAccount {
				t.Errorf("parseKeyringRef(%q) = %q, %q; want %q, %q", tt.ref, service, account, tt.wantService, tt.wantAccount)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	kc := keychain.New(memory.New())
	kc.SetString("xcred", "mcp-token", "s3cret")
	kc.SetString("myapp", "token", "app-token")

	tests := []struct {
		name     string
		raw      string
		opts     Options
		want     string
		wantCode errors.Code
	}{
		{
			name: "keyring ref",
			raw:  "keyring:xcred/mcp-token",
			opts: Options{Keychain: kc},
			want: "s3cret",
		},
		{
			name: "keyring ref with default service",
			raw:  "keyring:token",
			opts: Options{Keychain: kc, DefaultService: "myapp"},
			want: "app-token",
		},
		{
			name:     "missing entry",
			raw:      "keyring:xcred/nope",
			opts:     Options{Keychain: kc},
			wantCode: errors.CodeItemNotFound,
		},
		{
			name:     "empty ref",
			raw:      "keyring:",
			opts:     Options{Keychain: kc, DefaultService: "myapp"},
			wantCode: errors.CodeCfgInvalid,
		},
		{
			name:     "no keychain",
			raw:      "keyring:xcred/mcp-token",
			wantCode: errors.CodeInternal,
		},
		{
			name: "plaintext allowed",
			raw:  "plain",
			opts: Options{AllowPlaintext: true},
			want: "plain",
		},
		{
			name:     "plaintext rejected",
			raw:      "plain",
			wantCode: errors.CodeCfgInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, xe := Resolve(tt.raw, tt.opts)
			if tt.wantCode != "" {
				if xe == nil {
					t.Fatalf("expected %s, got value %q", tt.wantCode, got)
				}
				if xe.Code != tt.wantCode {
					t.Fatalf("code = %s, want %s", xe.Code, tt.wantCode)
				}
				return
			}
			if xe != nil {
				t.Fatalf("unexpected error: %v", xe)
			}
			if got != tt.want {
				t.Fatalf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKeyringRef(t *testing.T) {
	if !IsKeyringRef("keyring:a/b") {
		t.Fatal("expected keyring ref")
	}
	if IsKeyringRef("plain") || IsKeyringRef("KEYRING:a/b") {
		t.Fatal("unexpected keyring ref")
	}
}
