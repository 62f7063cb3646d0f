package app

import (
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/output"
	"github.com/zx06/xcred/internal/spec"
	"github.com/zx06/xcred/internal/store"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Default: "", Description: "Config file path (YAML); default: ./xcred.yaml or $HOME/.config/xcred/xcred.yaml"},
		{Name: "profile", Shorthand: "p", Env: "XCRED_PROFILE", Default: "", Description: "Profile name (config: profiles.<name>)"},
		{Name: "format", Shorthand: "f", Env: "XCRED_FORMAT", Default: "auto", Description: "Output format: " + output.FormatNames()},
		{Name: "backend", Env: "XCRED_BACKEND", Default: "auto", Description: "Keychain backend: auto|keyring|secret-service|wincred|file|memory"},
		{Name: "log-level", Env: "XCRED_LOG_LEVEL", Default: "warn", Description: "Log level for stderr: debug|info|warn|error"},
	}
	with := func(extra ...spec.FlagSpec) []spec.FlagSpec {
		out := make([]spec.FlagSpec, 0, len(globalFlags)+len(extra))
		out = append(out, globalFlags...)
		return append(out, extra...)
	}
	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Commands: []spec.CommandSpec{
			{
				Name:        "list",
				Description: "List the values of all credentials, optionally for one service",
				Output:      []string{"service", "count", "values"},
				Flags:       with(spec.FlagSpec{Name: "service", Default: "", Description: "Only list entries of this service"}),
			},
			{
				Name:        "get",
				Usage:       "get <service> <account>",
				Description: "Read one credential",
				Output:      []string{"service", "account", "value", "encoding"},
				Flags:       with(spec.FlagSpec{Name: "raw", Default: "false", Description: "Write the secret bytes only, without an envelope (binary safe)"}),
			},
			{
				Name:        "set",
				Usage:       "set <service> <account> [value]",
				Description: "Write one credential (insert or update); prompts on the TTY when no value is given",
				Output:      []string{"service", "account", "written"},
				Flags:       with(spec.FlagSpec{Name: "stdin", Default: "false", Description: "Read the secret from stdin"}),
			},
			{
				Name:        "delete",
				Usage:       "delete <service> <account>",
				Description: "Delete one credential",
				Output:      []string{"service", "account", "deleted"},
				Flags:       globalFlags,
			},
			{
				Name:        "profile list",
				Description: "List configured profiles",
				Flags:       globalFlags,
			},
			{
				Name:        "profile show",
				Usage:       "profile show <name>",
				Description: "Show profile details",
				Flags:       globalFlags,
			},
			{
				Name:        "mcp server",
				Description: "Start MCP server for AI assistant integration",
				Flags: with(
					spec.FlagSpec{Name: "transport", Env: "XCRED_MCP_TRANSPORT", Default: "stdio", Description: "MCP transport: stdio|streamable_http"},
					spec.FlagSpec{Name: "http-addr", Env: "XCRED_MCP_HTTP_ADDR", Default: "127.0.0.1:8787", Description: "Streamable HTTP listen address"},
					spec.FlagSpec{Name: "http-auth-token", Env: "XCRED_MCP_HTTP_AUTH_TOKEN", Default: "", Description: "Streamable HTTP bearer token"},
				),
			},
			{
				Name:        "spec",
				Description: "Export tool spec for AI/agents",
				Flags:       globalFlags,
			},
			{
				Name:        "version",
				Description: "Print version information",
				Flags:       globalFlags,
			},
		},
		Backends:   append([]string{store.BackendAuto}, store.RegisteredNames()...),
		ErrorCodes: errors.AllCodes(),
	}
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
