package main

import (
	"context"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/zx06/xcred/internal/app"
	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	mcp_pkg "github.com/zx06/xcred/internal/mcp"
)

const defaultMCPHTTPAddr = "127.0.0.1:8787"

// NewMCPCommand creates the MCP command group
func NewMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP (Model Context Protocol) server commands",
	}

	mcpCmd.AddCommand(newMCPServerCommand())

	return mcpCmd
}

// newMCPServerCommand creates the MCP server command
func newMCPServerCommand() *cobra.Command {
	opts := &mcpServerOptions{}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start MCP server for AI assistant integration",
		Args:  argsBetween(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.transportSet = cmd.Flags().Changed("transport")
			opts.httpAddrSet = cmd.Flags().Changed("http-addr")
			opts.httpAuthTokenSet = cmd.Flags().Changed("http-auth-token")
			return runMCPServer(opts)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", mcp_pkg.TransportStdio, "MCP transport: stdio|streamable_http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", defaultMCPHTTPAddr, "Streamable HTTP listen address")
	cmd.Flags().StringVar(&opts.httpAuthToken, "http-auth-token", "", "Streamable HTTP auth token (required for streamable_http)")
	return cmd
}

// runMCPServer runs the MCP server
func runMCPServer(opts *mcpServerOptions) error {
	r := GlobalConfig.Resolved
	keychains := app.NewKeychains(r, logger())

	resolved, xe := resolveMCPServerOptions(opts, r.File, func(raw string) (string, *errors.XError) {
		kc, xe := keychains.Open("")
		if xe != nil {
			return "", xe
		}
		return app.ResolveSecret(raw, kc, r.Profile, r.File.MCP.HTTP.AllowPlaintextToken)
	})
	if xe != nil {
		return xe
	}

	server, err := mcp_pkg.CreateServer(version, &r.File, keychains.Open)
	if err != nil {
		if xe, ok := err.(*errors.XError); ok {
			return xe
		}
		return errors.Wrap(errors.CodeInternal, "failed to create MCP server", nil, err)
	}

	logger().Info("starting mcp server", "transport", resolved.transport, "profile", r.ProfileName)

	switch resolved.transport {
	case mcp_pkg.TransportStdio:
		ctx := context.Background()
		return server.Run(ctx, &mcp.StdioTransport{})
	case mcp_pkg.TransportStreamableHTTP:
		handler, err := mcp_pkg.NewStreamableHTTPHandler(server, mcp_pkg.HTTPOptions{
			AuthToken: resolved.httpAuthToken,
			Logger:    logger(),
		})
		if err != nil {
			if xe, ok := err.(*errors.XError); ok {
				return xe
			}
			return errors.Wrap(errors.CodeInternal, "failed to create streamable http handler", nil, err)
		}
		httpServer := &http.Server{
			Addr:    resolved.httpAddr,
			Handler: handler,
		}
		return httpServer.ListenAndServe()
	default:
		return errors.New(errors.CodeCfgInvalid, "unsupported mcp transport", map[string]any{"transport": resolved.transport})
	}
}

type mcpServerOptions struct {
	transport        string
	transportSet     bool
	httpAddr         string
	httpAddrSet      bool
	httpAuthToken    string
	httpAuthTokenSet bool
}

type mcpServerResolved struct {
	transport     string
	httpAddr      string
	httpAuthToken string
}

// tokenResolver 解析配置中的 auth_token（可能是 keyring 引用）。
type tokenResolver func(raw string) (string, *errors.XError)

func resolveMCPServerOptions(opts *mcpServerOptions, cfg config.File, resolveToken tokenResolver) (mcpServerResolved, *errors.XError) {
	if opts == nil {
		opts = &mcpServerOptions{}
	}

	transport := firstNonEmpty(
		valueIfSet(opts.transportSet, opts.transport),
		os.Getenv("XCRED_MCP_TRANSPORT"),
		cfg.MCP.Transport,
	)
	if transport == "" {
		transport = mcp_pkg.TransportStdio
	}
	if transport != mcp_pkg.TransportStdio && transport != mcp_pkg.TransportStreamableHTTP {
		return mcpServerResolved{}, errors.New(errors.CodeCfgInvalid, "invalid mcp transport", map[string]any{"transport": transport})
	}

	httpAddr := firstNonEmpty(
		valueIfSet(opts.httpAddrSet, opts.httpAddr),
		os.Getenv("XCRED_MCP_HTTP_ADDR"),
		cfg.MCP.HTTP.Addr,
	)
	if httpAddr == "" {
		httpAddr = defaultMCPHTTPAddr
	}

	authToken := firstNonEmpty(
		valueIfSet(opts.httpAuthTokenSet, opts.httpAuthToken),
		os.Getenv("XCRED_MCP_HTTP_AUTH_TOKEN"),
	)
	// stdio 不需要 token，避免无谓地访问钥匙串
	if authToken == "" && cfg.MCP.HTTP.AuthToken != "" && transport == mcp_pkg.TransportStreamableHTTP {
		if resolveToken == nil {
			return mcpServerResolved{}, errors.New(errors.CodeInternal, "no token resolver configured", nil)
		}
		secretValue, xe := resolveToken(cfg.MCP.HTTP.AuthToken)
		if xe != nil {
			return mcpServerResolved{}, xe
		}
		authToken = secretValue
	}

	if transport == mcp_pkg.TransportStreamableHTTP && authToken == "" {
		return mcpServerResolved{}, errors.New(errors.CodeCfgInvalid, "streamable http transport requires auth token", nil)
	}

	return mcpServerResolved{
		transport:     transport,
		httpAddr:      httpAddr,
		httpAuthToken: authToken,
	}, nil
}

func valueIfSet(set bool, value string) string {
	if !set {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
