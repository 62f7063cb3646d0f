package mcp

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/log"
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"
)

const (
	authHeader    = "Authorization"
	bearerScheme  = "bearer"
	unauthorized  = "unauthorized"
	headerMissing = "authorization header is required"
)

// HTTPOptions 配置 streamable HTTP 传输。AuthToken 必填。
type HTTPOptions struct {
	AuthToken string
	Logger    *slog.Logger
}

// NewStreamableHTTPHandler creates a streamable HTTP handler with required bearer auth.
func NewStreamableHTTPHandler(server *mcp.Server, opts HTTPOptions) (http.Handler, error) {
	if server == nil {
		return nil, errors.New(errors.CodeInternal, "mcp server is nil", nil)
	}
	if opts.AuthToken == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "mcp streamable http auth token is required", nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
	return requireAuth(handler, opts.AuthToken, opts.Logger), nil
}

func requireAuth(next http.Handler, token string, logger *slog.Logger) http.Handler {
	reject := func(w http.ResponseWriter, req *http.Request, msg, reason string) {
		logger.Warn("mcp http request rejected", "remote_addr", req.RemoteAddr, "reason", reason)
		w.Header().Set("WWW-Authenticate", `Bearer realm="xcred"`)
		http.Error(w, msg, http.StatusUnauthorized)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		auth := strings.TrimSpace(req.Header.Get(authHeader))
		if auth == "" {
			reject(w, req, headerMissing, "missing_header")
			return
		}
		// scheme 不区分大小写（RFC 6750）
		scheme, received, found := strings.Cut(auth, " ")
		if !found || !strings.EqualFold(scheme, bearerScheme) {
			reject(w, req, unauthorized, "bad_scheme")
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(received)), []byte(token)) != 1 {
			reject(w, req, unauthorized, "bad_token")
			return
		}
		next.ServeHTTP(w, req)
	})
}
