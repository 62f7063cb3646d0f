package mcp

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/output"
)

// Opener 返回 profile 对应的 Keychain；profile 为空表示当前默认 profile。
type Opener func(profile string) (*keychain.Keychain, *errors.XError)

// CredentialListInput represents the input for the credential_list tool
type CredentialListInput struct {
	Service string `json:"service,omitempty"`
	Profile string `json:"profile,omitempty"`
}

// CredentialInput represents the input for credential_get and credential_delete
type CredentialInput struct {
	Service string `json:"service"`
	Account string `json:"account"`
	Profile string `json:"profile,omitempty"`
}

// CredentialSetInput represents the input for the credential_set tool
type CredentialSetInput struct {
	Service string `json:"service"`
	Account string `json:"account"`
	Value   string `json:"value"`
	Profile string `json:"profile,omitempty"`
}

// ToolHandler manages MCP tools
type ToolHandler struct {
	config *config.File
	open   Opener
}

// NewToolHandler creates a new tool handler
func NewToolHandler(cfg *config.File, open Opener) *ToolHandler {
	if cfg == nil {
		cfg = &config.File{Profiles: map[string]config.Profile{}}
	}
	return &ToolHandler{config: cfg, open: open}
}

// getProfileNames returns the sorted profile names
func (h *ToolHandler) getProfileNames() []string {
	names := make([]string, 0, len(h.config.Profiles))
	for name := range h.config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *ToolHandler) profileSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        "string",
		Description: "Profile name; defaults to the server's profile",
	}
	names := h.getProfileNames()
	if len(names) > 0 {
		s.Enum = make([]any, len(names))
		for i, name := range names {
			s.Enum[i] = name
		}
	}
	return s
}

func keySchema(profile *jsonschema.Schema, extra map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"service": {Type: "string", Description: "Service name"},
		"account": {Type: "string", Description: "Account name within the service"},
		"profile": profile,
	}
	for k, v := range extra {
		props[k] = v
	}
	return &jsonschema.Schema{Type: "object", Required: required, Properties: props}
}

// RegisterTools registers all tools with the MCP server
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	profile := h.profileSchema()

	server.AddTool(&mcp.Tool{
		Name:        "credential_list",
		Description: "List the secret values stored for a service (all services when service is empty)",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"service": {Type: "string", Description: "Service name filter"},
				"profile": profile,
			},
		},
	}, h.credentialListHandler)

	server.AddTool(&mcp.Tool{
		Name:        "credential_get",
		Description: "Read the secret stored for (service, account); non UTF-8 secrets are returned base64 encoded (encoding=base64)",
		InputSchema: keySchema(profile, nil, "service", "account"),
	}, h.credentialGetHandler)

	server.AddTool(&mcp.Tool{
		Name:        "credential_set",
		Description: "Insert or update the secret for (service, account)",
		InputSchema: keySchema(profile, map[string]*jsonschema.Schema{
			"value": {Type: "string", Description: "Secret value"},
		}, "service", "account", "value"),
	}, h.credentialSetHandler)

	server.AddTool(&mcp.Tool{
		Name:        "credential_delete",
		Description: "Delete the secret stored for (service, account)",
		InputSchema: keySchema(profile, nil, "service", "account"),
	}, h.credentialDeleteHandler)

	// Profile list tool
	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "profile_list",
		Description: "List all configured profiles",
	}, h.ProfileList)
}

func decodeInput(req *mcp.CallToolRequest, v any) *errors.XError {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)
	}
	return nil
}

func (h *ToolHandler) credentialListHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CredentialListInput
	if xe := decodeInput(req, &input); xe != nil {
		return h.errorResult(xe), nil
	}
	result, _, err := h.CredentialList(ctx, req, input)
	return result, err
}

func (h *ToolHandler) credentialGetHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CredentialInput
	if xe := decodeInput(req, &input); xe != nil {
		return h.errorResult(xe), nil
	}
	result, _, err := h.CredentialGet(ctx, req, input)
	return result, err
}

func (h *ToolHandler) credentialSetHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CredentialSetInput
	if xe := decodeInput(req, &input); xe != nil {
		return h.errorResult(xe), nil
	}
	result, _, err := h.CredentialSet(ctx, req, input)
	return result, err
}

func (h *ToolHandler) credentialDeleteHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CredentialInput
	if xe := decodeInput(req, &input); xe != nil {
		return h.errorResult(xe), nil
	}
	result, _, err := h.CredentialDelete(ctx, req, input)
	return result, err
}

// CredentialList lists secret values
func (h *ToolHandler) CredentialList(ctx context.Context, req *mcp.CallToolRequest, input CredentialListInput) (*mcp.CallToolResult, any, error) {
	kc, xe := h.keychain(input.Profile)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	values, xe := kc.AllAccounts(input.Service)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	return h.okResult(map[string]any{
		"service": input.Service,
		"count":   len(values),
		"values":  values,
	}), nil, nil
}

// CredentialGet reads one secret
func (h *ToolHandler) CredentialGet(ctx context.Context, req *mcp.CallToolRequest, input CredentialInput) (*mcp.CallToolResult, any, error) {
	if xe := requireKey(input.Service, input.Account); xe != nil {
		return h.errorResult(xe), nil, nil
	}
	kc, xe := h.keychain(input.Profile)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	data, xe := kc.ReadValue(input.Service, input.Account)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	value, encoding := output.EncodeSecret(data)
	return h.okResult(map[string]any{
		"service":  input.Service,
		"account":  input.Account,
		"value":    value,
		"encoding": encoding,
	}), nil, nil
}

// CredentialSet writes one secret
func (h *ToolHandler) CredentialSet(ctx context.Context, req *mcp.CallToolRequest, input CredentialSetInput) (*mcp.CallToolResult, any, error) {
	if xe := requireKey(input.Service, input.Account); xe != nil {
		return h.errorResult(xe), nil, nil
	}
	kc, xe := h.keychain(input.Profile)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	ok, xe := kc.WriteValue(input.Service, input.Account, []byte(input.Value))
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	return h.okResult(map[string]any{
		"service": input.Service,
		"account": input.Account,
		"written": ok,
	}), nil, nil
}

// CredentialDelete deletes one secret
func (h *ToolHandler) CredentialDelete(ctx context.Context, req *mcp.CallToolRequest, input CredentialInput) (*mcp.CallToolResult, any, error) {
	if xe := requireKey(input.Service, input.Account); xe != nil {
		return h.errorResult(xe), nil, nil
	}
	kc, xe := h.keychain(input.Profile)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	ok, xe := kc.DeleteValue(input.Service, input.Account)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	return h.okResult(map[string]any{
		"service": input.Service,
		"account": input.Account,
		"deleted": ok,
	}), nil, nil
}

// ProfileList lists all profiles
func (h *ToolHandler) ProfileList(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	type profileInfo struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Backend     string `json:"backend"`
		Service     string `json:"service,omitempty"`
	}

	profiles := make([]profileInfo, 0, len(h.config.Profiles))
	for _, name := range h.getProfileNames() {
		p := h.config.Profiles[name]
		backend := p.Backend
		if backend == "" {
			backend = config.DefaultBackend
		}
		profiles = append(profiles, profileInfo{
			Name:        name,
			Description: p.Description,
			Backend:     backend,
			Service:     p.Service,
		})
	}

	return h.okResult(map[string]any{"profiles": profiles}), nil, nil
}

func (h *ToolHandler) keychain(profile string) (*keychain.Keychain, *errors.XError) {
	if profile != "" {
		if _, ok := h.config.Profiles[profile]; !ok {
			return nil, errors.New(errors.CodeCfgInvalid, "profile does not exist", map[string]any{"name": profile, "reason": "profile_not_found"})
		}
	}
	if h.open == nil {
		return nil, errors.New(errors.CodeInternal, "no keychain configured", nil)
	}
	return h.open(profile)
}

func requireKey(service, account string) *errors.XError {
	if service == "" {
		return errors.New(errors.CodeCfgInvalid, "service is required", nil)
	}
	if account == "" {
		return errors.New(errors.CodeCfgInvalid, "account is required", nil)
	}
	return nil
}

// okResult 把数据包装为与 CLI 相同的 JSON envelope。
func (h *ToolHandler) okResult(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(output.OKEnvelope(data), "", "  ")
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonData)},
		},
	}
}

func (h *ToolHandler) errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: h.formatError(err)},
		},
	}
}

// formatError formats an error as JSON
func (h *ToolHandler) formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	}
	jsonData, _ := json.MarshalIndent(output.ErrorEnvelope(xe), "", "  ")
	return string(jsonData)
}

// CreateServer creates a new MCP server
func CreateServer(version string, cfg *config.File, open Opener) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "xcred",
		Version: version,
	}, nil)

	handler := NewToolHandler(cfg, open)
	handler.RegisterTools(server)

	return server, nil
}
