package config

// File 表示 xcred.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config。
type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
	LogLevel string             `yaml:"log_level"`
	MCP      MCPConfig          `yaml:"mcp"`
}

type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`

	Backend  string `yaml:"backend"`   // auto | keyring | secret-service | wincred | file | memory
	Service  string `yaml:"service"`   // keyring:<account> 引用的默认 service
	FilePath string `yaml:"file_path"` // file backend 的数据文件，支持 ~
}

type MCPConfig struct {
	Transport string        `yaml:"transport"` // stdio | streamable_http
	HTTP      MCPHTTPConfig `yaml:"http"`
}

type MCPHTTPConfig struct {
	Addr                string `yaml:"addr"`
	AuthToken           string `yaml:"auth_token"` // 支持 keyring:<service>/<account> 引用
	AllowPlaintextToken bool   `yaml:"allow_plaintext_token"`
}

type Resolved struct {
	ConfigPath  string
	ProfileName string
	Format      string
	Backend     string
	LogLevel    string
	Profile     Profile // 选中的 profile（FilePath 已展开 ~）
	File        File    // 完整配置，供 mcp/profile 命令使用
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIProfile     string
	CLIProfileSet  bool
	CLIFormat      string
	CLIFormatSet   bool
	CLIBackend     string
	CLIBackendSet  bool
	CLILogLevel    string
	CLILogLevelSet bool

	// ENV（由调用方注入，便于测试）
	EnvProfile  string
	EnvFormat   string
	EnvBackend  string
	EnvLogLevel string

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string
}
