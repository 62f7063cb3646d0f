package app

import (
	"log/slog"
	"os"
	"sync"

	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
)

// Keychains 按 profile 缓存已打开的 Keychain，供长驻的 mcp server 复用。
// 空 profile 与当前 profile 使用解析后的设置（含 CLI/ENV 覆盖）；
// 其他 profile 只使用配置文件中的 backend 与 file_path。
type Keychains struct {
	mu      sync.Mutex
	base    config.Resolved
	homeDir string
	logger  *slog.Logger
	opened  map[string]*keychain.Keychain
}

func NewKeychains(base config.Resolved, logger *slog.Logger) *Keychains {
	home, _ := os.UserHomeDir()
	return &Keychains{
		base:    base,
		homeDir: home,
		logger:  logger,
		opened:  map[string]*keychain.Keychain{},
	}
}

func (k *Keychains) Open(profile string) (*keychain.Keychain, *errors.XError) {
	if profile == "" {
		profile = k.base.ProfileName
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if kc, ok := k.opened[profile]; ok {
		return kc, nil
	}

	opts := KeychainOptions{Backend: k.base.Backend, FilePath: k.base.Profile.FilePath, Logger: k.logger}
	if profile != k.base.ProfileName {
		p, ok := k.base.File.Profiles[profile]
		if !ok {
			return nil, errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"profile": profile})
		}
		opts.Backend = p.Backend
		opts.FilePath = config.ExpandHome(p.FilePath, k.homeDir)
	}

	kc, xe := OpenKeychain(opts)
	if xe != nil {
		return nil, xe
	}
	k.opened[profile] = kc
	return kc, nil
}
