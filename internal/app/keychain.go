package app

import (
	"log/slog"

	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/secret"
	"github.com/zx06/xcred/internal/store"
)

type KeychainOptions struct {
	Backend  string // 为空或 auto 时按平台选择
	FilePath string
	Logger   *slog.Logger
}

// OpenKeychain 按 backend 名打开 store 并包装为 Keychain。
// backend 需已通过空导入注册。
func OpenKeychain(opts KeychainOptions) (*keychain.Keychain, *errors.XError) {
	st, xe := store.Open(opts.Backend, store.Options{
		FilePath: opts.FilePath,
		Logger:   opts.Logger,
	})
	if xe != nil {
		return nil, xe
	}
	return keychain.New(st, keychain.WithLogger(opts.Logger)), nil
}

// OpenProfileKeychain 用解析后的配置打开 Keychain。
func OpenProfileKeychain(r config.Resolved, logger *slog.Logger) (*keychain.Keychain, *errors.XError) {
	return OpenKeychain(KeychainOptions{
		Backend:  r.Backend,
		FilePath: r.Profile.FilePath,
		Logger:   logger,
	})
}

// ResolveSecret 解析配置中的 secret 值，keyring 引用以 profile.service 为默认 service。
func ResolveSecret(raw string, kc *keychain.Keychain, profile config.Profile, allowPlaintext bool) (string, *errors.XError) {
	return secret.Resolve(raw, secret.Options{
		Keychain:       kc,
		DefaultService: profile.Service,
		AllowPlaintext: allowPlaintext,
	})
}
