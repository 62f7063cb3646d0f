// Package secret 解析配置中的 secret 值：keyring 引用通过 keychain 读取，明文需显式允许。
package secret

import (
	"strings"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
)

const keyringPrefix = "keyring:"

// Options 控制 secret 解析行为。
type Options struct {
	Keychain       *keychain.Keychain // keyring 引用的读取目标
	DefaultService string             // 引用中不含 "/" 时使用
	AllowPlaintext bool               // 是否允许明文（默认 false）
}

// Resolve 解析 secret 值：
//  1. keyring:<service>/<account> → 从 keychain 读取
//  2. 否则若为明文且允许明文 → 直接返回
//  3. 否则报错
func Resolve(raw string, opts Options) (string, *errors.XError) {
	if IsKeyringRef(raw) {
		service, account, xe := parseKeyringRef(strings.TrimPrefix(raw, keyringPrefix), opts.DefaultService)
		if xe != nil {
			return "", xe
		}
		if opts.Keychain == nil {
			return "", errors.New(errors.CodeInternal, "no keychain available to resolve secret", map[string]any{"service": service, "account": account})
		}
		data, xe := opts.Keychain.ReadValue(service, account)
		if xe != nil {
			return "", xe
		}
		return string(data), nil
	}
	if opts.AllowPlaintext {
		return raw, nil
	}
	return "", errors.New(errors.CodeCfgInvalid, "plaintext secret not allowed; use keyring: reference or enable allow_plaintext_token", nil)
}

// IsKeyringRef 判断值是否为 keyring 引用。
func IsKeyringRef(s string) bool {
	return strings.HasPrefix(s, keyringPrefix)
}

func parseKeyringRef(ref, defaultService string) (string, string, *errors.XError) {
	service, account, found := strings.Cut(ref, "/")
	if !found {
		service, account = defaultService, ref
	}
	if service == "" || account == "" {
		return "", "", errors.New(errors.CodeCfgInvalid, "invalid keyring reference", map[string]any{
			"ref":  keyringPrefix + ref,
			"hint": "use keyring:<service>/<account>, or set a profile service for keyring:<account>",
		})
	}
	return service, account, nil
}
