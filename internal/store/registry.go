// Package store 维护 keychain backend 的注册表。各 backend 在 init 中注册自己，
// 调用方通过空导入选择要编进二进制的 backend。
package store

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
)

// BackendAuto 表示按平台选择默认 backend。
const BackendAuto = "auto"

// Options 是打开 backend 时的公共参数；各 backend 只读取自己关心的字段。
type Options struct {
	FilePath string       // file backend 的数据文件
	Logger   *slog.Logger // 可为 nil
}

// Driver 负责打开一个 keychain.Store。
type Driver interface {
	Open(opts Options) (keychain.Store, *errors.XError)
}

var (
	mu      sync.RWMutex
	drivers = map[string]Driver{}
)

func Register(name string, d Driver) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		panic("store.Register: empty name")
	}
	if d == nil {
		panic("store.Register: nil driver")
	}
	if _, exists := drivers[name]; exists {
		panic("store.Register: duplicate driver: " + name)
	}
	drivers[name] = d
}

func Get(name string) (Driver, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := drivers[name]
	return d, ok
}

// RegisteredNames 返回已注册的 backend 名（排序后）。
func RegisteredNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(drivers))
	for k := range drivers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultBackend 返回当前平台的默认 backend 名。
func DefaultBackend() string {
	return defaultBackendFor(runtime.GOOS)
}

func defaultBackendFor(goos string) string {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "secret-service"
	case "windows":
		return "wincred"
	default:
		return "keyring"
	}
}

// Open 按名称打开 backend；name 为空或 auto 时使用平台默认值，
// 平台默认 backend 未注册时退回 keyring。
func Open(name string, opts Options) (keychain.Store, *errors.XError) {
	if name == "" || name == BackendAuto {
		name = DefaultBackend()
		if _, ok := Get(name); !ok {
			name = "keyring"
		}
	}
	d, ok := Get(name)
	if !ok {
		return nil, errors.New(errors.CodeBackendUnsupported, "unsupported keychain backend", map[string]any{
			"backend":   name,
			"available": RegisteredNames(),
		})
	}
	return d.Open(opts)
}
