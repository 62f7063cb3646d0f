// Package keychain 是对平台凭据存储的薄封装：按 (service, account) 读、写、删、列举通用密码。
//
// 存储、加密与访问控制全部由外部 Store 负责；本包只构造查询描述、调用 Store，
// 并把状态码翻译为 *errors.XError。每个核心操作都有一个不返回错误的便捷版本，
// 见 convenience.go。
package keychain

import (
	"crypto/subtle"
	"log/slog"
	"unicode/utf8"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/log"
)

// Keychain 持有 Store 句柄；除写锁表外不保存任何状态。
type Keychain struct {
	store  Store
	logger *slog.Logger
	locks  *keyLocks
}

type Option func(*Keychain)

// WithLogger 设置 debug 日志输出；日志只包含 service/account/status，不包含数据。
func WithLogger(l *slog.Logger) Option {
	return func(k *Keychain) {
		if l != nil {
			k.logger = l
		}
	}
}

func New(store Store, opts ...Option) *Keychain {
	k := &Keychain{
		store:  store,
		logger: log.Discard(),
		locks:  newKeyLocks(),
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Store 返回底层 store。
func (k *Keychain) Store() Store { return k.store }

// AllAccounts 返回所有匹配条目的数据（按 UTF-8 解码）；service 为空时不过滤。
// 非 []byte 元素或非法 UTF-8 解码为 ""，不会被跳过。没有任何条目时返回空切片。
func (k *Keychain) AllAccounts(service string) ([]string, *errors.XError) {
	q := ListQuery(service)
	payload, st := k.store.Find(q)
	k.logger.Debug("keychain list", "service", service, "status", st)

	switch st {
	case StatusSuccess:
	case StatusDuplicateItem:
		return nil, errDuplicateItem(q)
	case StatusItemNotFound:
		return []string{}, nil
	default:
		return nil, errUnexpectedStatus(q, st)
	}

	switch v := payload.(type) {
	case nil:
		return nil, errInvalidFormat(q, payload)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			b, ok := item.([]byte)
			if !ok {
				out = append(out, "")
				continue
			}
			out = append(out, decodeUTF8(b))
		}
		return out, nil
	case []byte:
		return []string{decodeUTF8(v)}, nil
	default:
		return []string{}, nil
	}
}

// ReadValue 读取 (service, account) 的数据。
func (k *Keychain) ReadValue(service, account string) ([]byte, *errors.XError) {
	q := ItemQuery(service, account)
	if xe := validateKey(q); xe != nil {
		return nil, xe
	}
	payload, st := k.store.Find(q)
	k.logger.Debug("keychain read", "service", service, "account", account, "status", st)

	switch st {
	case StatusSuccess:
	case StatusDuplicateItem:
		return nil, errDuplicateItem(q)
	case StatusItemNotFound:
		return nil, errItemNotFound(q)
	default:
		return nil, errUnexpectedStatus(q, st)
	}

	data, ok := payload.([]byte)
	if !ok {
		return nil, errInvalidFormat(q, payload)
	}
	return data, nil
}

// WriteValue 写入 (service, account)：值未变化时直接返回 true 且不访问 store 的写接口；
// 条目不存在或为空时 Insert，否则 Update。
//
// 同一进程内对同一 key 的写入被串行化；跨进程的竞争仍由 store 决定结果。
func (k *Keychain) WriteValue(service, account string, data []byte) (bool, *errors.XError) {
	q := ItemQuery(service, account)
	if xe := validateKey(q); xe != nil {
		return false, xe
	}
	unlock := k.locks.lock(q.key())
	defer unlock()

	existing, xe := k.ReadValue(service, account)
	if xe != nil && xe.Code != errors.CodeItemNotFound {
		return false, xe
	}
	if xe == nil && subtle.ConstantTimeCompare(existing, data) == 1 {
		k.logger.Debug("keychain write skipped", "service", service, "account", account)
		return true, nil
	}

	q.ReturnData = false
	var st Status
	if xe != nil || len(existing) == 0 {
		st = k.store.Insert(q, data)
		k.logger.Debug("keychain insert", "service", service, "account", account, "status", st)
	} else {
		st = k.store.Update(q, Attributes{Data: data})
		k.logger.Debug("keychain update", "service", service, "account", account, "status", st)
	}

	switch st {
	case StatusSuccess:
		return true, nil
	case StatusDuplicateItem:
		return false, errDuplicateItem(q)
	default:
		return false, errUnexpectedStatus(q, st)
	}
}

// DeleteValue 删除 (service, account)。条目不存在返回 ItemNotFound。
func (k *Keychain) DeleteValue(service, account string) (bool, *errors.XError) {
	q := ItemQuery(service, account)
	q.ReturnData = false
	if xe := validateKey(q); xe != nil {
		return false, xe
	}
	unlock := k.locks.lock(q.key())
	defer unlock()

	st := k.store.Delete(q)
	k.logger.Debug("keychain delete", "service", service, "account", account, "status", st)

	switch st {
	case StatusSuccess:
		return true, nil
	case StatusItemNotFound:
		return false, errItemNotFound(q)
	default:
		return false, errUnexpectedStatus(q, st)
	}
}

func validateKey(q Query) *errors.XError {
	if q.Service == "" || q.Account == "" {
		return errUnexpectedStatus(q, StatusParam)
	}
	return nil
}

func decodeUTF8(b []byte) string {
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}
