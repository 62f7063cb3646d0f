// Package oskeyring 通过 zalando/go-keyring 访问系统钥匙串
// （macOS Keychain、Linux Secret Service、Windows Credential Manager）。
//
// go-keyring 不支持枚举，因此本 backend 在钥匙串中额外维护一份账户索引
// （service=xcred.index, account=accounts），Insert/Delete 时同步更新。
package oskeyring

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/log"
	"github.com/zx06/xcred/internal/store"
)

const (
	Name = "keyring"

	indexService = "xcred.index"
	indexAccount = "accounts"
)

func init() {
	store.Register(Name, driver{})
}

type driver struct{}

func (driver) Open(opts store.Options) (keychain.Store, *errors.XError) {
	return New(opts.Logger), nil
}

// Store 实现 keychain.Store。mu 保护索引的读-改-写。
type Store struct {
	mu     sync.Mutex
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{logger: logger}
}

func (s *Store) Find(q keychain.Query) (any, keychain.Status) {
	if q.Class != keychain.ClassGenericPassword {
		return nil, keychain.StatusParam
	}
	if q.Limit == keychain.LimitOne {
		if q.Service == "" || q.Account == "" {
			return nil, keychain.StatusParam
		}
		v, err := keyring.Get(q.Service, q.Account)
		if err != nil {
			return nil, s.statusFor("get", q, err)
		}
		if !q.ReturnData {
			return nil, keychain.StatusSuccess
		}
		return []byte(v), keychain.StatusSuccess
	}

	s.mu.Lock()
	idx, err := s.loadIndex()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("keyring index unreadable", "error", err)
		return nil, keychain.StatusDecode
	}

	var out []any
	for _, service := range idx.services() {
		for _, account := range idx[service] {
			if !q.Matches(service, account) {
				continue
			}
			v, err := keyring.Get(service, account)
			if stderrors.Is(err, keyring.ErrNotFound) {
				// 索引过期（条目被其他程序删除）
				continue
			}
			if err != nil {
				return nil, s.statusFor("get", keychain.ItemQuery(service, account), err)
			}
			out = append(out, []byte(v))
		}
	}
	if len(out) == 0 {
		return nil, keychain.StatusItemNotFound
	}
	if !q.ReturnData {
		return nil, keychain.StatusSuccess
	}
	return out, keychain.StatusSuccess
}

func (s *Store) Insert(q keychain.Query, data []byte) keychain.Status {
	if st := checkKey(q); st != keychain.StatusSuccess {
		return st
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := keyring.Get(q.Service, q.Account)
	if err == nil {
		return keychain.StatusDuplicateItem
	}
	if !stderrors.Is(err, keyring.ErrNotFound) {
		return s.statusFor("get", q, err)
	}
	if err := keyring.Set(q.Service, q.Account, string(data)); err != nil {
		return s.statusFor("set", q, err)
	}
	s.updateIndex(func(idx index) { idx.add(q.Service, q.Account) })
	return keychain.StatusSuccess
}

func (s *Store) Update(q keychain.Query, attrs keychain.Attributes) keychain.Status {
	if st := checkKey(q); st != keychain.StatusSuccess {
		return st
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := keyring.Get(q.Service, q.Account); err != nil {
		return s.statusFor("get", q, err)
	}
	if err := keyring.Set(q.Service, q.Account, string(attrs.Data)); err != nil {
		return s.statusFor("set", q, err)
	}
	return keychain.StatusSuccess
}

func (s *Store) Delete(q keychain.Query) keychain.Status {
	if st := checkKey(q); st != keychain.StatusSuccess {
		return st
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := keyring.Delete(q.Service, q.Account); err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			s.updateIndex(func(idx index) { idx.remove(q.Service, q.Account) })
		}
		return s.statusFor("delete", q, err)
	}
	s.updateIndex(func(idx index) { idx.remove(q.Service, q.Account) })
	return keychain.StatusSuccess
}

func checkKey(q keychain.Query) keychain.Status {
	if q.Service == "" || q.Account == "" || q.Service == indexService {
		return keychain.StatusParam
	}
	return keychain.StatusSuccess
}

func (s *Store) statusFor(op string, q keychain.Query, err error) keychain.Status {
	st := statusFor(err)
	if st != keychain.StatusItemNotFound {
		s.logger.Debug("keyring "+op+" failed", "service", q.Service, "account", q.Account, "status", st, "error", err)
	}
	return st
}

func statusFor(err error) keychain.Status {
	switch {
	case err == nil:
		return keychain.StatusSuccess
	case stderrors.Is(err, keyring.ErrNotFound):
		return keychain.StatusItemNotFound
	case stderrors.Is(err, keyring.ErrSetDataTooBig):
		return keychain.StatusParam
	default:
		return keychain.StatusIO
	}
}

// index 是 service -> 排序后的 account 列表。
type index map[string][]string

func (idx index) services() []string {
	out := make([]string, 0, len(idx))
	for k := range idx {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (idx index) add(service, account string) {
	accounts := idx[service]
	i := sort.SearchStrings(accounts, account)
	if i < len(accounts) && accounts[i] == account {
		return
	}
	accounts = append(accounts, "")
	copy(accounts[i+1:], accounts[i:])
	accounts[i] = account
	idx[service] = accounts
}

func (idx index) remove(service, account string) {
	accounts := idx[service]
	i := sort.SearchStrings(accounts, account)
	if i >= len(accounts) || accounts[i] != account {
		return
	}
	accounts = append(accounts[:i], accounts[i+1:]...)
	if len(accounts) == 0 {
		delete(idx, service)
		return
	}
	idx[service] = accounts
}

// loadIndex 调用方需持有 s.mu。
func (s *Store) loadIndex() (index, error) {
	raw, err := keyring.Get(indexService, indexAccount)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return index{}, nil
	}
	if err != nil {
		return nil, err
	}
	idx := index{}
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		return nil, err
	}
	for service := range idx {
		sort.Strings(idx[service])
	}
	return idx, nil
}

// updateIndex 调用方需持有 s.mu。索引损坏时从空索引重建；
// 索引写入失败只记录日志，不影响条目本身的写入结果。
func (s *Store) updateIndex(fn func(index)) {
	idx, err := s.loadIndex()
	if err != nil {
		s.logger.Warn("keyring index unreadable, rebuilding", "error", err)
		idx = index{}
	}
	fn(idx)
	if len(idx) == 0 {
		if err := keyring.Delete(indexService, indexAccount); err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
			s.logger.Warn("failed to clear keyring index", "error", err)
		}
		return
	}
	b, err := json.Marshal(idx)
	if err != nil {
		s.logger.Warn("failed to encode keyring index", "error", err)
		return
	}
	if err := keyring.Set(indexService, indexAccount, string(b)); err != nil {
		s.logger.Warn("failed to write keyring index", "error", err)
	}
}
