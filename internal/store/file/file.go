// Package file 是没有系统钥匙串时（CI、容器）的文件 backend。
// 数据以 JSON 保存，文件权限 0600；不做加密，安全性依赖文件权限。
package file

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/log"
	"github.com/zx06/xcred/internal/store"
)

const (
	Name = "file"

	fileMode = 0o600
	dirMode  = 0o700
)

func init() {
	store.Register(Name, driver{})
}

type driver struct{}

func (driver) Open(opts store.Options) (keychain.Store, *errors.XError) {
	if opts.FilePath == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "file backend requires file_path", nil)
	}
	return New(opts.FilePath, opts.Logger), nil
}

// data 是 service -> account -> secret；[]byte 在 JSON 中为 base64。
type data map[string]map[string][]byte

type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{path: path, logger: logger}
}

// Path 返回数据文件路径。
func (s *Store) Path() string { return s.path }

func (s *Store) Find(q keychain.Query) (any, keychain.Status) {
	if q.Class != keychain.ClassGenericPassword {
		return nil, keychain.StatusParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, st := s.load()
	if st != keychain.StatusSuccess {
		return nil, st
	}

	if q.Limit == keychain.LimitOne {
		if q.Service == "" || q.Account == "" {
			return nil, keychain.StatusParam
		}
		v, ok := d[q.Service][q.Account]
		if !ok {
			return nil, keychain.StatusItemNotFound
		}
		if !q.ReturnData {
			return nil, keychain.StatusSuccess
		}
		if v == nil {
			v = []byte{}
		}
		return v, keychain.StatusSuccess
	}

	var out []any
	for _, service := range sortedKeys(d) {
		for _, account := range sortedKeys(d[service]) {
			if q.Matches(service, account) {
				out = append(out, d[service][account])
			}
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

func (s *Store) Insert(q keychain.Query, secret []byte) keychain.Status {
	if q.Service == "" || q.Account == "" {
		return keychain.StatusParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, st := s.load()
	if st != keychain.StatusSuccess {
		return st
	}
	if _, ok := d[q.Service][q.Account]; ok {
		return keychain.StatusDuplicateItem
	}
	if d[q.Service] == nil {
		d[q.Service] = map[string][]byte{}
	}
	d[q.Service][q.Account] = secret
	return s.save(d)
}

func (s *Store) Update(q keychain.Query, attrs keychain.Attributes) keychain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, st := s.load()
	if st != keychain.StatusSuccess {
		return st
	}
	if _, ok := d[q.Service][q.Account]; !ok {
		return keychain.StatusItemNotFound
	}
	d[q.Service][q.Account] = attrs.Data
	return s.save(d)
}

func (s *Store) Delete(q keychain.Query) keychain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, st := s.load()
	if st != keychain.StatusSuccess {
		return st
	}
	if _, ok := d[q.Service][q.Account]; !ok {
		return keychain.StatusItemNotFound
	}
	delete(d[q.Service], q.Account)
	if len(d[q.Service]) == 0 {
		delete(d, q.Service)
	}
	return s.save(d)
}

func (s *Store) load() (data, keychain.Status) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data{}, keychain.StatusSuccess
	}
	if err != nil {
		s.logger.Debug("file backend read failed", "path", s.path, "error", err)
		return nil, keychain.StatusIO
	}
	d := data{}
	if err := json.Unmarshal(raw, &d); err != nil {
		s.logger.Warn("file backend data is corrupt", "path", s.path, "error", err)
		return nil, keychain.StatusDecode
	}
	return d, keychain.StatusSuccess
}

func (s *Store) save(d data) keychain.Status {
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		s.logger.Debug("file backend mkdir failed", "path", s.path, "error", err)
		return keychain.StatusIO
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return keychain.StatusIO
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, fileMode); err != nil {
		s.logger.Debug("file backend write failed", "path", tmp, "error", err)
		return keychain.StatusIO
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		s.logger.Debug("file backend rename failed", "path", s.path, "error", err)
		return keychain.StatusIO
	}
	return keychain.StatusSuccess
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
