// Package memory 提供进程内的 keychain.Store，用于测试与 --backend memory。
package memory

import (
	"sort"
	"sync"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/store"
)

const Name = "memory"

func init() {
	store.Register(Name, driver{})
}

type driver struct{}

func (driver) Open(store.Options) (keychain.Store, *errors.XError) {
	return New(), nil
}

// Store 保存 service -> account -> data。所有读写返回数据副本。
type Store struct {
	mu        sync.Mutex
	items     map[string]map[string][]byte
	mutations int
}

func New() *Store {
	return &Store{items: make(map[string]map[string][]byte)}
}

func (s *Store) Find(q keychain.Query) (any, keychain.Status) {
	if q.Class != keychain.ClassGenericPassword {
		return nil, keychain.StatusParam
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.Limit == keychain.LimitOne {
		if q.Service == "" || q.Account == "" {
			return nil, keychain.StatusParam
		}
		data, ok := s.items[q.Service][q.Account]
		if !ok {
			return nil, keychain.StatusItemNotFound
		}
		if !q.ReturnData {
			return nil, keychain.StatusSuccess
		}
		return clone(data), keychain.StatusSuccess
	}

	var out []any
	for _, service := range sortedKeys(s.items) {
		accounts := s.items[service]
		for _, account := range sortedKeys(accounts) {
			if !q.Matches(service, account) {
				continue
			}
			out = append(out, clone(accounts[account]))
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
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if q.Service == "" || q.Account == "" {
		return keychain.StatusParam
	}
	if _, ok := s.items[q.Service][q.Account]; ok {
		return keychain.StatusDuplicateItem
	}
	if s.items[q.Service] == nil {
		s.items[q.Service] = make(map[string][]byte)
	}
	s.items[q.Service][q.Account] = clone(data)
	return keychain.StatusSuccess
}

func (s *Store) Update(q keychain.Query, attrs keychain.Attributes) keychain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	if _, ok := s.items[q.Service][q.Account]; !ok {
		return keychain.StatusItemNotFound
	}
	s.items[q.Service][q.Account] = clone(attrs.Data)
	return keychain.StatusSuccess
}

func (s *Store) Delete(q keychain.Query) keychain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
	accounts, ok := s.items[q.Service]
	if !ok {
		return keychain.StatusItemNotFound
	}
	if _, ok := accounts[q.Account]; !ok {
		return keychain.StatusItemNotFound
	}
	delete(accounts, q.Account)
	if len(accounts) == 0 {
		delete(s.items, q.Service)
	}
	return keychain.StatusSuccess
}

// Mutations 返回 Insert/Update/Delete 被调用的总次数（不论成功与否）。
func (s *Store) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// Len 返回条目数。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, accounts := range s.items {
		n += len(accounts)
	}
	return n
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
