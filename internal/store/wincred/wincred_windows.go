//go:build windows

package wincred

import (
	stderrors "errors"
	"log/slog"
	"syscall"

	"github.com/danieljoos/wincred"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/log"
	"github.com/zx06/xcred/internal/store"
)

func init() {
	store.Register(Name, driver{})
}

type driver struct{}

func (driver) Open(opts store.Options) (keychain.Store, *errors.XError) {
	return New(opts.Logger), nil
}

type Store struct {
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
		cred, err := wincred.GetGenericCredential(targetName(q.Service, q.Account))
		if err != nil {
			return nil, s.fail("get", q, err)
		}
		if !q.ReturnData {
			return nil, keychain.StatusSuccess
		}
		return readBlob(cred.Comment, cred.CredentialBlob), keychain.StatusSuccess
	}

	creds, err := wincred.FilteredList(targetFilter(q.Service))
	if err != nil {
		return nil, s.fail("list", q, err)
	}
	var out []any
	for _, c := range creds {
		service, account, ok := splitTarget(c.TargetName, c.UserName)
		if !ok || !q.Matches(service, account) {
			continue
		}
		if q.ReturnData {
			out = append(out, readBlob(c.Comment, c.CredentialBlob))
		} else {
			out = append(out, []byte{})
		}
	}
	if len(out) == 0 {
		return nil, keychain.StatusItemNotFound
	}
	return out, keychain.StatusSuccess
}

func (s *Store) Insert(q keychain.Query, data []byte) keychain.Status {
	if q.Service == "" || q.Account == "" || !validLengths(q.Service, q.Account, data) {
		return keychain.StatusParam
	}
	target := targetName(q.Service, q.Account)
	if _, err := wincred.GetGenericCredential(target); err == nil {
		return keychain.StatusDuplicateItem
	} else if !stderrors.Is(err, syscall.ERROR_NOT_FOUND) {
		return s.fail("get", q, err)
	}
	return s.write(q, target, data)
}

func (s *Store) Update(q keychain.Query, attrs keychain.Attributes) keychain.Status {
	if q.Service == "" || q.Account == "" || !validLengths(q.Service, q.Account, attrs.Data) {
		return keychain.StatusParam
	}
	target := targetName(q.Service, q.Account)
	if _, err := wincred.GetGenericCredential(target); err != nil {
		return s.fail("get", q, err)
	}
	return s.write(q, target, attrs.Data)
}

func (s *Store) Delete(q keychain.Query) keychain.Status {
	if q.Service == "" || q.Account == "" {
		return keychain.StatusParam
	}
	cred, err := wincred.GetGenericCredential(targetName(q.Service, q.Account))
	if err != nil {
		return s.fail("get", q, err)
	}
	if err := cred.Delete(); err != nil {
		return s.fail("delete", q, err)
	}
	return keychain.StatusSuccess
}

func (s *Store) write(q keychain.Query, target string, data []byte) keychain.Status {
	cred := wincred.NewGenericCredential(target)
	cred.UserName = q.Account
	cred.Comment = ownerComment
	cred.CredentialBlob = data
	cred.Persist = wincred.PersistLocalMachine
	if err := cred.Write(); err != nil {
		return s.fail("write", q, err)
	}
	return keychain.StatusSuccess
}

func (s *Store) fail(op string, q keychain.Query, err error) keychain.Status {
	st := keychain.StatusIO
	if stderrors.Is(err, syscall.ERROR_NOT_FOUND) {
		st = keychain.StatusItemNotFound
	}
	if st != keychain.StatusItemNotFound {
		s.logger.Debug("wincred "+op+" failed", "service", q.Service, "account", q.Account, "status", st, "error", err)
	}
	return st
}
