package secretservice

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/log"
)

const (
	Name = "secret-service"

	attrService = "service"
	attrAccount = "username"
)

var (
	errUnavailable = stderrors.New("secret service unavailable")
	errLocked      = stderrors.New("collection is locked")
	errDismissed   = stderrors.New("prompt dismissed")
)

// itemPath 是条目的对象路径。
type itemPath string

// service 是 Secret Service 上本 backend 用到的操作。dbus 实现见 dbus.go。
type service interface {
	available() error
	search(attrs map[string]string) ([]itemPath, error)
	attributes(item itemPath) (map[string]string, error)
	secrets(items []itemPath) ([][]byte, error)
	create(label string, attrs map[string]string, value []byte) error
	replace(item itemPath, value []byte) error
	remove(item itemPath) error
}

// Store 实现 keychain.Store。每次调用都会重新连接，不保存会话。
type Store struct {
	connect func() (service, error)
	logger  *slog.Logger
}

func newStore(connect func() (service, error), logger *slog.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{connect: connect, logger: logger}
}

// openStore 打开时先确认总线上有 Secret Service，不可用时返回 BACKEND_UNSUPPORTED，
// 而不是让之后的每次操作都失败为 not-available。
func openStore(connect func() (service, error), logger *slog.Logger) (*Store, *errors.XError) {
	svc, err := connect()
	if err == nil {
		err = svc.available()
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeBackendUnsupported, "secret service is not available", map[string]any{
			"backend": Name,
			"reason":  err.Error(),
			"hint":    "start a keyring daemon (gnome-keyring, KWallet) or use --backend file",
		}, err)
	}
	return newStore(connect, logger), nil
}

func itemAttributes(service, account string) map[string]string {
	return map[string]string{
		attrService: service,
		attrAccount: account,
	}
}

func itemLabel(service, account string) string {
	return fmt.Sprintf("Password for '%s' on '%s'", account, service)
}

func (s *Store) Find(q keychain.Query) (any, keychain.Status) {
	if q.Class != keychain.ClassGenericPassword {
		return nil, keychain.StatusParam
	}
	svc, err := s.connect()
	if err != nil {
		return nil, s.fail("connect", q, err)
	}

	if q.Limit == keychain.LimitOne {
		if q.Service == "" || q.Account == "" {
			return nil, keychain.StatusParam
		}
		item, st := s.findOne(svc, q)
		if st != keychain.StatusSuccess {
			return nil, st
		}
		if !q.ReturnData {
			return nil, keychain.StatusSuccess
		}
		values, err := svc.secrets([]itemPath{item})
		if err != nil {
			return nil, s.fail("get secret", q, err)
		}
		return values[0], keychain.StatusSuccess
	}

	search := map[string]string{}
	if q.Service != "" {
		search[attrService] = q.Service
	}
	found, err := svc.search(search)
	if err != nil {
		return nil, s.fail("search", q, err)
	}
	items := make([]itemPath, 0, len(found))
	for _, item := range found {
		attrs, err := svc.attributes(item)
		if err != nil {
			return nil, s.fail("attributes", q, err)
		}
		if attrs[attrService] == "" || attrs[attrAccount] == "" {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, keychain.StatusItemNotFound
	}
	if !q.ReturnData {
		return nil, keychain.StatusSuccess
	}
	values, err := svc.secrets(items)
	if err != nil {
		return nil, s.fail("get secrets", q, err)
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out, keychain.StatusSuccess
}

func (s *Store) Insert(q keychain.Query, data []byte) keychain.Status {
	if q.Service == "" || q.Account == "" {
		return keychain.StatusParam
	}
	svc, err := s.connect()
	if err != nil {
		return s.fail("connect", q, err)
	}
	found, err := svc.search(itemAttributes(q.Service, q.Account))
	if err != nil {
		return s.fail("search", q, err)
	}
	if len(found) > 0 {
		return keychain.StatusDuplicateItem
	}
	if err := svc.create(itemLabel(q.Service, q.Account), itemAttributes(q.Service, q.Account), data); err != nil {
		return s.fail("create", q, err)
	}
	return keychain.StatusSuccess
}

func (s *Store) Update(q keychain.Query, attrs keychain.Attributes) keychain.Status {
	svc, err := s.connect()
	if err != nil {
		return s.fail("connect", q, err)
	}
	item, st := s.findOne(svc, q)
	if st != keychain.StatusSuccess {
		return st
	}
	if err := svc.replace(item, attrs.Data); err != nil {
		return s.fail("set secret", q, err)
	}
	return keychain.StatusSuccess
}

func (s *Store) Delete(q keychain.Query) keychain.Status {
	svc, err := s.connect()
	if err != nil {
		return s.fail("connect", q, err)
	}
	item, st := s.findOne(svc, q)
	if st != keychain.StatusSuccess {
		return st
	}
	if err := svc.remove(item); err != nil {
		return s.fail("delete", q, err)
	}
	return keychain.StatusSuccess
}

// findOne 精确查找 (service, account)；多于一个匹配视为重复条目。
func (s *Store) findOne(svc service, q keychain.Query) (itemPath, keychain.Status) {
	found, err := svc.search(itemAttributes(q.Service, q.Account))
	if err != nil {
		return "", s.fail("search", q, err)
	}
	switch len(found) {
	case 0:
		return "", keychain.StatusItemNotFound
	case 1:
		return found[0], keychain.StatusSuccess
	default:
		return "", keychain.StatusDuplicateItem
	}
}

func (s *Store) fail(op string, q keychain.Query, err error) keychain.Status {
	st := statusFor(err)
	s.logger.Debug("secret service "+op+" failed", "service", q.Service, "account", q.Account, "status", st, "error", err)
	return st
}

func statusFor(err error) keychain.Status {
	switch {
	case err == nil:
		return keychain.StatusSuccess
	case stderrors.Is(err, errUnavailable):
		return keychain.StatusNotAvailable
	case stderrors.Is(err, errLocked):
		return keychain.StatusInteractionNotAllowed
	case stderrors.Is(err, errDismissed):
		return keychain.StatusAuthFailed
	default:
		return keychain.StatusIO
	}
}
