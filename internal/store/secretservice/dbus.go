//go:build linux || freebsd || openbsd || netbsd || dragonfly

package secretservice

import (
	stderrors "errors"
	"fmt"
	"strings"

	dbus "github.com/godbus/dbus/v5"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/store"
)

const (
	busName             = "org.freedesktop.secrets"
	busPath             = dbus.ObjectPath("/org/freedesktop/secrets")
	defaultCollection   = dbus.ObjectPath("/org/freedesktop/secrets/aliases/default")
	serviceInterface    = "org.freedesktop.Secret.Service"
	collectionInterface = "org.freedesktop.Secret.Collection"
	itemInterface       = "org.freedesktop.Secret.Item"
	sessionInterface    = "org.freedesktop.Secret.Session"
	promptInterface     = "org.freedesktop.Secret.Prompt"

	errIsLocked       = "org.freedesktop.Secret.Error.IsLocked"
	errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	errNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"

	dbusInterface = "org.freedesktop.DBus"
)

func init() {
	store.Register(Name, driver{})
}

type driver struct{}

func (driver) Open(opts store.Options) (keychain.Store, *errors.XError) {
	s, xe := New(opts)
	if xe != nil {
		return nil, xe
	}
	return s, nil
}

// New 连接会话总线并确认 Secret Service 可用。
func New(opts store.Options) (*Store, *errors.XError) {
	return openStore(dialSessionBus, opts.Logger)
}

// secret 对应 Secret Service 的 (oayays) 结构。
type secret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

type dbusService struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func dialSessionBus() (service, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	return &dbusService{conn: conn, obj: conn.Object(busName, busPath)}, nil
}

// available: 服务已在总线上，或可由总线按需激活。
func (d *dbusService) available() error {
	bus := d.conn.BusObject()
	var owned bool
	if err := bus.Call(dbusInterface+".NameHasOwner", 0, busName).Store(&owned); err != nil {
		return fmt.Errorf("%w: %v", errUnavailable, err)
	}
	if owned {
		return nil
	}
	var activatable []string
	if err := bus.Call(dbusInterface+".ListActivatableNames", 0).Store(&activatable); err != nil {
		return fmt.Errorf("%w: %v", errUnavailable, err)
	}
	for _, name := range activatable {
		if name == busName {
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no owner and is not activatable", errUnavailable, busName)
}

func (d *dbusService) collection() dbus.BusObject {
	return d.conn.Object(busName, defaultCollection)
}

func (d *dbusService) search(attrs map[string]string) ([]itemPath, error) {
	if err := d.unlock(defaultCollection); err != nil {
		return nil, err
	}
	var results []dbus.ObjectPath
	if err := d.collection().Call(collectionInterface+".SearchItems", 0, attrs).Store(&results); err != nil {
		return nil, translate(err)
	}
	out := make([]itemPath, len(results))
	for i, p := range results {
		out[i] = itemPath(p)
	}
	return out, nil
}

func (d *dbusService) attributes(item itemPath) (map[string]string, error) {
	v, err := d.conn.Object(busName, dbus.ObjectPath(item)).GetProperty(itemInterface + ".Attributes")
	if err != nil {
		return nil, translate(err)
	}
	attrs, ok := v.Value().(map[string]string)
	if !ok {
		return nil, fmt.Errorf("unexpected attributes type %T", v.Value())
	}
	return attrs, nil
}

func (d *dbusService) secrets(items []itemPath) ([][]byte, error) {
	session, err := d.openSession()
	if err != nil {
		return nil, err
	}
	defer d.closeSession(session)

	out := make([][]byte, 0, len(items))
	for _, item := range items {
		path := dbus.ObjectPath(item)
		if err := d.unlock(path); err != nil {
			return nil, err
		}
		var s secret
		if err := d.conn.Object(busName, path).Call(itemInterface+".GetSecret", 0, session.Path()).Store(&s); err != nil {
			return nil, translate(err)
		}
		if s.Value == nil {
			s.Value = []byte{}
		}
		out = append(out, s.Value)
	}
	return out, nil
}

func (d *dbusService) create(label string, attrs map[string]string, value []byte) error {
	session, err := d.openSession()
	if err != nil {
		return err
	}
	defer d.closeSession(session)

	props := map[string]dbus.Variant{
		itemInterface + ".Label":      dbus.MakeVariant(label),
		itemInterface + ".Attributes": dbus.MakeVariant(attrs),
	}
	s := newSecret(session.Path(), value)
	var item, prompt dbus.ObjectPath
	if err := d.collection().Call(collectionInterface+".CreateItem", 0, props, s, false).Store(&item, &prompt); err != nil {
		return translate(err)
	}
	return d.handlePrompt(prompt)
}

func (d *dbusService) replace(item itemPath, value []byte) error {
	session, err := d.openSession()
	if err != nil {
		return err
	}
	defer d.closeSession(session)

	s := newSecret(session.Path(), value)
	if err := d.conn.Object(busName, dbus.ObjectPath(item)).Call(itemInterface+".SetSecret", 0, s).Err; err != nil {
		return translate(err)
	}
	return nil
}

func (d *dbusService) remove(item itemPath) error {
	var prompt dbus.ObjectPath
	if err := d.conn.Object(busName, dbus.ObjectPath(item)).Call(itemInterface+".Delete", 0).Store(&prompt); err != nil {
		return translate(err)
	}
	return d.handlePrompt(prompt)
}

func newSecret(session dbus.ObjectPath, value []byte) secret {
	if value == nil {
		value = []byte{}
	}
	return secret{
		Session:     session,
		Parameters:  []byte{},
		Value:       value,
		ContentType: "application/octet-stream",
	}
}

func (d *dbusService) openSession() (dbus.BusObject, error) {
	var output dbus.Variant
	var path dbus.ObjectPath
	if err := d.obj.Call(serviceInterface+".OpenSession", 0, "plain", dbus.MakeVariant("")).Store(&output, &path); err != nil {
		return nil, translate(err)
	}
	return d.conn.Object(busName, path), nil
}

func (d *dbusService) closeSession(session dbus.BusObject) {
	_ = session.Call(sessionInterface+".Close", 0).Err
}

func (d *dbusService) unlock(path dbus.ObjectPath) error {
	var unlocked []dbus.ObjectPath
	var prompt dbus.ObjectPath
	if err := d.obj.Call(serviceInterface+".Unlock", 0, []dbus.ObjectPath{path}).Store(&unlocked, &prompt); err != nil {
		return translate(err)
	}
	return d.handlePrompt(prompt)
}

// handlePrompt 执行 prompt 并等待 Completed 信号；"/" 表示无需交互。
func (d *dbusService) handlePrompt(prompt dbus.ObjectPath) error {
	if prompt == "" || prompt == "/" {
		return nil
	}
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(prompt),
		dbus.WithMatchInterface(promptInterface),
	}
	if err := d.conn.AddMatchSignal(opts...); err != nil {
		return translate(err)
	}
	defer func() { _ = d.conn.RemoveMatchSignal(opts...) }()

	signals := make(chan *dbus.Signal, 1)
	d.conn.Signal(signals)
	defer d.conn.RemoveSignal(signals)

	if err := d.conn.Object(busName, prompt).Call(promptInterface+".Prompt", 0, "").Err; err != nil {
		return translate(err)
	}
	for sig := range signals {
		if sig.Path != prompt || sig.Name != promptInterface+".Completed" || len(sig.Body) < 1 {
			continue
		}
		if dismissed, _ := sig.Body[0].(bool); dismissed {
			return errDismissed
		}
		return nil
	}
	return fmt.Errorf("%w: signal channel closed", errUnavailable)
}

// translate 把 D-Bus 错误名映射到包内哨兵错误，其余原样返回。
func translate(err error) error {
	var de dbus.Error
	if !stderrors.As(err, &de) {
		var dp *dbus.Error
		if !stderrors.As(err, &dp) || dp == nil {
			return err
		}
		de = *dp
	}
	switch {
	case de.Name == errIsLocked:
		return fmt.Errorf("%w: %v", errLocked, err)
	case de.Name == errServiceUnknown, de.Name == errNameHasNoOwner:
		return fmt.Errorf("%w: %v", errUnavailable, err)
	case strings.HasPrefix(de.Name, "org.freedesktop.Secret.Error.NoSuch"):
		return fmt.Errorf("%w: %v", errUnavailable, err)
	default:
		return err
	}
}
