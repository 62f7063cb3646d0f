package keychain

import (
	"fmt"

	"github.com/zx06/xcred/internal/errors"
)

func queryDetails(q Query) map[string]any {
	d := map[string]any{}
	if q.Service != "" {
		d["service"] = q.Service
	}
	if q.Account != "" {
		d["account"] = q.Account
	}
	return d
}

func errDuplicateItem(q Query) *errors.XError {
	d := queryDetails(q)
	d["status"] = StatusDuplicateItem
	return errors.New(errors.CodeDuplicateItem, "duplicate item in keychain", d)
}

func errItemNotFound(q Query) *errors.XError {
	d := queryDetails(q)
	d["status"] = StatusItemNotFound
	return errors.New(errors.CodeItemNotFound, "item not found in keychain", d)
}

func errInvalidFormat(q Query, payload any) *errors.XError {
	d := queryDetails(q)
	d["payload_type"] = fmt.Sprintf("%T", payload)
	return errors.New(errors.CodeInvalidFormat, "keychain returned data in an unexpected format", d)
}

func errUnexpectedStatus(q Query, st Status) *errors.XError {
	d := queryDetails(q)
	d["status"] = st
	return errors.New(errors.CodeUnexpectedStatus, fmt.Sprintf("unexpected keychain status %d (%s)", int32(st), st), d)
}

// StatusOf 取出错误携带的原始 store 状态码。
func StatusOf(err error) (Status, bool) {
	xe, ok := errors.As(err)
	if !ok || xe.Details == nil {
		return 0, false
	}
	st, ok := xe.Details["status"].(Status)
	return st, ok
}

// IsNotFound 判断 err 是否为 ItemNotFound。
func IsNotFound(err error) bool {
	return errors.HasCode(err, errors.CodeItemNotFound)
}

// IsDuplicate 判断 err 是否为 DuplicateItem。
func IsDuplicate(err error) bool {
	return errors.HasCode(err, errors.CodeDuplicateItem)
}
