// Package wincred 通过 Windows Credential Manager 保存通用密码。
//
// 条目的 TargetName 为 "service:account"，与 go-keyring 的约定一致，
// 因此两个 backend 写入的条目可以互相读取。
package wincred

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const Name = "wincred"

// ownerComment 标记本 backend 写入的凭据；带此标记的 blob 原样读回。
const ownerComment = "written by xcred"

// https://learn.microsoft.com/en-us/windows/win32/api/wincred/ns-wincred-credentiala
const (
	maxTargetNameLength = 32767
	maxUserNameLength   = 513
	maxBlobSize         = 5 * 512
)

func targetName(service, account string) string {
	return service + ":" + account
}

func targetFilter(service string) string {
	if service == "" {
		return "*"
	}
	return service + ":*"
}

// splitTarget 从 TargetName 与 UserName 还原 (service, account)。
// service 本身可能含有 ':'，所以以 UserName 为准截取后缀。
func splitTarget(target, userName string) (service, account string, ok bool) {
	if userName == "" {
		return "", "", false
	}
	suffix := ":" + userName
	if !strings.HasSuffix(target, suffix) {
		return "", "", false
	}
	service = strings.TrimSuffix(target, suffix)
	if service == "" {
		return "", "", false
	}
	return service, userName, true
}

func validLengths(service, account string, data []byte) bool {
	return len(targetName(service, account)) <= maxTargetNameLength &&
		len(account) <= maxUserNameLength &&
		len(data) <= maxBlobSize
}

// readBlob 原样返回本程序写入的字节。其他工具（cmdkey、控制面板）写入的
// UTF-16LE 文本会被转换为 UTF-8。
func readBlob(comment string, blob []byte) []byte {
	if comment == ownerComment || !looksUTF16LE(blob) {
		return blob
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, blob)
	if err != nil || !utf8.Valid(out) {
		return blob
	}
	return out
}

// looksUTF16LE: 非空、偶数长度，且每个高位字节都是 0（ASCII 范围的 UTF-16LE）。
func looksUTF16LE(b []byte) bool {
	if len(b) == 0 || len(b)%2 != 0 {
		return false
	}
	for i := 0; i < len(b); i += 2 {
		if b[i] == 0 || b[i+1] != 0 {
			return false
		}
	}
	return true
}
