package output

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/zx06/xcred/internal/errors"
)

type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// formats 的顺序即帮助文本中的顺序。
var formats = []Format{FormatJSON, FormatYAML, FormatTable, FormatCSV, FormatAuto}

func IsValid(f Format) bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

// FormatNames 返回 "json|yaml|table|csv|auto"，用于 flag 说明与 spec。
func FormatNames() string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// ParseFormat 校验格式字符串（不解析 auto）。
func ParseFormat(s string) (Format, *errors.XError) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !IsValid(f) {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{
			"format":  s,
			"allowed": FormatNames(),
		})
	}
	return f, nil
}

const (
	EncodingUTF8   = "utf-8"
	EncodingBase64 = "base64"
)

// EncodeSecret 把 secret 转为可放入 envelope 的文本：合法 UTF-8 原样返回，
// 其他字节用标准 base64 编码，避免 JSON 编码时被替换为 U+FFFD。
func EncodeSecret(b []byte) (value, encoding string) {
	if utf8.Valid(b) {
		return string(b), EncodingUTF8
	}
	return base64.StdEncoding.EncodeToString(b), EncodingBase64
}
