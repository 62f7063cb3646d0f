package log

import (
	"io"
	"log/slog"
	"strings"

	"github.com/zx06/xcred/internal/errors"
)

// New 返回写入到 w 的 slog.Logger（默认 level=INFO）。
// 注意：stdout=数据，日志应始终写 stderr（由调用方传入）。
func New(w io.Writer) *slog.Logger {
	return newLogger(w, slog.LevelInfo)
}

// NewWithLevel 与 New 相同，但日志级别由字符串指定（debug|info|warn|error，空串为 info）。
func NewWithLevel(w io.Writer, level string) (*slog.Logger, *errors.XError) {
	lv, xe := ParseLevel(level)
	if xe != nil {
		return nil, xe
	}
	return newLogger(w, lv), nil
}

// Discard 返回丢弃所有输出的 logger，供库代码的默认值使用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func ParseLevel(s string) (slog.Level, *errors.XError) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New(errors.CodeCfgInvalid, "invalid log level", map[string]any{"log_level": s})
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
