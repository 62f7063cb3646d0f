package main

import (
	"os"

	"github.com/spf13/cobra"

	"golang.org/x/term"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/output"
)

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f, xe := output.ParseFormat(s)
	if xe != nil {
		return "", xe
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f, xe := output.ParseFormat(s)
	if xe != nil {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	if xe, ok := errors.As(err); ok {
		return xe
	}
	// Preserve original error message
	return errors.Wrap(errors.CodeInternal, err.Error(), nil, err)
}

// argsBetween 与 cobra.RangeArgs 相同，但返回 CFG_INVALID 以得到稳定的退出码。
func argsBetween(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return errors.Wrap(errors.CodeCfgInvalid, err.Error(), map[string]any{"command": cmd.Name()}, err)
		}
		return nil
	}
}

// flagError 把 cobra 的 flag 解析错误转换为 CFG_INVALID。
func flagError(cmd *cobra.Command, err error) error {
	return errors.Wrap(errors.CodeCfgInvalid, err.Error(), map[string]any{"command": cmd.Name()}, err)
}
