package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/output"
)

// SetFlags holds the flags for the set command
type SetFlags struct {
	Stdin bool
}

// NewSetCommand creates the set command
func NewSetCommand(w *output.Writer) *cobra.Command {
	flags := &SetFlags{}

	cmd := &cobra.Command{
		Use:   "set <service> <account> [value]",
		Short: "Insert or update the secret for (service, account)",
		Long: "Insert or update the secret for (service, account).\n" +
			"Without a value argument the secret is read from stdin (--stdin) or prompted for on the terminal.",
		Args: argsBetween(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args, flags, os.Stdin, w)
		},
	}

	cmd.Flags().BoolVar(&flags.Stdin, "stdin", false, "Read the secret from stdin (one trailing newline is dropped)")

	return cmd
}

func runSet(args []string, flags *SetFlags, in io.Reader, w *output.Writer) error {
	service, account := args[0], args[1]
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	value, xe := readSecretValue(args, flags, in, w.Err)
	if xe != nil {
		return xe
	}

	kc, xe := openKeychain()
	if xe != nil {
		return xe
	}
	written, xe := kc.WriteValue(service, account, value)
	if xe != nil {
		return xe
	}

	return w.WriteOK(format, map[string]any{
		"service": service,
		"account": account,
		"written": written,
	})
}

// readSecretValue 按 参数 > --stdin > 终端提示 的顺序取得 secret。
func readSecretValue(args []string, flags *SetFlags, in io.Reader, prompt io.Writer) ([]byte, *errors.XError) {
	switch {
	case len(args) > 2 && flags.Stdin:
		return nil, errors.New(errors.CodeCfgInvalid, "value argument and --stdin are mutually exclusive", nil)
	case len(args) > 2:
		if args[2] == "" {
			return nil, errors.New(errors.CodeCfgInvalid, "secret value is empty", nil)
		}
		return []byte(args[2]), nil
	case flags.Stdin:
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, "failed to read stdin", nil, err)
		}
		b = trimNewline(b)
		if len(b) == 0 {
			return nil, errors.New(errors.CodeCfgInvalid, "secret from stdin is empty", nil)
		}
		return b, nil
	}

	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, errors.New(errors.CodeCfgInvalid, "secret value is required: pass it as an argument, use --stdin, or run in a terminal", nil)
	}
	_, _ = fmt.Fprint(prompt, "Secret: ")
	b, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to read secret from terminal", nil, err)
	}
	if len(b) == 0 {
		return nil, errors.New(errors.CodeCfgInvalid, "secret is empty", nil)
	}
	return b, nil
}

func trimNewline(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
