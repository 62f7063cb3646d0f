package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/output"
)

// GetFlags holds the flags for the get command
type GetFlags struct {
	Raw bool
}

// NewGetCommand creates the get command
func NewGetCommand(w *output.Writer) *cobra.Command {
	flags := &GetFlags{}

	cmd := &cobra.Command{
		Use:   "get <service> <account>",
		Short: "Read the secret stored for (service, account)",
		Args:  argsBetween(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args, flags, w)
		},
	}

	cmd.Flags().BoolVar(&flags.Raw, "raw", false, "Write the secret bytes only, without an envelope (binary safe)")

	return cmd
}

func runGet(args []string, flags *GetFlags, w *output.Writer) error {
	service, account := args[0], args[1]
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	kc, xe := openKeychain()
	if xe != nil {
		return xe
	}
	data, xe := kc.ReadValue(service, account)
	if xe != nil {
		return xe
	}

	if flags.Raw {
		if _, err := w.Out.Write(data); err != nil {
			return errors.Wrap(errors.CodeInternal, "failed to write secret", nil, err)
		}
		return nil
	}

	// 非 UTF-8 的 secret 以 base64 输出；--raw 始终输出原始字节
	value, encoding := output.EncodeSecret(data)
	return w.WriteOK(format, map[string]any{
		"service":  service,
		"account":  account,
		"value":    value,
		"encoding": encoding,
	})
}
