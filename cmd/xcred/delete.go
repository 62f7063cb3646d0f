package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcred/internal/output"
)

// NewDeleteCommand creates the delete command
func NewDeleteCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <service> <account>",
		Aliases: []string{"rm"},
		Short:   "Delete the secret stored for (service, account)",
		Args:    argsBetween(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args, w)
		},
	}
}

func runDelete(args []string, w *output.Writer) error {
	service, account := args[0], args[1]
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	kc, xe := openKeychain()
	if xe != nil {
		return xe
	}
	deleted, xe := kc.DeleteValue(service, account)
	if xe != nil {
		return xe
	}

	return w.WriteOK(format, map[string]any{
		"service": service,
		"account": account,
		"deleted": deleted,
	})
}
