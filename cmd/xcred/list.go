package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/xcred/internal/output"
)

// ListFlags holds the flags for the list command
type ListFlags struct {
	Service string
}

// listResult 同时满足 JSON envelope 与表格输出。
type listResult struct {
	Service string   `json:"service" yaml:"service"`
	Count   int      `json:"count" yaml:"count"`
	Values  []string `json:"values" yaml:"values"`
}

func (r listResult) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, 0, len(r.Values))
	for _, v := range r.Values {
		rows = append(rows, map[string]any{"value": v})
	}
	return []string{"value"}, rows, true
}

// NewListCommand creates the list command
func NewListCommand(w *output.Writer) *cobra.Command {
	flags := &ListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the secret values stored under a service",
		Args:  argsBetween(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(flags, w)
		},
	}

	cmd.Flags().StringVar(&flags.Service, "service", "", "Service name filter (empty: every service)")

	return cmd
}

func runList(flags *ListFlags, w *output.Writer) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}

	kc, xe := openKeychain()
	if xe != nil {
		return xe
	}
	values, xe := kc.AllAccounts(flags.Service)
	if xe != nil {
		return xe
	}

	return w.WriteOK(format, listResult{
		Service: flags.Service,
		Count:   len(values),
		Values:  values,
	})
}
