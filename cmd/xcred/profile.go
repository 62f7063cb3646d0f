package main

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/output"
)

// NewProfileCommand creates the profile command group
func NewProfileCommand(w *output.Writer) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}

	profileCmd.AddCommand(newProfileListCommand(w))
	profileCmd.AddCommand(newProfileShowCommand(w))

	return profileCmd
}

// newProfileListCommand creates the profile list command
func newProfileListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured profiles",
		Args:  argsBetween(0, 0),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			r := GlobalConfig.Resolved
			names := make([]string, 0, len(r.File.Profiles))
			for name := range r.File.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			profiles := make([]map[string]any, 0, len(names))
			for _, name := range names {
				p := r.File.Profiles[name]
				profiles = append(profiles, map[string]any{
					"name":        name,
					"description": p.Description,
					"backend":     backendOrDefault(p.Backend),
					"service":     p.Service,
					"current":     name == r.ProfileName,
				})
			}

			return w.WriteOK(format, map[string]any{
				"config_path": r.ConfigPath,
				"profiles":    profiles,
			})
		},
	}
}

// newProfileShowCommand creates the profile show command
func newProfileShowCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show profile details",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}

			r := GlobalConfig.Resolved
			p, ok := r.File.Profiles[name]
			if !ok {
				return errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"name": name})
			}

			result := map[string]any{
				"config_path": r.ConfigPath,
				"name":        name,
				"description": p.Description,
				"backend":     backendOrDefault(p.Backend),
				"service":     p.Service,
				"format":      p.Format,
			}
			if p.FilePath != "" {
				home, _ := os.UserHomeDir()
				result["file_path"] = config.ExpandHome(p.FilePath, home)
			}

			return w.WriteOK(format, result)
		},
	}
}

func backendOrDefault(b string) string {
	if b == "" {
		return config.DefaultBackend
	}
	return b
}
