package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zx06/xcred/internal/app"
	"github.com/zx06/xcred/internal/config"
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/keychain"
	"github.com/zx06/xcred/internal/log"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the resolved configuration
type Config struct {
	FormatStr   string
	ConfigStr   string
	ProfileStr  string
	BackendStr  string
	LogLevelStr string
	Resolved    config.Resolved
	Logger      *slog.Logger
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "xcred",
		Short:         "Read and write secrets in the OS credential store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI > ENV > Config
			configSet := cmd.Flags().Changed("config")
			if configSet && GlobalConfig.ConfigStr == "" {
				return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
			}

			r, xe := config.Resolve(config.Options{
				ConfigPath:     GlobalConfig.ConfigStr,
				CLIProfile:     GlobalConfig.ProfileStr,
				CLIProfileSet:  cmd.Flags().Changed("profile"),
				CLIFormat:      GlobalConfig.FormatStr,
				CLIFormatSet:   cmd.Flags().Changed("format"),
				CLIBackend:     GlobalConfig.BackendStr,
				CLIBackendSet:  cmd.Flags().Changed("backend"),
				CLILogLevel:    GlobalConfig.LogLevelStr,
				CLILogLevelSet: cmd.Flags().Changed("log-level"),
				EnvProfile:     os.Getenv("XCRED_PROFILE"),
				EnvFormat:      os.Getenv("XCRED_FORMAT"),
				EnvBackend:     os.Getenv("XCRED_BACKEND"),
				EnvLogLevel:    os.Getenv("XCRED_LOG_LEVEL"),
			})
			if xe != nil {
				return xe
			}

			logger, xe := log.NewWithLevel(os.Stderr, r.LogLevel)
			if xe != nil {
				return xe
			}

			GlobalConfig.Resolved = r
			GlobalConfig.FormatStr = r.Format
			GlobalConfig.ProfileStr = r.ProfileName
			GlobalConfig.BackendStr = r.Backend
			GlobalConfig.LogLevelStr = r.LogLevel
			GlobalConfig.Logger = logger
			logger.Debug("config resolved", "config_path", r.ConfigPath, "profile", r.ProfileName, "backend", r.Backend)
			return nil
		},
	}

	root.SetFlagErrorFunc(flagError)

	root.PersistentFlags().StringVar(&GlobalConfig.ConfigStr, "config", "", "Config file path (YAML); default: ./xcred.yaml or $HOME/.config/xcred/xcred.yaml")
	root.PersistentFlags().StringVarP(&GlobalConfig.ProfileStr, "profile", "p", "", "Profile name (config: profiles.<name>)")
	root.PersistentFlags().StringVarP(&GlobalConfig.FormatStr, "format", "f", "auto", "Output format: json|yaml|table|csv|auto")
	root.PersistentFlags().StringVar(&GlobalConfig.BackendStr, "backend", "", "Credential backend: auto|keyring|secret-service|wincred|file|memory")
	root.PersistentFlags().StringVar(&GlobalConfig.LogLevelStr, "log-level", "", "Log level: debug|info|warn|error (logs go to stderr)")

	return root
}

// openKeychain opens the keychain for the resolved profile
func openKeychain() (*keychain.Keychain, *errors.XError) {
	return app.OpenProfileKeychain(GlobalConfig.Resolved, logger())
}

func logger() *slog.Logger {
	if GlobalConfig.Logger == nil {
		return log.Discard()
	}
	return GlobalConfig.Logger
}
