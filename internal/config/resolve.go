package config

import (
	"github.com/zx06/xcred/internal/errors"
)

const (
	DefaultFormat   = "auto"
	DefaultBackend  = "auto"
	DefaultLogLevel = "warn"
)

// Resolve 合并 config/profile/format/backend/log level：CLI > ENV > Config。
func Resolve(opts Options) (Resolved, *errors.XError) {
	// 1) 读取配置文件（如有）
	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}
	opts.fillDirs()

	// 2) 选择 profile：--profile > XCRED_PROFILE > profiles.default > 空
	profile := ""
	explicit := false
	if opts.CLIProfileSet {
		profile, explicit = opts.CLIProfile, true
	} else if opts.EnvProfile != "" {
		profile, explicit = opts.EnvProfile, true
	} else if _, ok := cfg.Profiles["default"]; ok {
		profile = "default"
	}

	// 3) 获取完整 profile；显式指定但不存在时报错
	var selected Profile
	if profile != "" {
		p, ok := cfg.Profiles[profile]
		if !ok && explicit {
			return Resolved{}, errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{
				"profile":     profile,
				"config_path": cfgPath,
			})
		}
		selected = p
	}
	if selected.FilePath != "" {
		selected.FilePath = ExpandHome(selected.FilePath, opts.HomeDir)
	}

	// 4) format：--format > XCRED_FORMAT > profile.format > auto
	format := pick(opts.CLIFormatSet, opts.CLIFormat, opts.EnvFormat, selected.Format, DefaultFormat)

	// 5) backend：--backend > XCRED_BACKEND > profile.backend > auto
	backend := pick(opts.CLIBackendSet, opts.CLIBackend, opts.EnvBackend, selected.Backend, DefaultBackend)

	// 6) log level：--log-level > XCRED_LOG_LEVEL > log_level > warn
	logLevel := pick(opts.CLILogLevelSet, opts.CLILogLevel, opts.EnvLogLevel, cfg.LogLevel, DefaultLogLevel)

	return Resolved{
		ConfigPath:  cfgPath,
		ProfileName: profile,
		Format:      format,
		Backend:     backend,
		LogLevel:    logLevel,
		Profile:     selected,
		File:        cfg,
	}, nil
}

func pick(cliSet bool, cli, env, cfg, def string) string {
	switch {
	case cliSet:
		return cli
	case env != "":
		return env
	case cfg != "":
		return cfg
	default:
		return def
	}
}
