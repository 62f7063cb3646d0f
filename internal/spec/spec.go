// Package spec 描述 `xcred spec` 输出的机器可读工具说明，供 AI/agent 发现命令。
package spec

import "github.com/zx06/xcred/internal/errors"

type FlagSpec struct {
	Name        string `json:"name" yaml:"name"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Env         string `json:"env,omitempty" yaml:"env,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type CommandSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Usage       string     `json:"usage,omitempty" yaml:"usage,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Output      []string   `json:"output,omitempty" yaml:"output,omitempty"` // data 中的字段
	Flags       []FlagSpec `json:"flags,omitempty" yaml:"flags,omitempty"`
}

type Spec struct {
	SchemaVersion int           `json:"schema_version" yaml:"schema_version"`
	Commands      []CommandSpec `json:"commands" yaml:"commands"`
	Backends      []string      `json:"backends" yaml:"backends"`
	ErrorCodes    []errors.Code `json:"error_codes" yaml:"error_codes"`
}

// Command 按名称查找命令。
func (s Spec) Command(name string) (CommandSpec, bool) {
	for _, c := range s.Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}
