package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置错误
	ExitConfig ExitCode = 2

	// 3: backend 不可用
	ExitBackend ExitCode = 3

	// 4: 条目不存在
	ExitNotFound ExitCode = 4

	// 5: store 返回错误状态
	ExitStore ExitCode = 5

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid:
		return ExitConfig
	case CodeBackendUnsupported:
		return ExitBackend
	case CodeItemNotFound:
		return ExitNotFound
	case CodeDuplicateItem, CodeInvalidFormat, CodeUnexpectedStatus:
		return ExitStore
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
