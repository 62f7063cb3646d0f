package errors

// Code 是稳定错误码（字符串），供 AI/agent 与程序判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound Code = "XCRED_CFG_NOT_FOUND"
	CodeCfgInvalid  Code = "XCRED_CFG_INVALID"

	// Backend
	CodeBackendUnsupported Code = "XCRED_BACKEND_UNSUPPORTED"

	// Store 状态
	CodeItemNotFound     Code = "XCRED_ITEM_NOT_FOUND"
	CodeDuplicateItem    Code = "XCRED_DUPLICATE_ITEM"
	CodeInvalidFormat    Code = "XCRED_INVALID_FORMAT"
	CodeUnexpectedStatus Code = "XCRED_UNEXPECTED_STATUS"

	// Internal
	CodeInternal Code = "XCRED_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeBackendUnsupported,
		CodeItemNotFound,
		CodeDuplicateItem,
		CodeInvalidFormat,
		CodeUnexpectedStatus,
		CodeInternal,
	}
}
