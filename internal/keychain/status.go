package keychain

import "strconv"

// Status 是 store 返回的结果码。数值沿用 Security framework 的编号，
// 各 backend 把原生错误翻译为这些值，使状态码跨平台稳定。
type Status int32

const (
	StatusSuccess               Status = 0
	StatusUnimplemented         Status = -4
	StatusIO                    Status = -36
	StatusParam                 Status = -50
	StatusNotAvailable          Status = -25291
	StatusAuthFailed            Status = -25293
	StatusDuplicateItem         Status = -25299
	StatusItemNotFound          Status = -25300
	StatusInteractionNotAllowed Status = -25308
	StatusDecode                Status = -26275
)

var statusNames = map[Status]string{
	StatusSuccess:               "success",
	StatusUnimplemented:         "unimplemented",
	StatusIO:                    "io",
	StatusParam:                 "param",
	StatusNotAvailable:          "not-available",
	StatusAuthFailed:            "auth-failed",
	StatusDuplicateItem:         "duplicate-item",
	StatusItemNotFound:          "item-not-found",
	StatusInteractionNotAllowed: "interaction-not-allowed",
	StatusDecode:                "decode",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

func (s Status) OK() bool { return s == StatusSuccess }
