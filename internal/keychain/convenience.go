package keychain

// 以下便捷方法把任何失败折叠为零值；需要区分 not found / 格式错误 / store 错误时
// 请使用对应的核心方法。

// Accounts 是 AllAccounts 的便捷版本，失败时返回空切片。
func (k *Keychain) Accounts(service string) []string {
	out, xe := k.AllAccounts(service)
	if xe != nil {
		return []string{}
	}
	return out
}

// Bytes 是 ReadValue 的便捷版本。
func (k *Keychain) Bytes(service, account string) ([]byte, bool) {
	data, xe := k.ReadValue(service, account)
	if xe != nil {
		return nil, false
	}
	return data, true
}

// String 读取并按 UTF-8 解码；读取失败或解码失败都返回 ""。
func (k *Keychain) String(service, account string) string {
	data, ok := k.Bytes(service, account)
	if !ok {
		return ""
	}
	return decodeUTF8(data)
}

func (k *Keychain) SetBytes(service, account string, data []byte) bool {
	ok, xe := k.WriteValue(service, account, data)
	return xe == nil && ok
}

func (k *Keychain) SetString(service, account, value string) bool {
	return k.SetBytes(service, account, []byte(value))
}

func (k *Keychain) Delete(service, account string) bool {
	ok, xe := k.DeleteValue(service, account)
	return xe == nil && ok
}
