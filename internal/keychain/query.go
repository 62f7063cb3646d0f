package keychain

// Class 是条目类别；目前只支持通用密码。
type Class int

const (
	ClassGenericPassword Class = iota + 1
)

func (c Class) String() string {
	switch c {
	case ClassGenericPassword:
		return "generic-password"
	default:
		return "unknown"
	}
}

// Limit 是匹配结果数量上限。
type Limit int

const (
	LimitOne Limit = iota
	LimitAll
)

// Query 是单次调用内构造、用完即弃的匹配/写入描述。
// Service、Account 为空表示不按该字段过滤（只有 LimitAll 查询允许）。
type Query struct {
	Class      Class
	Service    string
	Account    string
	Limit      Limit
	ReturnData bool
}

// Attributes 是 Update 时被修改的属性；目前只有数据本身。
type Attributes struct {
	Data []byte
}

// ItemQuery 精确匹配 (service, account) 的单个条目并要求返回数据。
func ItemQuery(service, account string) Query {
	return Query{
		Class:      ClassGenericPassword,
		Service:    service,
		Account:    account,
		Limit:      LimitOne,
		ReturnData: true,
	}
}

// ListQuery 匹配所有通用密码条目；service 非空时只匹配该 service。
func ListQuery(service string) Query {
	return Query{
		Class:      ClassGenericPassword,
		Service:    service,
		Limit:      LimitAll,
		ReturnData: true,
	}
}

// Matches 判断一个 (service, account) 是否满足查询的过滤条件。
// 供没有原生查询能力的 backend 使用。
func (q Query) Matches(service, account string) bool {
	if q.Service != "" && q.Service != service {
		return false
	}
	if q.Account != "" && q.Account != account {
		return false
	}
	return true
}

func (q Query) key() string {
	return q.Service + "\x00" + q.Account
}
