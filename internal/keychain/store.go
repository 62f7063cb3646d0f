package keychain

// Store 是外部安全存储的边界。实现只负责把 Query 交给底层设施并报告 Status，
// 状态码到错误的翻译由 Keychain 完成。
//
// Find 的返回值约定：
//   - nil：没有数据
//   - []byte：单个条目的数据（LimitOne）
//   - []any：多个条目（LimitAll），元素通常为 []byte
type Store interface {
	Find(q Query) (any, Status)
	Insert(q Query, data []byte) Status
	Update(q Query, attrs Attributes) Status
	Delete(q Query) Status
}
