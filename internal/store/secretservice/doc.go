// Package secretservice 是 freedesktop Secret Service（gnome-keyring、KWallet 等）的
// 原生 D-Bus backend，支持按 service 枚举条目。
//
// 条目属性使用 service 与 username，与 zalando/go-keyring 写入的条目互通。
// 仅在 Linux 与 BSD 上注册。
package secretservice
