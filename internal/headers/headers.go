// Package headers 实现请求与响应共用的多值头部表。
package headers

import (
	"io"
	"strings"
)

// CRLF 回车换行
const CRLF = "\r\n"

// ValueSeparator 多值头部的分隔符，只认这一种写法
const ValueSeparator = ", "

// 常用头部名称
const (
	AcceptEncoding  = "Accept-Encoding"
	Connection      = "Connection"
	ContentEncoding = "Content-Encoding"
	ContentLength   = "Content-Length"
	ContentType     = "Content-Type"
	UserAgent       = "User-Agent"
)

// Headers 头部名称（区分大小写）到有序值列表的映射。
// 名称按首次插入的顺序输出，每个名称至少对应一个值。
type Headers struct {
	names  []string
	values map[string][]string
}

// New 创建一个空的头部表
func New() *Headers {
	return &Headers{values: make(map[string][]string)}
}

// Add 追加一个值；同名头部不会被覆盖，而是累积到同一个列表里
func (h *Headers) Add(name, value string) {
	if _, ok := h.values[name]; !ok {
		h.names = append(h.names, name)
	}
	h.values[name] = append(h.values[name], value)
}

// Set 用单个值替换已有的全部值，保留原来的位置
func (h *Headers) Set(name, value string) {
	if _, ok := h.values[name]; !ok {
		h.names = append(h.names, name)
	}
	h.values[name] = []string{value}
}

// Get 返回第一个值，不存在时返回 ""
func (h *Headers) Get(name string) string {
	if vs := h.values[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Lookup 返回第一个值以及该头部是否存在
func (h *Headers) Lookup(name string) (string, bool) {
	vs, ok := h.values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Values 返回全部值，调用方不应修改返回的切片
func (h *Headers) Values(name string) []string {
	return h.values[name]
}

func (h *Headers) Has(name string) bool {
	_, ok := h.values[name]
	return ok
}

// Contains 判断值列表中是否有与 value 完全相同的一项
func (h *Headers) Contains(name, value string) bool {
	for _, v := range h.values[name] {
		if v == value {
			return true
		}
	}
	return false
}

// ContainsFold 同 Contains，但忽略值的大小写
func (h *Headers) ContainsFold(name, value string) bool {
	for _, v := range h.values[name] {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func (h *Headers) Del(name string) {
	if _, ok := h.values[name]; !ok {
		return
	}
	delete(h.values, name)
	for i, n := range h.names {
		if n == name {
			h.names = append(h.names[:i], h.names[i+1:]...)
			break
		}
	}
}

// Keys 按插入顺序返回头部名称
func (h *Headers) Keys() []string {
	keys := make([]string, len(h.names))
	copy(keys, h.names)
	return keys
}

func (h *Headers) Len() int {
	return len(h.names)
}

func (h *Headers) Clone() *Headers {
	c := &Headers{
		names:  make([]string, len(h.names)),
		values: make(map[string][]string, len(h.values)),
	}
	copy(c.names, h.names)
	for k, vs := range h.values {
		c.values[k] = append([]string(nil), vs...)
	}
	return c
}

// SplitValue 把原始头部值拆成值列表：含 ", " 时按它拆开，否则是单元素列表
func SplitValue(raw string) []string {
	if strings.Contains(raw, ValueSeparator) {
		return strings.Split(raw, ValueSeparator)
	}
	return []string{raw}
}

// Write 按插入顺序写出 "Name: v1, v2\r\n"，多值重新用 ", " 拼接
func (h *Headers) Write(w io.Writer) (int64, error) {
	var n int64
	for _, name := range h.names {
		cnt, err := io.WriteString(w, name+": "+strings.Join(h.values[name], ValueSeparator)+CRLF)
		n += int64(cnt)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
