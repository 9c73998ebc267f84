// Package request 把原始字节解析成结构化的 HTTP 请求（不依赖 net/http）。
package request

import (
	"bytes"
	"strings"

	"github.com/HnustLzh2/http/internal/headers"
)

// 请求头与请求体之间的空行
const headEnd = headers.CRLF + headers.CRLF

// Request 表示一个简单的 HTTP 请求
type Request struct {
	Method  string
	Path    string // 原样保留，不做解码
	Version string
	Headers *headers.Headers
	// Body 仅在 HasBody 为 true 时有意义；空行后没有内容时是空切片
	Body    []byte
	HasBody bool
}

// Parse 把一段原始请求字节转换成 Request，不做任何 I/O。
// 缓冲区末尾的 NUL 填充会被忽略。
func Parse(raw []byte) (*Request, error) {
	text := string(bytes.TrimRight(raw, "\x00"))

	head, body, hasBody := strings.Cut(text, headEnd)
	lines := strings.Split(head, headers.CRLF)
	for len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	parts := strings.Fields(lines[0])
	if len(parts) < 3 || !strings.HasPrefix(parts[2], "HTTP") {
		return nil, &ParseError{Kind: KindRequestLine, Line: lines[0]}
	}

	hdrs := headers.New()
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &ParseError{Kind: KindHeader, Line: line}
		}
		for _, v := range headers.SplitValue(strings.TrimSpace(value)) {
			hdrs.Add(name, v)
		}
	}

	req := &Request{
		Method:  parts[0],
		Path:    parts[1],
		Version: parts[2],
		Headers: hdrs,
		HasBody: hasBody,
	}
	if hasBody {
		req.Body = []byte(body)
	}
	return req, nil
}

// Encode 把请求重新序列化为报文；没有请求体时不输出结尾的空行，
// 这样再次 Parse 得到的 HasBody 保持不变。
func (r *Request) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString(r.Method + " " + r.Path + " " + r.Version + headers.CRLF)
	if r.Headers != nil {
		r.Headers.Write(&buf)
	}
	if r.HasBody {
		buf.WriteString(headers.CRLF)
		buf.Write(r.Body)
	}
	return buf.Bytes()
}

// WantsClose 请求的 Connection 值列表里是否有 close
func (r *Request) WantsClose() bool {
	return r.Headers != nil && r.Headers.ContainsFold(headers.Connection, "close")
}
