// Package response 组装响应并把它编码成线上的字节。
package response

import (
	"bytes"
	"compress/gzip"
	"strconv"

	"github.com/HnustLzh2/http/internal/headers"
)

const (
	Version = "HTTP/1.1"

	GzipEncoding = "gzip"

	ContentTypeText        = "text/plain"
	ContentTypeOctetStream = "application/octet-stream"
)

// Response 表示一个待发送的 HTTP 响应；Body 为 nil 表示没有响应体
type Response struct {
	Status  Status
	Headers *headers.Headers
	Body    []byte
}

// New 创建一个没有响应体的响应
func New(status Status) *Response {
	return &Response{Status: status, Headers: headers.New()}
}

// WithBody 创建带 Content-Type 和响应体的响应，Content-Length 由 Encode 补上
func WithBody(status Status, contentType string, body []byte) *Response {
	r := New(status)
	r.Headers.Set(headers.ContentType, contentType)
	if body == nil {
		body = []byte{}
	}
	r.Body = body
	return r
}

// Compress 用 gzip 压缩响应体并加上 Content-Encoding，必须在计算长度之前调用
func (r *Response) Compress() error {
	if r.Body == nil {
		return nil
	}
	compressed, err := Gzip(r.Body)
	if err != nil {
		return err
	}
	r.Body = compressed
	r.Headers.Set(headers.ContentEncoding, GzipEncoding)
	return nil
}

// Gzip 压缩一段字节
func Gzip(body []byte) ([]byte, error) {
	var b bytes.Buffer
	gz := gzip.NewWriter(&b)
	if _, err := gz.Write(body); err != nil {
		return nil, err
	}
	// 必须显式 Close 才会写出 gzip 尾部
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Encode 把响应序列化为线上字节。
// 有响应体时 Content-Length 按最终长度重新设置，没有时删除；
// shouldClose 为 true 时在空行之前加上 Connection: close。
func Encode(r *Response, shouldClose bool) []byte {
	hdrs := r.Headers
	if hdrs == nil {
		hdrs = headers.New()
	} else {
		hdrs = hdrs.Clone()
	}
	if r.Body != nil {
		hdrs.Set(headers.ContentLength, strconv.Itoa(len(r.Body)))
	} else {
		hdrs.Del(headers.ContentLength)
	}
	if shouldClose && !hdrs.ContainsFold(headers.Connection, "close") {
		hdrs.Set(headers.Connection, "close")
	}

	var buf bytes.Buffer
	buf.Grow(64 + len(r.Body))
	buf.WriteString(Version + " " + r.Status.String() + headers.CRLF)
	hdrs.Write(&buf)
	buf.WriteString(headers.CRLF)
	buf.Write(r.Body)
	return buf.Bytes()
}
