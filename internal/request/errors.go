package request

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest 所有 ParseError 都满足 errors.Is(err, ErrMalformedRequest)
	ErrMalformedRequest = errors.New("malformed request")
	// ErrMessageTooLarge 请求头或请求体超过了读取上限
	ErrMessageTooLarge = errors.New("request message too large")
	// ErrInvalidContentLength Content-Length 不是非负整数，或多次出现且不一致
	ErrInvalidContentLength = errors.New("invalid Content-Length")
	// ErrTruncatedBody 请求体还没读够 Content-Length 声明的字节数，对端就结束了
	ErrTruncatedBody = errors.New("request body shorter than Content-Length")
	// ErrLengthRequired POST/PUT 请求没有 Content-Length，无法确定请求体的边界
	ErrLengthRequired = errors.New("Content-Length required")
)

// Kind 解析失败的类别
type Kind int

const (
	KindRequestLine Kind = iota + 1
	KindHeader
)

func (k Kind) String() string {
	switch k {
	case KindRequestLine:
		return "request line"
	case KindHeader:
		return "header"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseError 描述解析失败的位置，Line 是出错的原始行
type ParseError struct {
	Kind Kind
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s: %q", e.Kind, e.Line)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedRequest
}
