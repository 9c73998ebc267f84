package request

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/HnustLzh2/http/internal/headers"
)

// ReadMessage 从 reader 中读出一个完整的请求报文：逐行读到空行为止，
// 若声明了 Content-Length 再读够对应字节数的请求体。
// 同一个连接上的多个请求复用同一个 reader，顺序读取。
//
// 还没读到任何字节就遇到 EOF 时返回 io.EOF；请求头读了一半就 EOF 时，
// 返回已读到的字节和 io.ErrUnexpectedEOF，调用方可以选择仍然处理它。
// 请求体不足 Content-Length 时返回 ErrTruncatedBody；
// POST/PUT 没有 Content-Length 时返回 ErrLengthRequired。
// limit 限制整个报文（请求头加请求体）的字节数。
func ReadMessage(r *bufio.Reader, limit int) ([]byte, error) {
	var buf bytes.Buffer
	contentLength := -1
	lineStart := 0
	method := ""

	for {
		chunk, err := r.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > limit {
			return nil, ErrMessageTooLarge
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			// 行比 reader 的缓冲区长，继续拼接
			continue
		}
		if err != nil {
			if err == io.EOF {
				if buf.Len() == 0 {
					return nil, io.EOF
				}
				return buf.Bytes(), io.ErrUnexpectedEOF
			}
			return nil, err
		}

		line := buf.Bytes()[lineStart:]
		first := lineStart == 0
		lineStart = buf.Len()

		if string(line) == headers.CRLF {
			if first {
				// 请求之间多余的空行
				buf.Reset()
				lineStart = 0
				continue
			}
			break
		}
		if first {
			method, _, _ = strings.Cut(string(line), " ")
			continue
		}

		name, value, ok := strings.Cut(string(line), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), headers.ContentLength) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 || (contentLength >= 0 && n != contentLength) {
			return nil, ErrInvalidContentLength
		}
		contentLength = n
	}

	if contentLength < 0 && requiresLength(method) {
		return nil, ErrLengthRequired
	}
	if contentLength <= 0 {
		return buf.Bytes(), nil
	}
	if buf.Len()+contentLength > limit {
		return nil, ErrMessageTooLarge
	}
	if _, err := io.CopyN(&buf, r, int64(contentLength)); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncatedBody
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// 请求体只能靠 Content-Length 定界的方法
func requiresLength(method string) bool {
	return method == "POST" || method == "PUT"
}
