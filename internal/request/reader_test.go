package request

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadMessageSequential(t *testing.T) {
	stream := "GET / HTTP/1.1\r\nHost: a\r\n\r\n" +
		"POST /files/x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello" +
		"GET /user-agent HTTP/1.1\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(stream))

	want := []string{
		"GET / HTTP/1.1\r\nHost: a\r\n\r\n",
		"POST /files/x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello",
		"GET /user-agent HTTP/1.1\r\n\r\n",
	}
	for i, w := range want {
		got, err := ReadMessage(r, 1<<20)
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if string(got) != w {
			t.Errorf("message %d = %q, want %q", i, got, w)
		}
	}
	if _, err := ReadMessage(r, 1<<20); err != io.EOF {
		t.Errorf("after last message err = %v, want io.EOF", err)
	}
}

func TestReadMessageLargeBody(t *testing.T) {
	body := strings.Repeat("x", 4096)
	raw := "POST /files/big HTTP/1.1\r\ncontent-length: 4096\r\n\r\n" + body
	// 小缓冲区，强制走 ErrBufferFull 分支
	r := bufio.NewReaderSize(strings.NewReader(raw+"GET / HTTP/1.1\r\n\r\n"), 16)

	got, err := ReadMessage(r, 1<<20)
	if err != nil {
		t.Fatalf("ReadMessage error: %v", err)
	}
	if string(got) != raw {
		t.Errorf("got %d bytes, want %d", len(got), len(raw))
	}
	req, err := Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(req.Body) != body {
		t.Error("body was truncated")
	}
}

func TestReadMessageZeroLengthPost(t *testing.T) {
	raw := "POST /files/x HTTP/1.1\r\nContent-Length: 0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw + "GET / HTTP/1.1\r\n\r\n"))
	got, err := ReadMessage(r, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != raw {
		t.Errorf("got %q, want %q", got, raw)
	}
}

func TestReadMessageSkipsLeadingBlankLines(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\r\n\r\nGET / HTTP/1.1\r\n\r\n"))
	got, err := ReadMessage(r, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "GET / HTTP/1.1\r\n\r\n" {
		t.Errorf("got %q", got)
	}
}

func TestReadMessageErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		limit int
		want  error
	}{
		{"head too large", "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 100) + "\r\n\r\n", 64, ErrMessageTooLarge},
		{"body too large", "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\n", 64, ErrMessageTooLarge},
		{"bad content length", "POST / HTTP/1.1\r\nContent-Length: abc\r\n\r\n", 1024, ErrInvalidContentLength},
		{"negative content length", "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n", 1024, ErrInvalidContentLength},
		{"conflicting content length", "POST / HTTP/1.1\r\nContent-Length: 1\r\nContent-Length: 2\r\n\r\n", 1024, ErrInvalidContentLength},
		{"empty stream", "", 1024, io.EOF},
		{"short body", "POST /files/x HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc", 1024, ErrTruncatedBody},
		{"post without content length", "POST /files/q.txt HTTP/1.1\r\nHost: x\r\n\r\nhello", 1024, ErrLengthRequired},
		{"put without content length", "PUT /files/q.txt HTTP/1.1\r\n\r\n", 1024, ErrLengthRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMessage(bufio.NewReader(strings.NewReader(tt.raw)), tt.limit)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadMessageUnexpectedEOF(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"partial head", "GET /echo/abc HTTP/1.1\r\nHost: a\r\n"},
		{"partial post head", "POST /files/x HTTP/1.1\r\nHost: a\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadMessage(bufio.NewReader(strings.NewReader(tt.raw)), 1024)
			if err != io.ErrUnexpectedEOF {
				t.Fatalf("err = %v, want io.ErrUnexpectedEOF", err)
			}
			if string(got) != tt.raw {
				t.Errorf("partial bytes = %q, want %q", got, tt.raw)
			}
		})
	}
}
