package response

import (
	"bytes"
	"compress/gzip"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/HnustLzh2/http/internal/headers"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "200 OK"},
		{StatusCreated, "201 Created"},
		{StatusBadRequest, "400 Bad Request"},
		{StatusNotFound, "404 Not Found"},
		{StatusInternalServerError, "500 Internal Server Error"},
		{Status(299), "299"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestEncodeNoBody(t *testing.T) {
	got := string(Encode(New(StatusOK), false))
	if got != "HTTP/1.1 200 OK\r\n\r\n" {
		t.Errorf("Encode = %q", got)
	}
}

func TestEncodeWithBody(t *testing.T) {
	r := WithBody(StatusOK, ContentTypeText, []byte("abc"))
	got := string(Encode(r, false))
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeEmptyBodyHasZeroLength(t *testing.T) {
	r := WithBody(StatusOK, ContentTypeText, nil)
	got := string(Encode(r, false))
	if !strings.Contains(got, "Content-Length: 0\r\n") {
		t.Errorf("Encode = %q, want Content-Length: 0", got)
	}
}

func TestEncodeContentLengthFollowsBody(t *testing.T) {
	r := New(StatusNotFound)
	r.Headers.Set(headers.ContentLength, "42")
	if got := string(Encode(r, false)); strings.Contains(got, "Content-Length") {
		t.Errorf("Content-Length without body: %q", got)
	}

	r = WithBody(StatusOK, ContentTypeText, []byte("hello"))
	r.Headers.Set(headers.ContentLength, "1")
	if got := string(Encode(r, false)); !strings.Contains(got, "Content-Length: 5\r\n") {
		t.Errorf("stale Content-Length kept: %q", got)
	}
}

func TestEncodeConnectionClose(t *testing.T) {
	r := WithBody(StatusOK, ContentTypeText, []byte("x"))
	got := string(Encode(r, true))
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 1\r\nConnection: close\r\n\r\nx"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}

	if got := string(Encode(New(StatusCreated), true)); got != "HTTP/1.1 201 Created\r\nConnection: close\r\n\r\n" {
		t.Errorf("Encode without headers = %q", got)
	}

	// 已经存在时不重复
	r = New(StatusOK)
	r.Headers.Set(headers.Connection, "close")
	if got := string(Encode(r, true)); strings.Count(got, "Connection") != 1 {
		t.Errorf("duplicated Connection header: %q", got)
	}
}

func TestEncodeDoesNotMutateResponse(t *testing.T) {
	r := WithBody(StatusOK, ContentTypeText, []byte("x"))
	Encode(r, true)
	if r.Headers.Has(headers.Connection) || r.Headers.Has(headers.ContentLength) {
		t.Errorf("Encode modified the response headers: %v", r.Headers.Keys())
	}
}

func TestCompress(t *testing.T) {
	r := WithBody(StatusOK, ContentTypeText, []byte("hello gzip"))
	if err := r.Compress(); err != nil {
		t.Fatal(err)
	}
	if r.Headers.Get(headers.ContentEncoding) != GzipEncoding {
		t.Error("missing Content-Encoding: gzip")
	}

	wire := Encode(r, false)
	_, body, ok := bytes.Cut(wire, []byte("\r\n\r\n"))
	if !ok {
		t.Fatal("no header terminator")
	}
	if !bytes.Contains(wire, []byte("Content-Length: "+strconv.Itoa(len(body))+"\r\n")) {
		t.Errorf("Content-Length does not match compressed length %d", len(body))
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != "hello gzip" {
		t.Errorf("decompressed = %q", plain)
	}
}

func TestCompressNoBody(t *testing.T) {
	r := New(StatusOK)
	if err := r.Compress(); err != nil {
		t.Fatal(err)
	}
	if r.Headers.Has(headers.ContentEncoding) {
		t.Error("Content-Encoding set on a response without body")
	}
}
