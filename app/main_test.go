package main

import (
	"net"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/HnustLzh2/http/internal/server"
)

func TestRunReturnsBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	logger := zaptest.NewLogger(t)
	srv := server.New(server.Config{Addr: ln.Addr().String(), Directory: t.TempDir()}, logger)
	err = run(srv, logger)
	if err == nil || !strings.Contains(err.Error(), "bind") {
		t.Errorf("run = %v, want bind error", err)
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		if err != nil {
			t.Fatalf("newLogger(%v): %v", debug, err)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != debug {
			t.Errorf("newLogger(%v) debug enabled = %v", debug, got)
		}
	}
}
