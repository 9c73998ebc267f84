// Package server 持有监听套接字，为每个接入的连接启动一个 goroutine。
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HnustLzh2/http/internal/router"
)

// ErrServerClosed Shutdown 之后 Serve 返回的错误
var ErrServerClosed = errors.New("server closed")

const (
	DefaultAddr            = "127.0.0.1:4221"
	DefaultMaxRequestBytes = 1 << 20

	// 接受连接出错后的等待时间，避免空转
	acceptRetryDelay = 10 * time.Millisecond
)

// Config 服务器配置，零值字段使用默认值
type Config struct {
	// Addr 监听地址
	Addr string
	// Directory /files/* 的文件根目录
	Directory string
	// MaxRequestBytes 单个请求（请求头加请求体）的字节上限
	MaxRequestBytes int
	// IdleTimeout 等待下一个请求的最长时间，0 表示一直等
	IdleTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Directory == "" {
		c.Directory = router.DefaultRoot
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = DefaultMaxRequestBytes
	}
	return c
}

// Server 长期存在的服务对象，显式地启动和停止
type Server struct {
	cfg    Config
	mux    *router.Mux
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// New 创建服务器，此时还没有绑定端口
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Server{
		cfg:    cfg,
		mux:    router.New(router.Config{Root: cfg.Directory}, logger),
		logger: logger.Named("server"),
		conns:  make(map[net.Conn]struct{}),
	}
}

// ListenAndServe 绑定 Config.Addr 并开始服务，直到 Shutdown
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve 在 ln 上接受连接，每个连接交给一个独立的 goroutine。
// Serve 接管 ln，返回前会关闭它；Shutdown 之后返回 ErrServerClosed。
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()
	defer ln.Close()

	s.logger.Info("监听中", zap.Stringer("addr", ln.Addr()), zap.String("directory", s.cfg.Directory))

	for {
		rwc, err := ln.Accept()
		if err != nil {
			if s.shuttingDown() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Warn("接受连接时出错", zap.Error(err))
			time.Sleep(acceptRetryDelay)
			continue
		}
		if !s.track(rwc) {
			rwc.Close()
			return ErrServerClosed
		}
		c := newConn(s, rwc)
		go func() {
			defer s.wg.Done()
			defer s.untrack(rwc)
			c.serve()
		}()
	}
}

// Addr 返回实际监听的地址，尚未开始监听时返回 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown 停止接受新连接，让正在处理的请求写完响应后结束连接，
// 然后等待所有连接退出；ctx 先结束时强制关闭剩余连接并返回 ctx.Err()。
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	ln := s.listener
	now := time.Now()
	for rwc := range s.conns {
		// 唤醒阻塞在读上的连接，正在写的响应不受影响
		rwc.SetReadDeadline(now)
	}
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("关闭监听器时出错", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("服务器已关闭")
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for rwc := range s.conns {
			rwc.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) shuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(rwc net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[rwc] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(rwc net.Conn) {
	s.mu.Lock()
	delete(s.conns, rwc)
	s.mu.Unlock()
}
