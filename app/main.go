package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HnustLzh2/http/internal/router"
	"github.com/HnustLzh2/http/internal/server"
)

// 收到退出信号后，等待正在处理的连接结束的最长时间
const shutdownTimeout = 10 * time.Second

func main() {
	// 解析命令行参数，示例：./your_program.sh --directory /tmp/data/
	// 未知参数由 flag 直接以非零状态退出
	directory := flag.String("directory", router.DefaultRoot, "/files/* 请求的文件根目录，不存在时自动创建")
	addr := flag.String("addr", server.DefaultAddr, "监听地址")
	maxRequestBytes := flag.Int("max-request-bytes", server.DefaultMaxRequestBytes, "单个请求的字节上限")
	idleTimeout := flag.Duration("idle-timeout", 0, "等待下一个请求的最长时间，0 表示不限")
	debug := flag.Bool("debug", false, "输出调试日志")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := os.MkdirAll(*directory, 0755); err != nil {
		logger.Fatal("创建文件目录失败", zap.String("directory", *directory), zap.Error(err))
	}

	srv := server.New(server.Config{
		Addr:            *addr,
		Directory:       *directory,
		MaxRequestBytes: *maxRequestBytes,
		IdleTimeout:     *idleTimeout,
	}, logger)

	if err := run(srv, logger); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}
}

// run 启动服务器，收到 SIGINT/SIGTERM 后优雅退出
func run(srv *server.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("收到退出信号，正在关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, server.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
