package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/HnustLzh2/http/internal/request"
	"github.com/HnustLzh2/http/internal/response"
)

// conn 一个已接受的连接，顺序处理其上的请求
type conn struct {
	srv    *Server
	rwc    net.Conn
	reader *bufio.Reader
	logger *zap.Logger
}

func newConn(srv *Server, rwc net.Conn) *conn {
	return &conn{
		srv: srv,
		rwc: rwc,
		// 对同一个 TCP 连接复用同一个 reader，顺序处理多个请求
		reader: bufio.NewReader(rwc),
		logger: srv.logger.With(zap.Stringer("remote", rwc.RemoteAddr())),
	}
}

// serve 读请求 → 处理 → 写响应，直到客户端要求关闭、读写出错或对端断开
func (c *conn) serve() {
	defer c.rwc.Close()
	c.logger.Debug("connection accepted")

	for {
		if timeout := c.srv.cfg.IdleTimeout; timeout > 0 {
			c.rwc.SetReadDeadline(time.Now().Add(timeout))
		}
		if c.srv.shuttingDown() {
			return
		}

		raw, err := request.ReadMessage(c.reader, c.srv.cfg.MaxRequestBytes)
		// 对端只发了半个请求头就结束写：仍然回应，然后关闭
		partial := errors.Is(err, io.ErrUnexpectedEOF) && len(raw) > 0
		switch {
		case err == nil, partial:
		case errors.Is(err, request.ErrMessageTooLarge),
			errors.Is(err, request.ErrInvalidContentLength),
			errors.Is(err, request.ErrTruncatedBody),
			errors.Is(err, request.ErrLengthRequired):
			// 报文边界已经不可信，回 400 后关闭
			c.logger.Info("rejecting request", zap.Error(err))
			c.write(response.New(response.StatusBadRequest), true)
			return
		case errors.Is(err, io.EOF):
			c.logger.Debug("connection closed by peer")
			return
		default:
			c.logger.Debug("read failed", zap.Error(err))
			return
		}

		resp, closeConn := c.process(raw)
		if partial {
			closeConn = true
		}
		if err := c.write(resp, closeConn); err != nil {
			// 写失败一般意味着客户端断开
			c.logger.Debug("write failed", zap.Error(err))
			return
		}
		if closeConn {
			return
		}
	}
}

// process 解析请求并交给路由；解析失败时回 400，连接保持
func (c *conn) process(raw []byte) (*response.Response, bool) {
	req, err := request.Parse(raw)
	if err != nil {
		c.logger.Info("malformed request", zap.Error(err))
		return response.New(response.StatusBadRequest), false
	}
	return c.srv.mux.Serve(req)
}

func (c *conn) write(resp *response.Response, closeConn bool) error {
	_, err := c.rwc.Write(response.Encode(resp, closeConn))
	return err
}
