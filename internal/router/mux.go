// Package router 把解析好的请求分发到内置的处理函数。
package router

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HnustLzh2/http/internal/request"
	"github.com/HnustLzh2/http/internal/response"
)

// HandlerFunc 路由处理函数类型。
// 返回 *StatusError 时按其中的状态码回一个不带响应体的响应，
// 其他错误一律按 500 处理。
type HandlerFunc func(req *request.Request) (*response.Response, error)

// MatchFunc 判断请求是否归某个路由处理
type MatchFunc func(req *request.Request) bool

// Route 一条路由
type Route struct {
	Name    string
	Match   MatchFunc
	Handler HandlerFunc
}

// Mux 非 net/http 版本的极简路由器，按注册顺序匹配，先匹配先处理
type Mux struct {
	routes []Route
	logger *zap.Logger
}

// NewMux 创建一个没有任何路由的 Mux
func NewMux(logger *zap.Logger) *Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mux{logger: logger}
}

// Handle 注册路由
func (m *Mux) Handle(name string, match MatchFunc, handler HandlerFunc) {
	m.routes = append(m.routes, Route{Name: name, Match: match, Handler: handler})
}

// Serve 找到第一个匹配的路由并执行，返回响应以及发送后是否关闭连接。
// 是否关闭只看请求的 Connection 头，在分发之前算好，与匹配到哪个路由无关。
// 没有匹配的路由时返回 404。
func (m *Mux) Serve(req *request.Request) (*response.Response, bool) {
	closeConn := req.WantsClose()

	for _, route := range m.routes {
		if !route.Match(req) {
			continue
		}
		resp, err := route.Handler(req)
		if err != nil {
			resp = m.errorResponse(route.Name, req, err)
		}
		m.logger.Debug("request handled",
			zap.String("route", route.Name),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", int(resp.Status)),
			zap.Bool("close", closeConn),
		)
		return resp, closeConn
	}

	m.logger.Debug("no route matched",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)
	return response.New(response.StatusNotFound), closeConn
}

func (m *Mux) errorResponse(route string, req *request.Request, err error) *response.Response {
	var se *StatusError
	if errors.As(err, &se) {
		return response.New(se.Status)
	}
	m.logger.Error("handler failed",
		zap.String("route", route),
		zap.String("path", req.Path),
		zap.Error(err),
	)
	return response.New(response.StatusInternalServerError)
}

// StatusError 携带应返回给客户端的状态码
type StatusError struct {
	Status response.Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func badRequest(err error) error {
	return &StatusError{Status: response.StatusBadRequest, Err: err}
}

func notFound(err error) error {
	return &StatusError{Status: response.StatusNotFound, Err: err}
}
