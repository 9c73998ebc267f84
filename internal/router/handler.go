package router

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/HnustLzh2/http/internal/headers"
	"github.com/HnustLzh2/http/internal/request"
	"github.com/HnustLzh2/http/internal/response"
)

const (
	echoPrefix  = "/echo/"
	filesPrefix = "/files/"

	methodGet  = "GET"
	methodPost = "POST"
)

// DefaultRoot 没有配置 --directory 时使用的文件根目录
const DefaultRoot = "/tmp/"

var errNoUserAgent = errors.New("missing User-Agent header")

// Config 路由配置
type Config struct {
	// Root /files/* 请求的文件根目录，为空时使用 DefaultRoot
	Root string
}

type handlers struct {
	files  *FileStore
	logger *zap.Logger
}

// New 创建注册好全部内置路由的 Mux
func New(cfg Config, logger *zap.Logger) *Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("router")
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}

	h := &handlers{files: NewFileStore(cfg.Root), logger: logger}
	m := NewMux(logger)
	registerRoutes(m, h)
	return m
}

// registerRoutes 按优先级注册所有路由
func registerRoutes(m *Mux, h *handlers) {
	// 根路径 "/"
	m.Handle("root", pathIs("/"), rootHandler)
	// /echo/<value>
	m.Handle("echo", func(req *request.Request) bool {
		return len(req.Path) > len(echoPrefix) && strings.HasPrefix(req.Path, echoPrefix)
	}, echoHandler)
	// /user-agent
	m.Handle("user-agent", pathIs("/user-agent"), userAgentHandler)
	// /files/*
	m.Handle("files-get", filesMethod(methodGet), h.getFile)
	m.Handle("files-post", filesMethod(methodPost), h.postFile)
}

func pathIs(path string) MatchFunc {
	return func(req *request.Request) bool {
		return req.Path == path
	}
}

func filesMethod(method string) MatchFunc {
	return func(req *request.Request) bool {
		return req.Method == method && strings.HasPrefix(req.Path, filesPrefix)
	}
}

// 根路径：200 OK，无 body
func rootHandler(req *request.Request) (*response.Response, error) {
	return response.New(response.StatusOK), nil
}

// /echo/<text>：原样返回 <text>，客户端接受 gzip 时压缩
func echoHandler(req *request.Request) (*response.Response, error) {
	value := strings.TrimPrefix(req.Path, echoPrefix)
	resp := response.WithBody(response.StatusOK, response.ContentTypeText, []byte(value))

	// gzip 压缩协商，只认值列表里恰好为 gzip 的一项
	if req.Headers.Contains(headers.AcceptEncoding, response.GzipEncoding) {
		if err := resp.Compress(); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// /user-agent：返回第一个 User-Agent 值
func userAgentHandler(req *request.Request) (*response.Response, error) {
	userAgent, ok := req.Headers.Lookup(headers.UserAgent)
	if !ok {
		return nil, badRequest(errNoUserAgent)
	}
	return response.WithBody(response.StatusOK, response.ContentTypeText, []byte(userAgent)), nil
}

// 读文件
func (h *handlers) getFile(req *request.Request) (*response.Response, error) {
	name := strings.TrimPrefix(req.Path, filesPrefix)
	content, err := h.files.Read(name)
	if err != nil {
		return nil, h.fileError(name, err)
	}
	return response.WithBody(response.StatusOK, response.ContentTypeOctetStream, stripNUL(content)), nil
}

// 写文件
func (h *handlers) postFile(req *request.Request) (*response.Response, error) {
	name := strings.TrimPrefix(req.Path, filesPrefix)
	if !req.HasBody {
		return nil, badRequest(errors.New("missing request body"))
	}
	if err := h.files.Write(name, stripNUL(req.Body)); err != nil {
		h.logAccessError(name, err)
		return nil, badRequest(err)
	}
	return response.New(response.StatusCreated), nil
}

// fileError 读文件时不存在回 404，其余文件系统错误一律 400
func (h *handlers) fileError(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		h.logger.Info("file not found", zap.String("file", name), zap.String("root", h.files.Root()))
		return notFound(err)
	}
	h.logAccessError(name, err)
	return badRequest(err)
}

func (h *handlers) logAccessError(name string, err error) {
	if errors.Is(err, ErrOutsideRoot) {
		h.logger.Warn("rejected path outside file root", zap.String("file", name))
		return
	}
	h.logger.Info("file access failed", zap.String("file", name), zap.Error(err))
}

func stripNUL(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte{0}, nil)
}
