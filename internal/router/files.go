package router

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyFileName /files/ 后面没有文件名
	ErrEmptyFileName = errors.New("empty file name")
	// ErrOutsideRoot 文件名解析后跑出了文件根目录
	ErrOutsideRoot = errors.New("path outside file root")
)

// FileStore 以某个目录为根读写文件。
// 每次访问都重新解析路径，不加锁；写入先落到临时文件再 rename，
// 同一文件的并发写入以最后一次 rename 为准，读者看不到写了一半的内容。
type FileStore struct {
	root string
}

// NewFileStore 创建以 root 为根的 FileStore，root 会被转换成干净的绝对路径，
// 目录已存在时再解析掉其中的符号链接
func NewFileStore(root string) *FileStore {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	root = filepath.Clean(root)
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &FileStore{root: root}
}

// Root 返回文件根目录
func (s *FileStore) Root() string {
	return s.root
}

// Resolve 把请求中的文件名解析成根目录下的路径，
// 结果不在根目录之内时返回 ErrOutsideRoot。
// 除了字面上的检查，还会解析已存在路径上的符号链接，指向根目录之外同样拒绝。
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyFileName
	}
	p := filepath.Join(s.root, name)
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || !within(rel) {
		return "", ErrOutsideRoot
	}
	if err := s.checkLinks(p); err != nil {
		return "", err
	}
	return p, nil
}

// checkLinks 解析 p 上的符号链接，确认真实路径仍在根目录内
func (s *FileStore) checkLinks(p string) error {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if _, lerr := os.Lstat(p); lerr == nil {
			// p 存在却解析不了，多半是悬空的符号链接，写入时会跟着它跑出去
			return ErrOutsideRoot
		}
		// 文件还不存在，检查父目录；父目录也不存在时后续读写自然失败
		resolved, err = filepath.EvalSymlinks(filepath.Dir(p))
		if err != nil {
			return nil
		}
	}
	rel, err := filepath.Rel(s.root, resolved)
	if err != nil || !within(rel) {
		return ErrOutsideRoot
	}
	return nil
}

func within(rel string) bool {
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *FileStore) Read(name string) ([]byte, error) {
	p, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// Write 用 data 整体替换文件内容，文件不存在时创建
func (s *FileStore) Write(name string, data []byte) error {
	p, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return fmt.Errorf("write %s: is a directory", name)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	// rename 成功后临时文件已不存在，Remove 只清理失败的情况
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
