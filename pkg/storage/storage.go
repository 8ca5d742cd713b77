// Package storage 资质证明等文件的对象存储。
// 本地目录实现，对象键由内容的 BLAKE3 摘要决定，相同内容只保存一份。
package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
)

var (
	ErrTooLarge   = errors.New("文件超过大小限制")
	ErrEmpty      = errors.New("文件内容为空")
	ErrInvalidKey = errors.New("对象键无效")
	ErrNotFound   = errors.New("对象不存在")
)

// Object 已保存对象的元数据
type Object struct {
	Key  string
	Hash string // BLAKE3 十六进制摘要
	Size int64
}

// Store 对象存储接口
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// LocalStore 本地文件系统实现
type LocalStore struct {
	root     string
	maxBytes int64
}

// NewLocalStore 创建本地存储，root 不存在时自动创建
func NewLocalStore(cfg *config.StorageConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Root, 0o750); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStore{root: cfg.Root, maxBytes: cfg.MaxBytes}, nil
}

// Put 写入对象：先落临时文件并计算摘要，再按摘要改名
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) (Object, error) {
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	h := blake3.New()
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	closeErr := tmp.Close()
	if err != nil {
		return Object{}, fmt.Errorf("写入对象失败: %w", err)
	}
	if closeErr != nil {
		return Object{}, fmt.Errorf("写入对象失败: %w", closeErr)
	}
	if n == 0 {
		return Object{}, ErrEmpty
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return Object{}, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	sum := hex.EncodeToString(h.Sum(nil))
	key := objectKey(sum, name)
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return Object{}, fmt.Errorf("创建对象目录失败: %w", err)
	}
	if _, err := os.Stat(dst); err == nil {
		return Object{Key: key, Hash: sum, Size: n}, nil
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return Object{}, fmt.Errorf("保存对象失败: %w", err)
	}

	return Object{Key: key, Hash: sum, Size: n}, nil
}

// Open 读取对象
func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// objectKey 形如 ab/abcdef....pdf，两级目录避免单目录文件过多
func objectKey(sum, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return sum[:2] + "/" + sum + ext
}

func validKey(key string) bool {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	return true
}
