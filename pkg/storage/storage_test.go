package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
)

func newTestStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(&config.StorageConfig{Root: t.TempDir(), MaxBytes: maxBytes})
	if err != nil {
		t.Fatalf("NewLocalStore 失败: %v", err)
	}
	return s
}

func TestLocalStore_PutAndOpen(t *testing.T) {
	s := newTestStore(t, 1024)
	ctx := context.Background()

	obj, err := s.Put(ctx, "hard-hat.PNG", strings.NewReader("proof-image-bytes"))
	if err != nil {
		t.Fatalf("Put 失败: %v", err)
	}
	if len(obj.Hash) != 64 {
		t.Errorf("期望 64 位十六进制摘要，实际=%q", obj.Hash)
	}
	if obj.Size != int64(len("proof-image-bytes")) {
		t.Errorf("期望 Size=%d，实际=%d", len("proof-image-bytes"), obj.Size)
	}
	if !strings.HasSuffix(obj.Key, ".png") || !strings.HasPrefix(obj.Key, obj.Hash[:2]+"/") {
		t.Errorf("对象键格式错误: %s", obj.Key)
	}

	rc, err := s.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "proof-image-bytes" {
		t.Errorf("读回内容不一致: %q", got)
	}
}

func TestLocalStore_SameContentSameKey(t *testing.T) {
	s := newTestStore(t, 1024)
	ctx := context.Background()

	a, err := s.Put(ctx, "a.pdf", bytes.NewReader([]byte("same")))
	if err != nil {
		t.Fatalf("Put 失败: %v", err)
	}
	b, err := s.Put(ctx, "b.pdf", bytes.NewReader([]byte("same")))
	if err != nil {
		t.Fatalf("Put 失败: %v", err)
	}
	if a.Key != b.Key {
		t.Errorf("相同内容应得到相同键: %s vs %s", a.Key, b.Key)
	}
}

func TestLocalStore_Limits(t *testing.T) {
	s := newTestStore(t, 4)
	ctx := context.Background()

	if _, err := s.Put(ctx, "big.jpg", strings.NewReader("12345")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("期望 ErrTooLarge，实际=%v", err)
	}
	if _, err := s.Put(ctx, "empty.jpg", strings.NewReader("")); !errors.Is(err, ErrEmpty) {
		t.Errorf("期望 ErrEmpty，实际=%v", err)
	}
	if _, err := s.Put(ctx, "ok.jpg", strings.NewReader("1234")); err != nil {
		t.Errorf("恰好等于上限应成功: %v", err)
	}
}

func TestLocalStore_OpenRejectsTraversal(t *testing.T) {
	s := newTestStore(t, 0)

	for _, key := range []string{"", "../etc/passwd", "/abs/path", `a\b`} {
		if _, err := s.Open(context.Background(), key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("键 %q 期望 ErrInvalidKey，实际=%v", key, err)
		}
	}
	if _, err := s.Open(context.Background(), "ab/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际=%v", err)
	}
}
