package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type blobEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// blobStore 带过期时间的内存暂存区（上传的工作簿 / 待下载的导出文件）
type blobStore[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]blobEntry[T]
}

func newBlobStore[T any](ttl time.Duration) *blobStore[T] {
	return &blobStore[T]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]blobEntry[T]),
	}
}

func (s *blobStore[T]) put(v T) (token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	expiresAt = now.Add(s.ttl)
	s.items[token] = blobEntry[T]{value: v, expiresAt: expiresAt}
	return token, expiresAt
}

func (s *blobStore[T]) get(token string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())

	e, ok := s.items[token]
	return e.value, ok
}

// take 取出后立即删除（一次性下载）
func (s *blobStore[T]) take(token string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())

	e, ok := s.items[token]
	if ok {
		delete(s.items, token)
	}
	return e.value, ok
}

func (s *blobStore[T]) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

func (s *blobStore[T]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())
	return len(s.items)
}

func (s *blobStore[T]) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
