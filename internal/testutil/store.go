package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cv-go/internal/cv"
)

// ErrInjected is returned by FailingStore for the keys it is told to fail.
var ErrInjected = errors.New("injected failure")

// FailingStore wraps a cv.Store and fails writes to chosen keys.
type FailingStore struct {
	cv.Store

	mu        sync.Mutex
	failPuts  map[string]bool
	failAll   bool
	failReads bool
}

func NewFailingStore(inner cv.Store) *FailingStore {
	return &FailingStore{Store: inner, failPuts: make(map[string]bool)}
}

// FailPut makes every later Put of key fail.
func (s *FailingStore) FailPut(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPuts[key] = true
}

// FailAll makes every later call fail.
func (s *FailingStore) FailAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = true
}

// FailReads makes every later read fail.
func (s *FailingStore) FailReads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = true
}

func (s *FailingStore) readErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll || s.failReads {
		return ErrInjected
	}
	return nil
}

func (s *FailingStore) writeErr(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll || s.failPuts[key] {
		return ErrInjected
	}
	return nil
}

func (s *FailingStore) Get(ctx context.Context, key string) (*cv.Record, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, key)
}

func (s *FailingStore) Put(ctx context.Context, rec *cv.Record) error {
	if err := s.writeErr(rec.Key); err != nil {
		return err
	}
	return s.Store.Put(ctx, rec)
}

func (s *FailingStore) Delete(ctx context.Context, key string) error {
	if err := s.writeErr(key); err != nil {
		return err
	}
	return s.Store.Delete(ctx, key)
}

func (s *FailingStore) GetAll(ctx context.Context) ([]*cv.Record, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	return s.Store.GetAll(ctx)
}

func (s *FailingStore) GetAllKeys(ctx context.Context) ([]string, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	return s.Store.GetAllKeys(ctx)
}

func (s *FailingStore) ListByType(ctx context.Context, typ string) ([]*cv.Record, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	return s.Store.ListByType(ctx, typ)
}

func (s *FailingStore) ListByKeyPrefix(ctx context.Context, prefix string) ([]*cv.Record, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	return s.Store.ListByKeyPrefix(ctx, prefix)
}

func (s *FailingStore) Replace(ctx context.Context, recs []*cv.Record) error {
	for _, r := range recs {
		if err := s.writeErr(r.Key); err != nil {
			return err
		}
	}
	if err := s.writeErr(""); err != nil {
		return err
	}
	return s.Store.Replace(ctx, recs)
}

// KeysWithPrefix is a test helper listing stored keys that start with prefix.
func KeysWithPrefix(ctx context.Context, store cv.Store, prefix string) ([]string, error) {
	keys, err := store.GetAllKeys(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}
