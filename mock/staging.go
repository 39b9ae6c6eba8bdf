package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.StagingStore = (*StagingStore)(nil)

// StagingStore is a mock implementation of docrag.StagingStore.
type StagingStore struct {
	PutFn    func(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ReadFn   func(ctx context.Context, address string) ([]byte, error)
	DeleteFn func(ctx context.Context, key string) error
	ListFn   func(ctx context.Context, prefix string) ([]string, error)
}

func (s *StagingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.PutFn(ctx, key, data, contentType)
}

func (s *StagingStore) Read(ctx context.Context, address string) ([]byte, error) {
	return s.ReadFn(ctx, address)
}

func (s *StagingStore) Delete(ctx context.Context, key string) error {
	return s.DeleteFn(ctx, key)
}

func (s *StagingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.ListFn(ctx, prefix)
}
