package loader

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads manifests stored as plain string values. The key is
// the prefix followed by the location without its "redis://" scheme.
type RedisSource struct {
	client redis.UniversalClient
	prefix string
}

type RedisOption func(*RedisSource)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisSource) {
		s.prefix = prefix
	}
}

func NewRedisSource(client redis.UniversalClient, opts ...RedisOption) *RedisSource {
	s := &RedisSource{client: client, prefix: "featurehub:manifest:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisSource) key(location string) string {
	return s.prefix + keyOf(location)
}

func (s *RedisSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(location)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrModuleNotFound.WithDetail("location", location)
	}
	if err != nil {
		return nil, ErrSourceFetch.WithDetail("location", location).WithCause(err)
	}
	return data, nil
}

// Put stores a manifest so it can later be fetched from location.
func (s *RedisSource) Put(ctx context.Context, location string, manifest []byte) error {
	if err := s.client.Set(ctx, s.key(location), manifest, 0).Err(); err != nil {
		return ErrSourceFetch.WithDetail("location", location).WithCause(err)
	}
	return nil
}
