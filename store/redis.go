package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/sizer"
)

// Redis implements Store on a Redis server. Snapshots are stored as
// plain JSON values without expiry; the per-day key scheme keeps old
// sessions addressable.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects using a redis URL (redis://host:port/db).
func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{rdb: redis.NewClient(opt)}, nil
}

func (s *Redis) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, 0).Err()
}

func (s *Redis) get(ctx context.Context, key string, v any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Redis) SaveBook(ctx context.Context, key string, b *book.Book) error {
	return s.put(ctx, key, b)
}

func (s *Redis) LoadBook(ctx context.Context, key string) (*book.Book, error) {
	var b book.Book
	if err := s.get(ctx, key, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Redis) SaveSizer(ctx context.Context, in sizer.Inputs) error {
	return s.put(ctx, sizerKey, in)
}

func (s *Redis) LoadSizer(ctx context.Context) (sizer.Inputs, error) {
	var in sizer.Inputs
	if err := s.get(ctx, sizerKey, &in); err != nil {
		return sizer.Inputs{}, err
	}
	return in, nil
}

func (s *Redis) Close() error {
	return s.rdb.Close()
}
