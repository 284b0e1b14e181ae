package exportcache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConf struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Redis struct {
	ttl      time.Duration
	internal *redis.Client
}

var _ Cache = (*Redis)(nil)

func NewRedis(conf RedisConf) *Redis {
	c := &Redis{
		ttl: conf.TTL,
		internal: redis.NewClient(&redis.Options{
			Addr:     conf.Addr,
			Password: conf.Password,
			DB:       conf.DB,
		}),
	}
	log.Printf("[INFO] export cache using redis at %s", conf.Addr)
	return c
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.internal.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.internal.Close()
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.internal.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *Redis) Put(ctx context.Context, key string, data []byte) error {
	return c.internal.Set(ctx, key, data, c.ttl).Err()
}
