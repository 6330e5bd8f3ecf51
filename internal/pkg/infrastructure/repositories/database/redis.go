package database

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/credentials"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
)

type redisDB struct {
	pool *redis.Pool
}

//DialFunc is used to inject a redis connection method into NewRedisConnection
type DialFunc func() (redis.Conn, error)

//NewRedisDialer dials a redis server at address, e.g. "redis:6379"
func NewRedisDialer(address string) DialFunc {
	return func() (redis.Conn, error) {
		return redis.Dial("tcp", address,
			redis.DialConnectTimeout(5*time.Second),
			redis.DialReadTimeout(5*time.Second),
			redis.DialWriteTimeout(5*time.Second),
		)
	}
}

//NewRedisConnection wraps a pool of redis connections in a Datastore
func NewRedisConnection(dial DialFunc, log logging.Logger) (Datastore, error) {
	pool := &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 240 * time.Second,
		Dial:        dial,
	}

	conn := pool.Get()
	defer conn.Close()

	if _, err := conn.Do("PING"); err != nil {
		log.Errorf("Failed to ping credential store: %s", err.Error())
		pool.Close()
		return nil, err
	}

	return &redisDB{pool: pool}, nil
}

func (db *redisDB) Get(ctx context.Context, key string) (string, error) {
	conn, err := db.pool.GetContext(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	value, err := redis.String(conn.Do("GET", key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return "", credentials.ErrNotFound
		}
		return "", err
	}

	return value, nil
}

func (db *redisDB) Set(ctx context.Context, key, value string) error {
	conn, err := db.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", key, value)
	return err
}
