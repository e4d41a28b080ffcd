package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var errStaleGeneration = errors.New("stale cache generation")

type RedisClient struct {
	client            redis.UniversalClient
	defaultTTLSeconds time.Duration
	prefix            string
}

// NewRedisClient aceita um ou mais endereços: com vários, o UniversalClient opera em modo cluster.
func NewRedisClient(addrs []string, poolSize int, defaultTTLSeconds time.Duration) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: addrs,

		PoolSize:     poolSize,
		MinIdleConns: 2,

		// Cluster específico
		MaxRedirects: 3,

		// Timeouts otimizados para cache
		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisClient{
		client:            client,
		defaultTTLSeconds: defaultTTLSeconds,
	}
}

// WithPrefix isola as chaves (usado pelos testes).
func (rc *RedisClient) WithPrefix(prefix string) *RedisClient {
	return &RedisClient{client: rc.client, defaultTTLSeconds: rc.defaultTTLSeconds, prefix: prefix}
}

// dataKey e generationKey compartilham a hash tag para caírem no mesmo slot em cluster,
// o que permite WATCH e MULTI envolvendo as duas.
func (rc *RedisClient) dataKey(key string) string {
	return rc.prefix + "{" + key + "}"
}

func (rc *RedisClient) generationKey(key string) string {
	return rc.prefix + "{" + key + "}:gen"
}

func (rc *RedisClient) SetKey(ctx context.Context, key string, value string) error {
	pipe := rc.client.TxPipeline()
	rc.queueSet(ctx, pipe, key, value)

	_, err := pipe.Exec(ctx)
	return err
}

func (rc *RedisClient) queueSet(ctx context.Context, pipe redis.Pipeliner, key string, value string) {
	fields := map[string]interface{}{
		"data":      value,
		"cached_at": time.Now().Unix(),
	}
	pipe.HSet(ctx, rc.dataKey(key), fields)
	pipe.Expire(ctx, rc.dataKey(key), rc.defaultTTLSeconds)
}

// Generation devolve o contador de invalidações da chave (0 quando nunca invalidada).
func (rc *RedisClient) Generation(ctx context.Context, key string) (int64, error) {
	generation, err := rc.client.Get(ctx, rc.generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

// SetKeyIfGeneration grava só se nenhuma invalidação aconteceu desde que generation foi lido.
// Devolve false quando o valor foi descartado.
func (rc *RedisClient) SetKeyIfGeneration(ctx context.Context, key string, value string, generation int64) (bool, error) {
	genKey := rc.generationKey(key)

	err := rc.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			rc.queueSet(ctx, pipe, key, value)
			return nil
		})
		return err
	}, genKey)

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (rc *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	result := rc.client.HGet(ctx, rc.dataKey(key), "data")

	// Cache miss
	if result.Err() == redis.Nil {
		return "", false, nil
	}
	if result.Err() != nil {
		return "", false, result.Err()
	}

	return result.Val(), true, nil
}

// InvalidateKeys remove chave por chave: em cluster, um DEL com várias chaves
// falha quando elas caem em slots diferentes. Cada remoção incrementa a geração
// da chave, descartando gravações de leituras que começaram antes.
func (rc *RedisClient) InvalidateKeys(ctx context.Context, keys []string) error {
	var errs []string

	for _, key := range keys {
		pipe := rc.client.TxPipeline()
		pipe.Incr(ctx, rc.generationKey(key))
		pipe.Del(ctx, rc.dataKey(key))
		if _, err := pipe.Exec(ctx); err != nil {
			errs = append(errs, fmt.Sprintf("key %s: %v", key, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalidation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
