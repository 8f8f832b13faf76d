package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "oranda:wizard:"

// RedisStore хранит состояния мастера в Redis (JSON с TTL), чтобы несколько
// экземпляров бота видели одно и то же состояние разговора.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore подключается к Redis. addr - "host:port" или URL вида redis://...
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr, DB: 0}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("подключение к Redis %s: %w", opts.Addr, err)
	}
	log.Println("🔧 Redis initialized with address:", opts.Addr)
	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(key ConversationKey) string {
	return redisKeyPrefix + key.String()
}

func (r *RedisStore) Load(ctx context.Context, key ConversationKey) (Wizard, bool, error) {
	raw, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return Wizard{}, false, nil
	}
	if err != nil {
		return Wizard{}, false, err
	}
	var w Wizard
	if err := json.Unmarshal(raw, &w); err != nil {
		// Повреждённое значение считаем отсутствующим: мастер начнётся заново.
		log.Printf("RedisStore.Load: Некорректное состояние для %s: %v", key, err)
		return Wizard{}, false, nil
	}
	return w, true, nil
}

func (r *RedisStore) Save(ctx context.Context, key ConversationKey, w Wizard) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(key), raw, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key ConversationKey) error {
	return r.client.Del(ctx, redisKey(key)).Err()
}

// Close закрывает соединение с Redis.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
