package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/annel0/resinfarm/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "resinfarm:config:",
	}
}

// RedisConfigStore хранит настройки в Redis – общий источник для нескольких серверов
type RedisConfigStore struct {
	client    *redis.Client
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// NewRedisConfigStore подключается к Redis и проверяет соединение
func NewRedisConfigStore(config *RedisConfig) (*RedisConfigStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.Addr == "" {
		config.Addr = DefaultRedisConfig().Addr
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", config.Addr)
	return &RedisConfigStore{client: client, keyPrefix: config.KeyPrefix}, nil
}

func (s *RedisConfigStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *RedisConfigStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if s.isClosed() {
		return false, ErrStoreClosed
	}

	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return true, decode(data, v)
}

func (s *RedisConfigStore) Store(ctx context.Context, key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if s.isClosed() {
		return ErrStoreClosed
	}
	data, err := encode(v)
	if err != nil {
		return err
	}

	// Без TTL: настройки живут, пока их не удалят
	if err := s.client.Set(ctx, s.keyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

func (s *RedisConfigStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if s.isClosed() {
		return ErrStoreClosed
	}
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}

func (s *RedisConfigStore) Keys(ctx context.Context) ([]string, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan config keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisConfigStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
