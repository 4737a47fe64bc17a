package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/logging"
)

// ConfigStore определяет интерфейс постоянного хранилища настроек поведений блоков.
// Значения сериализуются в JSON, ключи – имена вида "log-barked-oak-config.json".
type ConfigStore interface {
	// Load загружает значение по ключу в v.
	// Возвращает:
	//   bool - true если запись найдена
	//   error - ошибка хранилища или десериализации
	Load(ctx context.Context, key string, v interface{}) (bool, error)

	// Store сохраняет значение v под ключом key (перезаписывает существующее)
	Store(ctx context.Context, key string, v interface{}) error

	// Delete удаляет запись. Отсутствующий ключ – не ошибка.
	Delete(ctx context.Context, key string) error

	// Keys возвращает отсортированный список ключей
	Keys(ctx context.Context) ([]string, error)

	// Close закрывает хранилище
	Close() error
}

var (
	// ErrStoreClosed – операция над закрытым хранилищем
	ErrStoreClosed = errors.New("config store is closed")
	// ErrInvalidKey – пустой или некорректный ключ
	ErrInvalidKey = errors.New("invalid config key")
)

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	return data, nil
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка десериализации: %w", err)
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Open создаёт хранилище по конфигурации
func Open(cfg config.StorageConfig) (ConfigStore, error) {
	log := logging.GetStorageLogger()
	store, err := open(cfg)
	if err != nil {
		log.Error("❌ Хранилище настроек %q: %v", cfg.Backend, err)
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = config.StorageMemory
	}
	log.Info("💾 Хранилище настроек: %s", backend)
	return store, nil
}

func open(cfg config.StorageConfig) (ConfigStore, error) {
	switch cfg.Backend {
	case "", config.StorageMemory:
		return NewMemoryConfigStore(), nil
	case config.StorageFile:
		return NewFileConfigStore(cfg.Path)
	case config.StorageBadger:
		return NewBadgerConfigStore(cfg.Path)
	case config.StorageRedis:
		return NewRedisConfigStore(&RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.StorageMaria:
		return NewMariaConfigStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("неизвестный backend хранилища: %q", cfg.Backend)
	}
}
