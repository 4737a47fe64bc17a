package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileConfigStore хранит каждую запись отдельным JSON-файлом в каталоге.
// Формат совпадает с файлами ModConfig: ключ – имя файла.
type FileConfigStore struct {
	basePath string
	mu       sync.RWMutex
	closed   bool
}

// NewFileConfigStore создаёт хранилище в каталоге basePath (создаётся при необходимости)
func NewFileConfigStore(basePath string) (*FileConfigStore, error) {
	if basePath == "" {
		basePath = "data/modconfig"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}
	return &FileConfigStore{basePath: basePath}, nil
}

func (s *FileConfigStore) filename(key string) string {
	return filepath.Join(s.basePath, key)
}

func (s *FileConfigStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrStoreClosed
	}

	data, err := os.ReadFile(s.filename(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка чтения файла %s: %w", key, err)
	}
	return true, decode(data, v)
}

func (s *FileConfigStore) Store(ctx context.Context, key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить половину записи
	tmp := s.filename(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.filename(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ошибка переименования файла %s: %w", key, err)
	}
	return nil
}

func (s *FileConfigStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	err := os.Remove(s.filename(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", key, err)
	}
	return nil
}

func (s *FileConfigStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", s.basePath, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) == ".tmp" {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileConfigStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
