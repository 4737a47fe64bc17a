package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaConfigStore реализует ConfigStore для MariaDB/MySQL.
// Использует таблицу block_configs.
type MariaConfigStore struct {
	db *sql.DB
}

// NewMariaConfigStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения (user:pass@tcp(host:port)/dbname)
func NewMariaConfigStore(dsn string) (*MariaConfigStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store := &MariaConfigStore{db: db}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return store, nil
}

func (s *MariaConfigStore) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS block_configs (
			config_key VARCHAR(191) PRIMARY KEY,
			payload    TEXT         NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы block_configs: %w", err)
	}
	return nil
}

func (s *MariaConfigStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM block_configs WHERE config_key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка загрузки настроек %s: %w", key, err)
	}
	return true, decode(payload, v)
}

func (s *MariaConfigStore) Store(ctx context.Context, key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO block_configs (config_key, payload)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload)
	`
	if _, err := s.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("ошибка сохранения настроек %s: %w", key, err)
	}
	return nil
}

func (s *MariaConfigStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM block_configs WHERE config_key = ?`, key); err != nil {
		return fmt.Errorf("ошибка удаления настроек %s: %w", key, err)
	}
	return nil
}

func (s *MariaConfigStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT config_key FROM block_configs ORDER BY config_key`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ключей: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *MariaConfigStore) Close() error {
	return s.db.Close()
}
