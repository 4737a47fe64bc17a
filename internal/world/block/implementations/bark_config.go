package implementations

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/resinfarm/internal/world/block"
)

// BarkConfig – настройки поведения BarkCuttable для типа блока.
// Загружаются один раз при инициализации и больше не меняются.
type BarkConfig struct {
	Duration float64  `json:"duration" yaml:"duration"`
	Chance   float64  `json:"chance" yaml:"chance"`
	Tools    []string `json:"tools" yaml:"tools"`
}

// Validate проверяет диапазоны значений
func (c BarkConfig) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration должен быть > 0, получено %v", c.Duration)
	}
	if c.Chance < 0 || c.Chance > 1 {
		return fmt.Errorf("chance должен быть в [0,1], получено %v", c.Chance)
	}
	if len(c.Tools) == 0 {
		return errors.New("список tools пуст")
	}
	return nil
}

// ConfigKey возвращает ключ хранилища для типа блока:
// путь кода без последнего сегмента + "-config.json".
func ConfigKey(code block.Code) string {
	return code.FirstPart() + "-config.json"
}

// ConfigFromProperties собирает настройки из встроенных свойств блока
func ConfigFromProperties(props block.Properties) BarkConfig {
	duration, _ := props.Float("duration")
	chance, _ := props.Float("chance")
	return BarkConfig{
		Duration: duration,
		Chance:   chance,
		Tools:    props.Strings("tools"),
	}
}

// ResolveConfig загружает настройки из хранилища. Отсутствие записи – не ошибка:
// берутся встроенные свойства и сразу сохраняются под тем же ключом.
func ResolveConfig(ctx context.Context, src block.ConfigSource, key string, props block.Properties) (BarkConfig, error) {
	if src == nil {
		cfg := ConfigFromProperties(props)
		return cfg, cfg.Validate()
	}

	var stored BarkConfig
	found, err := src.Load(ctx, key, &stored)
	if err != nil {
		return BarkConfig{}, fmt.Errorf("загрузка настроек %s: %w", key, err)
	}
	if found {
		if err := stored.Validate(); err != nil {
			return BarkConfig{}, fmt.Errorf("настройки %s: %w", key, err)
		}
		return stored, nil
	}

	cfg := ConfigFromProperties(props)
	if err := cfg.Validate(); err != nil {
		return BarkConfig{}, fmt.Errorf("встроенные свойства для %s: %w", key, err)
	}
	if err := src.Store(ctx, key, cfg); err != nil {
		return BarkConfig{}, fmt.Errorf("сохранение настроек %s: %w", key, err)
	}
	return cfg, nil
}
