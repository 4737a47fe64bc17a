package world

import (
	"fmt"

	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/item"
)

// BuildItems регистрирует предметы каталога
func BuildItems(defs []config.ItemDefinition) (*item.Registry, error) {
	reg := item.NewRegistry()
	for _, d := range defs {
		it := &item.Item{Code: item.NormalizeCode(d.Code), MaxDurability: d.Durability}
		if err := reg.Register(it); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadTypes раскрывает описания блоков в типы и создаёт их поведения.
// Пустые World/Feedback в env заменяются самим миром.
func (w *World) LoadTypes(defs []config.BlockDefinition, behaviors *block.BehaviorRegistry, env block.Env) error {
	if env.World == nil {
		env.World = w
	}
	if env.Feedback == nil {
		env.Feedback = w
	}

	for _, def := range defs {
		variants, err := def.Expand()
		if err != nil {
			return err
		}
		for _, v := range variants {
			bt := &block.BlockType{Code: block.ParseCode(v.Code), Variant: v.Variant}
			for _, bd := range def.Behaviors {
				b, err := behaviors.Create(bd.Name, bt, block.Properties(bd.Properties), env)
				if err != nil {
					return fmt.Errorf("тип %s: %w", bt.Code, err)
				}
				bt.AddBehavior(b)
			}
			if err := w.types.Add(bt); err != nil {
				return err
			}
		}
	}

	logging.Info("🧱 Загружено типов блоков: %d", w.types.Len())
	return nil
}
