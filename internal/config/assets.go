package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// BehaviorDefinition – класс поведения и его встроенные свойства
type BehaviorDefinition struct {
	Name       string                 `yaml:"name"`
	Properties map[string]interface{} `yaml:"properties"`
}

// BlockDefinition – описание семейства блоков.
// Code может содержать подстановки {group}, которые раскрываются по Variants:
//
//	code: log-barked-{wood}-ud
//	variants:
//	  wood: [oak, birch]
type BlockDefinition struct {
	Code      string               `yaml:"code"`
	Variants  map[string][]string  `yaml:"variants"`
	Behaviors []BehaviorDefinition `yaml:"behaviors"`
}

// BlockVariant – конкретный тип блока после раскрытия шаблона
type BlockVariant struct {
	Code    string
	Variant map[string]string
}

// Expand раскрывает шаблон кода во все комбинации вариантов.
// Порядок детерминирован: группы по алфавиту, значения в порядке описания.
func (d BlockDefinition) Expand() ([]BlockVariant, error) {
	groups := make([]string, 0, len(d.Variants))
	for g := range d.Variants {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	out := []BlockVariant{{Code: d.Code, Variant: map[string]string{}}}
	for _, g := range groups {
		values := d.Variants[g]
		if len(values) == 0 {
			return nil, fmt.Errorf("блок %s: пустая группа вариантов %q", d.Code, g)
		}
		next := make([]BlockVariant, 0, len(out)*len(values))
		for _, bv := range out {
			for _, v := range values {
				variant := make(map[string]string, len(bv.Variant)+1)
				for k, val := range bv.Variant {
					variant[k] = val
				}
				variant[g] = v
				next = append(next, BlockVariant{
					Code:    strings.ReplaceAll(bv.Code, "{"+g+"}", v),
					Variant: variant,
				})
			}
		}
		out = next
	}

	for _, bv := range out {
		if strings.ContainsAny(bv.Code, "{}") {
			return nil, fmt.Errorf("блок %s: нераскрытая подстановка в %q", d.Code, bv.Code)
		}
	}
	return out, nil
}

// ItemDefinition – предмет из каталога items.yaml
type ItemDefinition struct {
	Code       string `yaml:"code"`
	Durability int    `yaml:"durability"`
}

// Assets – всё, что загружено из каталога ассетов
type Assets struct {
	Blocks []BlockDefinition
	Items  []ItemDefinition
}

// LoadAssets читает blocks/*.yaml и items.yaml из каталога dir.
// Отсутствие items.yaml или каталога blocks – не ошибка.
func LoadAssets(dir string) (*Assets, error) {
	assets := &Assets{}

	files, err := filepath.Glob(filepath.Join(dir, "blocks", "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("чтение %s: %w", f, err)
		}
		var def BlockDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("разбор %s: %w", f, err)
		}
		if def.Code == "" {
			return nil, fmt.Errorf("%s: не задан code", f)
		}
		assets.Blocks = append(assets.Blocks, def)
	}

	data, err := os.ReadFile(filepath.Join(dir, "items.yaml"))
	switch {
	case os.IsNotExist(err):
		return assets, nil
	case err != nil:
		return nil, fmt.Errorf("чтение items.yaml: %w", err)
	}

	var catalogue struct {
		Items []ItemDefinition `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("разбор items.yaml: %w", err)
	}
	assets.Items = catalogue.Items
	return assets, nil
}
