package block

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/resinfarm/internal/world/item"
)

// Properties – встроенные свойства поведения из описания блока
type Properties map[string]interface{}

// Float возвращает число по ключу
func (p Properties) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Strings возвращает список строк по ключу
func (p Properties) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}

// Env – зависимости, которые хост передаёт поведениям при создании
type Env struct {
	Ctx      context.Context
	Role     Role
	World    WorldAccessor
	Feedback Feedback
	Items    item.Searcher
	Configs  ConfigSource
}

// Factory создаёт экземпляр поведения для конкретного типа блока
type Factory func(bt *BlockType, props Properties, env Env) (InteractionBehavior, error)

// BehaviorRegistry – реестр классов поведений по имени ("BarkCuttable")
type BehaviorRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewBehaviorRegistry создаёт пустой реестр
func NewBehaviorRegistry() *BehaviorRegistry {
	return &BehaviorRegistry{factories: make(map[string]Factory)}
}

// Register добавляет класс поведения
func (r *BehaviorRegistry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// Create создаёт поведение по имени класса
func (r *BehaviorRegistry) Create(name string, bt *BlockType, props Properties, env Env) (InteractionBehavior, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("неизвестный класс поведения %q", name)
	}
	return f(bt, props, env)
}

// Names возвращает отсортированный список зарегистрированных классов
func (r *BehaviorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TypeTable – таблица типов блоков мира
type TypeTable struct {
	mu    sync.RWMutex
	types map[string]*BlockType
}

// NewTypeTable создаёт пустую таблицу
func NewTypeTable() *TypeTable {
	return &TypeTable{types: make(map[string]*BlockType)}
}

// Add регистрирует тип блока
func (t *TypeTable) Add(bt *BlockType) error {
	key := bt.Code.String()
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.types[key]; exists {
		return fmt.Errorf("тип блока %s уже зарегистрирован", key)
	}
	t.types[key] = bt
	return nil
}

// Get возвращает тип блока по коду
func (t *TypeTable) Get(code Code) (*BlockType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bt, ok := t.types[code.String()]
	return bt, ok
}

// Len возвращает количество типов
func (t *TypeTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.types)
}

// Each обходит типы в порядке кодов
func (t *TypeTable) Each(fn func(bt *BlockType)) {
	t.mu.RLock()
	keys := make([]string, 0, len(t.types))
	for k := range t.types {
		keys = append(keys, k)
	}
	t.mu.RUnlock()
	sort.Strings(keys)

	for _, k := range keys {
		t.mu.RLock()
		bt := t.types[k]
		t.mu.RUnlock()
		fn(bt)
	}
}
