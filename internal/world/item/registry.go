package item

import (
	"fmt"
	"path"
	"sort"
	"sync"
)

// Registry – реестр типов предметов мира
type Registry struct {
	mu    sync.RWMutex
	items map[Code]*Item
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{items: make(map[Code]*Item)}
}

// Register добавляет тип предмета в реестр
func (r *Registry) Register(it *Item) error {
	if it == nil || it.Code == "" {
		return fmt.Errorf("пустой код предмета")
	}
	it.Code = NormalizeCode(string(it.Code))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[it.Code]; exists {
		return fmt.Errorf("предмет %s уже зарегистрирован", it.Code)
	}
	r.items[it.Code] = it
	return nil
}

// Get возвращает предмет по коду
func (r *Registry) Get(code Code) (*Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[NormalizeCode(string(code))]
	return it, ok
}

// Search ищет предметы по шаблону с '*' (например, game:knife-*).
// Результат отсортирован по коду.
func (r *Registry) Search(pattern string) []*Item {
	pattern = string(NormalizeCode(pattern))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*Item
	for code, it := range r.items {
		if ok, err := path.Match(pattern, string(code)); err == nil && ok {
			found = append(found, it)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Code < found[j].Code })
	return found
}

// Len возвращает количество зарегистрированных предметов
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
