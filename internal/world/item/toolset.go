package item

import "sort"

// Searcher – источник предметов для разрешения инструментов
type Searcher interface {
	Search(pattern string) []*Item
}

// ToolSet – множество конкретных предметов, подходящих для взаимодействия
type ToolSet struct {
	codes map[Code]struct{}
}

// ResolveTools раскрывает имена (с шаблонами) в конкретные предметы реестра.
// Имена без совпадений молча пропускаются.
func ResolveTools(registry Searcher, names []string) ToolSet {
	set := ToolSet{codes: make(map[Code]struct{})}
	for _, name := range names {
		for _, it := range registry.Search(name) {
			set.codes[it.Code] = struct{}{}
		}
	}
	return set
}

// Contains проверяет принадлежность предмета множеству
func (ts ToolSet) Contains(it *Item) bool {
	if it == nil {
		return false
	}
	_, ok := ts.codes[it.Code]
	return ok
}

// Len возвращает размер множества
func (ts ToolSet) Len() int { return len(ts.codes) }

// Codes возвращает отсортированный список кодов
func (ts ToolSet) Codes() []Code {
	out := make([]Code, 0, len(ts.codes))
	for c := range ts.codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
