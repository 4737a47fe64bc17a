package item

import (
	"fmt"
	"strings"
)

// DefaultDomain – домен по умолчанию для кодов без префикса
const DefaultDomain = "game"

// Code – идентификатор предмета вида "domain:path" (например, game:knife-flint)
type Code string

// NormalizeCode дописывает домен по умолчанию, если он не указан
func NormalizeCode(s string) Code {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ":") {
		s = DefaultDomain + ":" + s
	}
	return Code(strings.ToLower(s))
}

// Item описывает тип предмета
type Item struct {
	Code          Code `json:"code" yaml:"code"`
	MaxDurability int  `json:"max_durability" yaml:"durability"`
}

// IsTool сообщает, расходует ли предмет прочность
func (it *Item) IsTool() bool {
	return it != nil && it.MaxDurability > 0
}

// Stack – экземпляр предмета в слоте инвентаря
type Stack struct {
	Item       *Item `json:"item"`
	Size       int   `json:"size"`
	Durability int   `json:"durability"`
}

// NewStack создаёт стак с полной прочностью
func NewStack(it *Item, size int) *Stack {
	return &Stack{Item: it, Size: size, Durability: it.MaxDurability}
}

// Damage уменьшает прочность на amount. Возвращает true, если инструмент сломался.
// Предметы без прочности не повреждаются.
func (s *Stack) Damage(amount int) bool {
	if s == nil || !s.Item.IsTool() || amount <= 0 {
		return false
	}
	s.Durability -= amount
	if s.Durability <= 0 {
		s.Durability = 0
		return true
	}
	return false
}

func (s *Stack) String() string {
	if s == nil || s.Item == nil {
		return "<empty>"
	}
	if s.Item.IsTool() {
		return fmt.Sprintf("%s (%d/%d)", s.Item.Code, s.Durability, s.Item.MaxDurability)
	}
	return fmt.Sprintf("%s x%d", s.Item.Code, s.Size)
}

// Slot – ячейка инвентаря
type Slot struct {
	Stack *Stack `json:"stack,omitempty"`
}

// Empty проверяет, пуст ли слот
func (s *Slot) Empty() bool {
	return s == nil || s.Stack == nil || s.Stack.Item == nil
}

// Item возвращает тип предмета в слоте или nil
func (s *Slot) Item() *Item {
	if s.Empty() {
		return nil
	}
	return s.Stack.Item
}

// DamageItem повреждает предмет в слоте. Сломанный инструмент удаляется из слота.
func (s *Slot) DamageItem(amount int) (broken bool) {
	if s.Empty() {
		return false
	}
	if s.Stack.Damage(amount) {
		s.Stack = nil
		return true
	}
	return false
}
