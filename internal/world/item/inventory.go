package item

// HotbarSize – число слотов быстрого доступа
const HotbarSize = 10

// Inventory – инвентарь агента с хотбаром и активным слотом
type Inventory struct {
	Hotbar     [HotbarSize]Slot `json:"hotbar"`
	ActiveSlot int              `json:"active_slot"`
}

// NewInventory создаёт пустой инвентарь
func NewInventory() *Inventory {
	return &Inventory{}
}

// Active возвращает активный слот хотбара
func (inv *Inventory) Active() *Slot {
	if inv.ActiveSlot < 0 || inv.ActiveSlot >= HotbarSize {
		return nil
	}
	return &inv.Hotbar[inv.ActiveSlot]
}

// Select делает слот активным. Возвращает false для неверного индекса.
func (inv *Inventory) Select(index int) bool {
	if index < 0 || index >= HotbarSize {
		return false
	}
	inv.ActiveSlot = index
	return true
}

// Put кладёт стак в слот хотбара
func (inv *Inventory) Put(index int, stack *Stack) bool {
	if index < 0 || index >= HotbarSize {
		return false
	}
	inv.Hotbar[index].Stack = stack
	return true
}
