package world

import (
	"github.com/google/uuid"

	"github.com/annel0/resinfarm/internal/world/item"
)

// Player – агент мира с инвентарём. Реализует block.Agent.
type Player struct {
	id        string
	Name      string
	Inventory *item.Inventory
}

// NewPlayer создаёт игрока с новым UUID и пустым инвентарём
func NewPlayer(name string) *Player {
	return &Player{
		id:        uuid.NewString(),
		Name:      name,
		Inventory: item.NewInventory(),
	}
}

func (p *Player) ID() string { return p.id }

// ActiveSlot возвращает активный слот хотбара
func (p *Player) ActiveSlot() *item.Slot {
	if p.Inventory == nil {
		return nil
	}
	return p.Inventory.Active()
}

// Give кладёт стак в слот хотбара и делает его активным
func (p *Player) Give(index int, stack *item.Stack) bool {
	if !p.Inventory.Put(index, stack) {
		return false
	}
	return p.Inventory.Select(index)
}
