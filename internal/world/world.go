package world

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/resinfarm/internal/eventbus"
	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/item"
)

// FeedbackMessage – сообщение об ошибке, адресованное одному агенту
type FeedbackMessage struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// World – хост в памяти: блоки, типы блоков, игроки и канал обратной связи.
// Реализует block.WorldAccessor и block.Feedback.
type World struct {
	seed   int64
	source string
	types  *block.TypeTable
	bus    eventbus.EventBus

	mu      sync.RWMutex
	blocks  map[vec.Vec3]block.Block
	players map[string]*Player
	inbox   map[string][]FeedbackMessage
}

// NewWorld создаёт пустой мир. bus может быть nil – тогда события не публикуются.
func NewWorld(seed int64, bus eventbus.EventBus) *World {
	return &World{
		seed:    seed,
		source:  "world",
		types:   block.NewTypeTable(),
		bus:     bus,
		blocks:  make(map[vec.Vec3]block.Block),
		players: make(map[string]*Player),
		inbox:   make(map[string][]FeedbackMessage),
	}
}

// SetSource задаёт имя источника в публикуемых событиях
func (w *World) SetSource(source string) { w.source = source }

func (w *World) Seed() int64 { return w.seed }

// Types возвращает таблицу типов блоков
func (w *World) Types() *block.TypeTable { return w.types }

func (w *World) BlockAt(pos vec.Vec3) (block.Block, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.blocks[pos]
	return b, ok
}

// TypeAt возвращает тип блока в позиции
func (w *World) TypeAt(pos vec.Vec3) (*block.BlockType, bool) {
	b, ok := w.BlockAt(pos)
	if !ok {
		return nil, false
	}
	return w.types.Get(b.Code)
}

// PlaceBlock ставит блок без публикации событий (генерация, загрузка)
func (w *World) PlaceBlock(pos vec.Vec3, code block.Code) error {
	bt, ok := w.types.Get(code)
	if !ok {
		return fmt.Errorf("%w: %s", block.ErrUnknownBlock, code)
	}
	w.mu.Lock()
	w.blocks[pos] = bt.Block()
	w.mu.Unlock()
	return nil
}

// BlockCount возвращает количество блоков в мире
func (w *World) BlockCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

func (w *World) SetBlockAt(agent block.Agent, pos vec.Vec3, code block.Code) error {
	bt, ok := w.types.Get(code)
	if !ok {
		return fmt.Errorf("%w: %s", block.ErrUnknownBlock, code)
	}

	w.mu.Lock()
	old := w.blocks[pos]
	w.blocks[pos] = bt.Block()
	w.mu.Unlock()

	logging.Debug("World: %v %s -> %s", pos, old.Code, code)
	w.publish(eventbus.EventBlockTransformed, eventbus.BlockTransformedPayload{
		Position: pos,
		OldCode:  old.Code.String(),
		NewCode:  code.String(),
		AgentID:  agentID(agent),
	})
	return nil
}

func (w *World) DamageTool(agent block.Agent, slot *item.Slot, amount int) {
	w.mu.Lock()
	if slot.Empty() || !slot.Item().IsTool() {
		w.mu.Unlock()
		return
	}
	code := slot.Item().Code
	broken := slot.DamageItem(amount)
	durability := 0
	if !broken {
		durability = slot.Stack.Durability
	}
	w.mu.Unlock()

	if broken {
		logging.Info("🪓 Инструмент %s агента %s сломался", code, agentID(agent))
	}
	w.publish(eventbus.EventToolDamaged, eventbus.ToolDamagedPayload{
		AgentID:    agentID(agent),
		Item:       string(code),
		Amount:     amount,
		Durability: durability,
		Broken:     broken,
	})
}

func (w *World) TriggerError(agent block.Agent, code, message string) {
	if agent == nil {
		return
	}
	w.mu.Lock()
	w.inbox[agent.ID()] = append(w.inbox[agent.ID()], FeedbackMessage{Code: code, Message: message, At: time.Now()})
	w.mu.Unlock()
	logging.Debug("World: feedback %s для %s: %s", code, agent.ID(), message)
}

// Messages забирает накопленные сообщения агента
func (w *World) Messages(agentID string) []FeedbackMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	msgs := w.inbox[agentID]
	delete(w.inbox, agentID)
	return msgs
}

// AddPlayer регистрирует игрока в мире
func (w *World) AddPlayer(p *Player) {
	w.mu.Lock()
	w.players[p.ID()] = p
	w.mu.Unlock()
}

// Player возвращает игрока по ID
func (w *World) Player(id string) (*Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[id]
	return p, ok
}

// ReadInventories выполняет fn под блокировкой чтения мира.
// Инвентари зарегистрированных игроков меняются только под записью (DamageTool).
func (w *World) ReadInventories(fn func()) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn()
}

// PlayerSnapshot – копия состояния игрока, безопасная для чтения вне мира
type PlayerSnapshot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ActiveSlot int      `json:"active_slot"`
	Hotbar     []string `json:"hotbar"`
}

// PlayerSnapshot возвращает снимок игрока, снятый под блокировкой мира
func (w *World) PlayerSnapshot(id string) (PlayerSnapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return PlayerSnapshot{}, false
	}
	snap := PlayerSnapshot{ID: p.ID(), Name: p.Name, ActiveSlot: p.Inventory.ActiveSlot}
	for i := range p.Inventory.Hotbar {
		snap.Hotbar = append(snap.Hotbar, p.Inventory.Hotbar[i].Stack.String())
	}
	return snap, true
}

// Players возвращает игроков, отсортированных по ID
func (w *World) Players() []*Player {
	w.mu.RLock()
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func agentID(agent block.Agent) string {
	if agent == nil {
		return ""
	}
	return agent.ID()
}

func (w *World) publish(eventType string, payload interface{}) {
	if w.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(w.source, eventType, payload)
	if err != nil {
		logging.Error("World: %v", err)
		return
	}
	if err := w.bus.Publish(context.Background(), ev); err != nil {
		logging.Warn("World: не удалось опубликовать %s: %v", eventType, err)
	}
}
