package block

import (
	"context"

	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world/item"
)

// Agent – участник взаимодействия (игрок или бот).
// Поведения не владеют агентом и не сохраняют его дольше одной сессии.
type Agent interface {
	ID() string
	// ActiveSlot возвращает активный слот хотбара (может быть nil)
	ActiveSlot() *item.Slot
}

// WorldAccessor определяет интерфейс для взаимодействия поведений блоков с миром.
// Реализуется хостом; поведения получают его при создании.
type WorldAccessor interface {
	// Seed возвращает сид мира
	Seed() int64

	// BlockAt возвращает блок в указанной позиции
	BlockAt(pos vec.Vec3) (Block, bool)

	// SetBlockAt заменяет блок в позиции на блок с указанным кодом по действию агента.
	// Код должен быть зарегистрирован в мире. agent может быть nil.
	SetBlockAt(agent Agent, pos vec.Vec3, code Code) error

	// DamageTool расходует прочность предмета в слоте агента
	DamageTool(agent Agent, slot *item.Slot, amount int)
}

// Feedback – канал сообщений об ошибках, видимый только наблюдающей стороне
type Feedback interface {
	TriggerError(agent Agent, code, message string)
}

// ConfigSource – постоянное хранилище настроек поведений по строковому ключу.
// Load возвращает found=false, если запись отсутствует.
type ConfigSource interface {
	Load(ctx context.Context, key string, v interface{}) (bool, error)
	Store(ctx context.Context, key string, v interface{}) error
}

// Role – роль процесса: изменяющая мир (сервер) или наблюдающая (клиент)
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// Valid проверяет, что роль известна
func (r Role) Valid() bool { return r == RoleServer || r == RoleClient }
