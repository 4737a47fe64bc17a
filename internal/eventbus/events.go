package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/resinfarm/internal/vec"
)

// Типы событий взаимодействия с блоками
const (
	EventBlockTransformed     = "BlockTransformed"
	EventToolDamaged          = "ToolDamaged"
	EventInteractionCompleted = "InteractionCompleted"
	EventInteractionCancelled = "InteractionCancelled"
	EventResinMissed          = "ResinMissed"
)

// PriorityNormal – приоритет по умолчанию; PriorityHigh не дропается при переполнении
const (
	PriorityNormal = 3
	PriorityHigh   = 7
)

const payloadVersion = 1

// BlockTransformedPayload – блок заменён на другой код
type BlockTransformedPayload struct {
	Position vec.Vec3 `json:"position"`
	OldCode  string   `json:"old_code"`
	NewCode  string   `json:"new_code"`
	AgentID  string   `json:"agent_id"`
}

// ToolDamagedPayload – инструмент агента потерял прочность
type ToolDamagedPayload struct {
	AgentID    string `json:"agent_id"`
	Item       string `json:"item"`
	Amount     int    `json:"amount"`
	Durability int    `json:"durability"`
	Broken     bool   `json:"broken"`
}

// InteractionPayload – итог сессии взаимодействия
type InteractionPayload struct {
	SessionID string   `json:"session_id"`
	AgentID   string   `json:"agent_id"`
	Behavior  string   `json:"behavior"`
	Block     string   `json:"block"`
	Position  vec.Vec3 `json:"position"`
	Elapsed   float64  `json:"elapsed"`
	Success   bool     `json:"success"`
}

// NewEnvelope упаковывает полезную нагрузку в JSON и заполняет служебные поля
func NewEnvelope(source, eventType string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   payloadVersion,
		Priority:  PriorityNormal,
		Payload:   data,
	}, nil
}

// DecodePayload распаковывает полезную нагрузку события в v
func (e *Envelope) DecodePayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
