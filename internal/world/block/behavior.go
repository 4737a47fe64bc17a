package block

import (
	"errors"

	"github.com/annel0/resinfarm/internal/world/item"
	"github.com/google/uuid"
)

// ErrSessionNotActive – Step/Stop вызваны для неактивной сессии.
// Это нарушение контракта со стороны диспетчера, а не игровая ситуация.
var ErrSessionNotActive = errors.New("interaction session is not active")

// ErrUnknownBlock – код или позиция не соответствуют зарегистрированному типу блока
var ErrUnknownBlock = errors.New("unknown block")

// Handling сообщает диспетчеру, забрало ли поведение взаимодействие
type Handling int

const (
	// PassThrough – поведение не применимо, диспетчер пробует следующее
	PassThrough Handling = iota
	// Handled – обработано, остальные поведения тоже могут быть вызваны
	Handled
	// PreventDefault – обработано, остальные поведения не вызываются
	PreventDefault
)

func (h Handling) String() string {
	switch h {
	case Handled:
		return "handled"
	case PreventDefault:
		return "prevent_default"
	default:
		return "pass_through"
	}
}

// SessionState – состояние автомата взаимодействия
type SessionState int

const (
	StateIdle SessionState = iota
	StateActive
	StateCompleted
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Session – одна попытка непрерывного взаимодействия (start → step* → stop).
// Не переживает один цикл; после завершения не используется повторно.
type Session struct {
	ID       string
	Behavior string
	Agent    Agent
	Tool     *item.Slot
	Target   Selection
	Elapsed  float64
	State    SessionState
}

// NewSession создаёт активную сессию
func NewSession(behavior string, agent Agent, tool *item.Slot, target Selection) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Behavior: behavior,
		Agent:    agent,
		Tool:     tool,
		Target:   target,
		State:    StateActive,
	}
}

// Active сообщает, что сессия в состоянии Active
func (s *Session) Active() bool { return s != nil && s.State == StateActive }

// Advance записывает прошедшее время. Время не убывает.
func (s *Session) Advance(seconds float64) error {
	if !s.Active() {
		return ErrSessionNotActive
	}
	if seconds > s.Elapsed {
		s.Elapsed = seconds
	}
	return nil
}

// Cancel переводит сессию в Cancelled без каких-либо эффектов
func (s *Session) Cancel() error {
	if !s.Active() {
		return ErrSessionNotActive
	}
	s.State = StateCancelled
	return nil
}

// StopResult – итог Stop
type StopResult struct {
	State SessionState `json:"state"`
	// Evaluated – исход был вычислен (только для Completed)
	Evaluated bool `json:"evaluated"`
	Success   bool `json:"success"`
	// Transformed – блок заменён (только сторона, изменяющая мир)
	Transformed bool   `json:"transformed"`
	NewCode     string `json:"new_code,omitempty"`
	ToolDamaged bool   `json:"tool_damaged"`
	// FeedbackSent – игроку отправлено сообщение о неудаче
	FeedbackSent bool `json:"feedback_sent"`
}

// WorldInteraction – подсказка для игрока: какое действие и какими инструментами
type WorldInteraction struct {
	ActionCode      string      `json:"action_code"`
	MouseButton     string      `json:"mouse_button"`
	RequireFreeHand bool        `json:"require_free_hand"`
	Tools           []item.Code `json:"tools"`
	DurationSeconds float64     `json:"duration_seconds"`
}

// InteractionBehavior определяет поведение блока при длительном взаимодействии.
// Реализации не хранят состояние между вызовами – всё состояние живёт в Session.
type InteractionBehavior interface {
	Name() string

	// Start начинает взаимодействие. PassThrough и nil-сессия означают "не применимо".
	Start(agent Agent, sel Selection) (*Session, Handling)

	// Step вызывается каждый тик. false – можно останавливать.
	Step(s *Session, secondsUsed float64) (bool, error)

	// Stop завершает взаимодействие. Меньше нужной длительности – полная отмена.
	Stop(s *Session, secondsUsed float64) (StopResult, error)

	// Help – справка для отображения подсказок, без изменения состояния
	Help() []WorldInteraction
}
