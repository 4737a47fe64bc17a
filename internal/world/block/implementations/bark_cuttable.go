package implementations

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/item"
)

// BarkCuttableName – имя класса поведения в описаниях блоков
const BarkCuttableName = "BarkCuttable"

const (
	// InvalidLogErrorCode – код сообщения игроку, если бревно не дало смолы
	InvalidLogErrorCode = "resinfarm:invalid-log-block"
	invalidLogMessage   = "This log has no resin"

	helpActionCode   = "resinfarm:blockhelp-cut"
	resinBlockPrefix = "log-resin-"

	// ToolDamagePerUse – расход прочности за завершённую подрезку
	ToolDamagePerUse = 1
)

// barkCutter – общая часть обеих ролей: проверка инструмента и отсчёт времени.
// Сам по себе состояния между вызовами не хранит.
type barkCutter struct {
	code   block.Code
	config BarkConfig
	tools  item.ToolSet
	world  block.WorldAccessor
}

func (b *barkCutter) Name() string { return BarkCuttableName }

// Config возвращает применённые настройки
func (b *barkCutter) Config() BarkConfig { return b.config }

// Tools возвращает множество подходящих инструментов
func (b *barkCutter) Tools() item.ToolSet { return b.tools }

func (b *barkCutter) Start(agent block.Agent, sel block.Selection) (*block.Session, block.Handling) {
	if agent == nil {
		return nil, block.PassThrough
	}
	slot := agent.ActiveSlot()
	if slot.Empty() || !b.tools.Contains(slot.Item()) {
		return nil, block.PassThrough
	}
	return block.NewSession(BarkCuttableName, agent, slot, sel), block.PreventDefault
}

func (b *barkCutter) Step(s *block.Session, secondsUsed float64) (bool, error) {
	if err := s.Advance(secondsUsed); err != nil {
		return false, err
	}
	return secondsUsed <= b.config.Duration, nil
}

func (b *barkCutter) Help() []block.WorldInteraction {
	return []block.WorldInteraction{{
		ActionCode:      helpActionCode,
		MouseButton:     "right",
		RequireFreeHand: false,
		Tools:           b.tools.Codes(),
		DurationSeconds: b.config.Duration,
	}}
}

// settle завершает сессию: Completed, если время вышло, иначе Cancelled.
func (b *barkCutter) settle(s *block.Session, secondsUsed float64) (bool, error) {
	if !s.Active() {
		return false, block.ErrSessionNotActive
	}
	_ = s.Advance(secondsUsed)
	if secondsUsed < b.config.Duration {
		s.State = block.StateCancelled
		return false, nil
	}
	s.State = block.StateCompleted
	return true, nil
}

func (b *barkCutter) succeeds(s *block.Session) bool {
	return ShouldSucceed(b.world.Seed(), s.Target.Position, b.config.Chance)
}

// ServerBarkCuttable – роль, изменяющая мир: заменяет блок и тратит прочность.
type ServerBarkCuttable struct {
	barkCutter
}

func (b *ServerBarkCuttable) Stop(s *block.Session, secondsUsed float64) (block.StopResult, error) {
	completed, err := b.settle(s, secondsUsed)
	if err != nil {
		return block.StopResult{State: stateOf(s)}, err
	}
	if !completed {
		return block.StopResult{State: block.StateCancelled}, nil
	}

	res := block.StopResult{State: block.StateCompleted, Evaluated: true, Success: b.succeeds(s)}
	pos := s.Target.Position

	if res.Success {
		current, ok := b.world.BlockAt(pos)
		wood := current.VariantValue("wood")
		switch {
		case !ok:
			logging.Warn("BarkCuttable: блок в %v исчез до завершения подрезки", pos)
		case wood == "":
			logging.Warn("BarkCuttable: у блока %s нет варианта wood", current.Code)
		default:
			next := ResinBlockCode(wood, s.Target.Face)
			if err := b.world.SetBlockAt(s.Agent, pos, next); err != nil {
				return res, fmt.Errorf("замена блока в %v на %s: %w", pos, next, err)
			}
			res.Transformed = true
			res.NewCode = next.String()
		}
	}

	// Прочность тратится у активного слота на момент остановки, а не у слота из Start
	b.world.DamageTool(s.Agent, s.Agent.ActiveSlot(), ToolDamagePerUse)
	res.ToolDamaged = true

	logging.Debug("BarkCuttable: %s в %v success=%v transformed=%v", b.code, pos, res.Success, res.Transformed)
	return res, nil
}

// ClientBarkCuttable – наблюдающая роль: мир не меняет, сообщает игроку о неудаче.
type ClientBarkCuttable struct {
	barkCutter
	feedback block.Feedback
}

func (b *ClientBarkCuttable) Stop(s *block.Session, secondsUsed float64) (block.StopResult, error) {
	completed, err := b.settle(s, secondsUsed)
	if err != nil {
		return block.StopResult{State: stateOf(s)}, err
	}
	if !completed {
		return block.StopResult{State: block.StateCancelled}, nil
	}

	res := block.StopResult{State: block.StateCompleted, Evaluated: true, Success: b.succeeds(s)}
	if !res.Success && b.feedback != nil {
		b.feedback.TriggerError(s.Agent, InvalidLogErrorCode, invalidLogMessage)
		res.FeedbackSent = true
	}
	return res, nil
}

// ResinBlockCode возвращает код смоляного варианта бревна для породы и стороны
func ResinBlockCode(wood string, face block.Face) block.Code {
	return block.Code{Domain: item.DefaultDomain, Path: resinBlockPrefix + wood + face.RotationSuffix()}
}

func stateOf(s *block.Session) block.SessionState {
	if s == nil {
		return block.StateIdle
	}
	return s.State
}

// NewBarkCuttable – фабрика поведения для реестра классов.
// Роль выбирается один раз при создании.
func NewBarkCuttable(bt *block.BlockType, props block.Properties, env block.Env) (block.InteractionBehavior, error) {
	if env.World == nil {
		return nil, errors.New("BarkCuttable: не задан WorldAccessor")
	}
	if env.Items == nil {
		return nil, errors.New("BarkCuttable: не задан реестр предметов")
	}

	ctx := env.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := ResolveConfig(ctx, env.Configs, ConfigKey(bt.Code), props)
	if err != nil {
		return nil, fmt.Errorf("BarkCuttable %s: %w", bt.Code, err)
	}

	tools := item.ResolveTools(env.Items, cfg.Tools)
	if tools.Len() == 0 {
		logging.Warn("BarkCuttable %s: ни один инструмент из %v не найден в реестре", bt.Code, cfg.Tools)
	}

	base := barkCutter{code: bt.Code, config: cfg, tools: tools, world: env.World}

	switch env.Role {
	case block.RoleServer:
		return &ServerBarkCuttable{barkCutter: base}, nil
	case block.RoleClient:
		return &ClientBarkCuttable{barkCutter: base, feedback: env.Feedback}, nil
	default:
		return nil, fmt.Errorf("BarkCuttable: неизвестная роль %q", env.Role)
	}
}
