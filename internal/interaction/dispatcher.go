package interaction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/resinfarm/internal/eventbus"
	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world/block"
)

var (
	// ErrPositionBusy – на позиции уже идёт взаимодействие
	ErrPositionBusy = errors.New("position already has an active interaction")
	// ErrAgentBusy – у агента уже есть активная сессия
	ErrAgentBusy = errors.New("agent already has an active interaction")
	// ErrNoSession – у агента нет активной сессии
	ErrNoSession = errors.New("no active interaction for agent")
)

// Host – мир, в котором диспетчер ищет типы блоков.
// ReadInventories выполняет fn, пока хост не меняет инвентари агентов.
type Host interface {
	TypeAt(pos vec.Vec3) (*block.BlockType, bool)
	ReadInventories(fn func())
}

// stateError – метка метрики для остановки, завершившейся ошибкой хоста
const stateError = "error"

type activeSession struct {
	session  *block.Session
	behavior block.InteractionBehavior
	code     block.Code
}

// SessionInfo – снимок активной сессии для внешних потребителей
type SessionInfo struct {
	ID       string          `json:"id"`
	AgentID  string          `json:"agent_id"`
	Behavior string          `json:"behavior"`
	Block    string          `json:"block"`
	Target   block.Selection `json:"target"`
	Elapsed  float64         `json:"elapsed"`
	State    string          `json:"state"`
}

// Dispatcher ведёт сессии взаимодействия: не более одной на позицию
// и не более одной на агента. Поведения сами состояния не хранят.
type Dispatcher struct {
	host    Host
	bus     eventbus.EventBus
	metrics *Metrics
	tracer  trace.Tracer
	source  string
	log     *logging.Logger

	mu         sync.Mutex
	byAgent    map[string]*activeSession
	byPosition map[vec.Vec3]string
}

// NewDispatcher создаёт диспетчер. bus и metrics могут быть nil.
func NewDispatcher(host Host, bus eventbus.EventBus, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		host:       host,
		bus:        bus,
		metrics:    metrics,
		tracer:     otel.Tracer("resinfarm/interaction"),
		source:     "interaction",
		log:        logging.GetInteractionLogger(),
		byAgent:    make(map[string]*activeSession),
		byPosition: make(map[vec.Vec3]string),
	}
}

// Start опрашивает поведения блока по порядку. Первое вернувшее сессию забирает взаимодействие;
// PreventDefault без сессии прекращает опрос. handled=false – ни одно поведение не применимо.
func (d *Dispatcher) Start(ctx context.Context, agent block.Agent, sel block.Selection) (*block.Session, bool, error) {
	_, span := d.tracer.Start(ctx, "interaction.Start", trace.WithAttributes(
		attribute.String("position", sel.Position.String()),
		attribute.String("face", sel.Face.String()),
	))
	defer span.End()

	if agent == nil {
		return nil, false, errors.New("agent is nil")
	}
	span.SetAttributes(attribute.String("agent.id", agent.ID()))

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.byAgent[agent.ID()]; busy {
		return nil, false, ErrAgentBusy
	}
	if _, busy := d.byPosition[sel.Position]; busy {
		return nil, false, ErrPositionBusy
	}

	bt, ok := d.host.TypeAt(sel.Position)
	if !ok {
		err := fmt.Errorf("%w at %v", block.ErrUnknownBlock, sel.Position)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	span.SetAttributes(attribute.String("block", bt.Code.String()))

	var (
		session *block.Session
		owner   block.InteractionBehavior
		handled bool
	)
	// Поведения читают активный слот агента
	d.host.ReadInventories(func() {
		for _, b := range bt.Behaviors {
			s, h := b.Start(agent, sel)
			if s != nil {
				session, owner, handled = s, b, true
				return
			}
			switch h {
			case block.PreventDefault:
				handled = true
				return
			case block.Handled:
				handled = true
			}
		}
	})
	if session == nil {
		return nil, handled, nil
	}

	d.byAgent[agent.ID()] = &activeSession{session: session, behavior: owner, code: bt.Code}
	d.byPosition[sel.Position] = agent.ID()
	d.metrics.sessionStarted(owner.Name())
	span.SetAttributes(attribute.String("session.id", session.ID), attribute.String("behavior", owner.Name()))
	d.log.Debug("%s начал %s на %s %v", agent.ID(), owner.Name(), bt.Code, sel.Position)
	return session, true, nil
}

// Step продвигает сессию агента. false – поведение готово к остановке.
func (d *Dispatcher) Step(ctx context.Context, agentID string, secondsUsed float64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	as, ok := d.byAgent[agentID]
	if !ok {
		return false, ErrNoSession
	}
	return as.behavior.Step(as.session, secondsUsed)
}

// Stop завершает сессию агента и освобождает позицию независимо от исхода.
func (d *Dispatcher) Stop(ctx context.Context, agentID string, secondsUsed float64) (block.StopResult, error) {
	ctx, span := d.tracer.Start(ctx, "interaction.Stop", trace.WithAttributes(
		attribute.String("agent.id", agentID),
		attribute.Float64("seconds_used", secondsUsed),
	))
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	as, ok := d.byAgent[agentID]
	if !ok {
		return block.StopResult{}, ErrNoSession
	}
	d.release(agentID, as)

	name := as.behavior.Name()
	res, err := as.behavior.Stop(as.session, secondsUsed)
	state := res.State.String()
	if err != nil {
		state = stateError
	}
	d.metrics.sessionFinished(name, state, as.session.Elapsed)
	span.SetAttributes(
		attribute.String("session.id", as.session.ID),
		attribute.String("state", state),
		attribute.Bool("success", res.Success),
		attribute.Bool("transformed", res.Transformed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Error("остановка %s для %s: %v", name, agentID, err)
		return res, err
	}

	payload := d.payload(agentID, as)
	payload.Success = res.Success
	switch res.State {
	case block.StateCompleted:
		if res.Evaluated {
			d.metrics.outcome(name, res.Success)
		}
		d.publish(ctx, eventbus.EventInteractionCompleted, as.session.ID, payload)
		if res.Evaluated && !res.Success {
			d.publish(ctx, eventbus.EventResinMissed, as.session.ID, payload)
		}
	case block.StateCancelled:
		d.publish(ctx, eventbus.EventInteractionCancelled, as.session.ID, payload)
	}
	return res, nil
}

// Cancel прерывает сессию без каких-либо эффектов для мира и инструмента
func (d *Dispatcher) Cancel(ctx context.Context, agentID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	as, ok := d.byAgent[agentID]
	if !ok {
		return ErrNoSession
	}
	d.release(agentID, as)

	if err := as.session.Cancel(); err != nil {
		return err
	}
	d.metrics.sessionFinished(as.behavior.Name(), block.StateCancelled.String(), as.session.Elapsed)
	d.publish(ctx, eventbus.EventInteractionCancelled, as.session.ID, d.payload(agentID, as))
	return nil
}

// Help собирает подсказки всех поведений блока в позиции
func (d *Dispatcher) Help(pos vec.Vec3) ([]block.WorldInteraction, error) {
	bt, ok := d.host.TypeAt(pos)
	if !ok {
		return nil, fmt.Errorf("%w at %v", block.ErrUnknownBlock, pos)
	}
	var out []block.WorldInteraction
	for _, b := range bt.Behaviors {
		out = append(out, b.Help()...)
	}
	return out, nil
}

// Session возвращает снимок активной сессии агента
func (d *Dispatcher) Session(agentID string) (SessionInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	as, ok := d.byAgent[agentID]
	if !ok {
		return SessionInfo{}, false
	}
	return d.info(agentID, as), true
}

// Sessions возвращает снимки всех активных сессий, отсортированные по агенту
func (d *Dispatcher) Sessions() []SessionInfo {
	d.mu.Lock()
	out := make([]SessionInfo, 0, len(d.byAgent))
	for id, as := range d.byAgent {
		out = append(out, d.info(id, as))
	}
	d.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

func (d *Dispatcher) info(agentID string, as *activeSession) SessionInfo {
	return SessionInfo{
		ID:       as.session.ID,
		AgentID:  agentID,
		Behavior: as.behavior.Name(),
		Block:    as.code.String(),
		Target:   as.session.Target,
		Elapsed:  as.session.Elapsed,
		State:    as.session.State.String(),
	}
}

func (d *Dispatcher) release(agentID string, as *activeSession) {
	delete(d.byAgent, agentID)
	delete(d.byPosition, as.session.Target.Position)
}

func (d *Dispatcher) payload(agentID string, as *activeSession) eventbus.InteractionPayload {
	return eventbus.InteractionPayload{
		SessionID: as.session.ID,
		AgentID:   agentID,
		Behavior:  as.behavior.Name(),
		Block:     as.code.String(),
		Position:  as.session.Target.Position,
		Elapsed:   as.session.Elapsed,
	}
}

func (d *Dispatcher) publish(ctx context.Context, eventType, sessionID string, payload interface{}) {
	if d.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(d.source, eventType, payload)
	if err != nil {
		d.log.Error("%v", err)
		return
	}
	ev.CorrelationID = sessionID
	if err := d.bus.Publish(ctx, ev); err != nil {
		d.log.Warn("не удалось опубликовать %s: %v", eventType, err)
	}
}
