package interaction

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/eventbus"
	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/block/implementations"
	"github.com/annel0/resinfarm/internal/world/item"
)

var (
	luckyPos   = vec.Vec3{X: 0, Y: 64, Z: 0}
	unluckyPos = vec.Vec3{X: 5, Y: 64, Z: 5}
	// Для сосны смоляных вариантов нет, замена блока не удаётся
	orphanPos = vec.Vec3{X: -3, Y: 64, Z: 8}
)

func barkDefinition(wood string, chance float64) config.BlockDefinition {
	return config.BlockDefinition{
		Code:     "log-barked-{wood}-ud",
		Variants: map[string][]string{"wood": {wood}},
		Behaviors: []config.BehaviorDefinition{{
			Name: "BarkCuttable",
			Properties: map[string]interface{}{
				"duration": 2.0,
				"chance":   chance,
				"tools":    []interface{}{"knife-*"},
			},
		}},
	}
}

type fixture struct {
	world      *world.World
	dispatcher *Dispatcher
	metrics    *Metrics
	bus        eventbus.EventBus
	player     *world.Player
	stick      *item.Item

	mu     sync.Mutex
	events []string
}

func newFixture(t *testing.T, role block.Role) *fixture {
	t.Helper()
	f := &fixture{bus: eventbus.NewMemoryBus(64)}

	_, err := f.bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		f.mu.Lock()
		f.events = append(f.events, ev.EventType)
		f.mu.Unlock()
	})
	require.NoError(t, err)

	items, err := world.BuildItems([]config.ItemDefinition{
		{Code: "knife-flint", Durability: 10},
		{Code: "stick"},
	})
	require.NoError(t, err)

	f.world = world.NewWorld(42, f.bus)
	behaviors := block.NewBehaviorRegistry()
	implementations.RegisterDefaults(behaviors)
	require.NoError(t, f.world.LoadTypes([]config.BlockDefinition{
		barkDefinition("oak", 1.0),
		barkDefinition("birch", 0.0),
		barkDefinition("pine", 1.0),
		{
			Code: "log-resin-{wood}-{side}",
			Variants: map[string][]string{
				"wood": {"oak", "birch"},
				"side": {"north", "east", "south", "west", "ud"},
			},
		},
	}, behaviors, block.Env{Ctx: context.Background(), Role: role, Items: items}))

	require.NoError(t, f.world.PlaceBlock(luckyPos, block.ParseCode("log-barked-oak-ud")))
	require.NoError(t, f.world.PlaceBlock(unluckyPos, block.ParseCode("log-barked-birch-ud")))
	require.NoError(t, f.world.PlaceBlock(orphanPos, block.ParseCode("log-barked-pine-ud")))

	knife, _ := items.Get("knife-flint")
	f.stick, _ = items.Get("stick")
	f.player = world.NewPlayer("alice")
	f.player.Give(0, item.NewStack(knife, 1))
	f.world.AddPlayer(f.player)

	f.metrics = NewMetrics("test", prometheus.NewRegistry())
	f.dispatcher = NewDispatcher(f.world, f.bus, f.metrics)
	return f
}

// drainEvents закрывает шину и возвращает доставленные типы событий
func (f *fixture) drainEvents(t *testing.T) []string {
	t.Helper()
	require.NoError(t, f.bus.Close())
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func TestDispatcherSuccessfulCut(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	ctx := context.Background()
	sel := block.Selection{Position: luckyPos, Face: block.FaceNorth}

	s, handled, err := f.dispatcher.Start(ctx, f.player, sel)
	require.NoError(t, err)
	require.True(t, handled)
	require.NotNil(t, s)
	assert.Equal(t, block.StateActive, s.State)

	info, ok := f.dispatcher.Session(f.player.ID())
	require.True(t, ok)
	assert.Equal(t, "game:log-barked-oak-ud", info.Block)

	cont, err := f.dispatcher.Step(ctx, f.player.ID(), 1.0)
	require.NoError(t, err)
	assert.True(t, cont)

	cont, err = f.dispatcher.Step(ctx, f.player.ID(), 2.5)
	require.NoError(t, err)
	assert.False(t, cont)

	res, err := f.dispatcher.Stop(ctx, f.player.ID(), 2.5)
	require.NoError(t, err)
	assert.Equal(t, block.StateCompleted, res.State)
	assert.True(t, res.Success)
	assert.True(t, res.Transformed)
	assert.Equal(t, "game:log-resin-oak-north", res.NewCode)

	b, _ := f.world.BlockAt(luckyPos)
	assert.Equal(t, "game:log-resin-oak-north", b.Code.String())
	assert.Equal(t, 9, f.player.ActiveSlot().Stack.Durability)

	_, ok = f.dispatcher.Session(f.player.ID())
	assert.False(t, ok)
	assert.Empty(t, f.dispatcher.Sessions())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.started.WithLabelValues(implementations.BarkCuttableName)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.outcomes.WithLabelValues(implementations.BarkCuttableName, "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.active))

	events := f.drainEvents(t)
	assert.ElementsMatch(t, []string{
		eventbus.EventBlockTransformed,
		eventbus.EventToolDamaged,
		eventbus.EventInteractionCompleted,
	}, events)
}

func TestDispatcherMissStillDamagesTool(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	ctx := context.Background()

	_, _, err := f.dispatcher.Start(ctx, f.player, block.Selection{Position: unluckyPos, Face: block.FaceEast})
	require.NoError(t, err)

	res, err := f.dispatcher.Stop(ctx, f.player.ID(), 2.0)
	require.NoError(t, err)
	assert.Equal(t, block.StateCompleted, res.State)
	assert.True(t, res.Evaluated)
	assert.False(t, res.Success)
	assert.False(t, res.Transformed)
	assert.True(t, res.ToolDamaged)

	b, _ := f.world.BlockAt(unluckyPos)
	assert.Equal(t, "game:log-barked-birch-ud", b.Code.String())
	assert.Equal(t, 9, f.player.ActiveSlot().Stack.Durability)

	events := f.drainEvents(t)
	assert.ElementsMatch(t, []string{
		eventbus.EventToolDamaged,
		eventbus.EventInteractionCompleted,
		eventbus.EventResinMissed,
	}, events)
}

func TestDispatcherStopHostErrorRecordedAsError(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	assert.Equal(t, "interaction", f.dispatcher.log.Component())
	ctx := context.Background()

	_, handled, err := f.dispatcher.Start(ctx, f.player, block.Selection{Position: orphanPos, Face: block.FaceWest})
	require.NoError(t, err)
	require.True(t, handled)

	_, err = f.dispatcher.Stop(ctx, f.player.ID(), 2.0)
	assert.ErrorIs(t, err, block.ErrUnknownBlock)

	name := implementations.BarkCuttableName
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.finished.WithLabelValues(name, "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.finished.WithLabelValues(name, block.StateCompleted.String())))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.outcomes.WithLabelValues(name, "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.active))

	// Сессия освобождена, мир и инструмент не тронуты
	_, ok := f.dispatcher.Session(f.player.ID())
	assert.False(t, ok)
	b, _ := f.world.BlockAt(orphanPos)
	assert.Equal(t, "game:log-barked-pine-ud", b.Code.String())
	assert.Equal(t, 10, f.player.ActiveSlot().Stack.Durability)

	assert.Empty(t, f.drainEvents(t))
}

func TestDispatcherEarlyStopCancels(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	ctx := context.Background()

	_, _, err := f.dispatcher.Start(ctx, f.player, block.Selection{Position: luckyPos, Face: block.FaceUp})
	require.NoError(t, err)

	res, err := f.dispatcher.Stop(ctx, f.player.ID(), 1.99)
	require.NoError(t, err)
	assert.Equal(t, block.StateCancelled, res.State)
	assert.False(t, res.Evaluated)

	b, _ := f.world.BlockAt(luckyPos)
	assert.Equal(t, "game:log-barked-oak-ud", b.Code.String())
	assert.Equal(t, 10, f.player.ActiveSlot().Stack.Durability)

	assert.Equal(t, []string{eventbus.EventInteractionCancelled}, f.drainEvents(t))
}

func TestDispatcherCancel(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	ctx := context.Background()
	sel := block.Selection{Position: luckyPos, Face: block.FaceSouth}

	s, _, err := f.dispatcher.Start(ctx, f.player, sel)
	require.NoError(t, err)
	require.NoError(t, f.dispatcher.Cancel(ctx, f.player.ID()))
	assert.Equal(t, block.StateCancelled, s.State)

	assert.ErrorIs(t, f.dispatcher.Cancel(ctx, f.player.ID()), ErrNoSession)

	// Позиция и агент снова свободны
	_, handled, err := f.dispatcher.Start(ctx, f.player, sel)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 10, f.player.ActiveSlot().Stack.Durability)
}

func TestDispatcherExclusivity(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	ctx := context.Background()

	knife := f.player.ActiveSlot().Item()
	bob := world.NewPlayer("bob")
	bob.Give(0, item.NewStack(knife, 1))

	_, _, err := f.dispatcher.Start(ctx, f.player, block.Selection{Position: luckyPos, Face: block.FaceNorth})
	require.NoError(t, err)

	_, _, err = f.dispatcher.Start(ctx, bob, block.Selection{Position: luckyPos, Face: block.FaceWest})
	assert.ErrorIs(t, err, ErrPositionBusy)

	_, _, err = f.dispatcher.Start(ctx, f.player, block.Selection{Position: unluckyPos, Face: block.FaceWest})
	assert.ErrorIs(t, err, ErrAgentBusy)

	_, handled, err := f.dispatcher.Start(ctx, bob, block.Selection{Position: unluckyPos, Face: block.FaceWest})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, f.dispatcher.Sessions(), 2)
}

func TestDispatcherConcurrentStart(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	knife := f.player.ActiveSlot().Item()

	const agents = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	started, busy := 0, 0

	for i := 0; i < agents; i++ {
		p := world.NewPlayer("p")
		p.Give(0, item.NewStack(knife, 1))
		wg.Add(1)
		go func(p *world.Player) {
			defer wg.Done()
			s, _, err := f.dispatcher.Start(context.Background(), p, block.Selection{Position: luckyPos, Face: block.FaceNorth})
			mu.Lock()
			defer mu.Unlock()
			if err == nil && s != nil {
				started++
			} else if err == ErrPositionBusy {
				busy++
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.Equal(t, agents-1, busy)
}

func TestDispatcherNotApplicable(t *testing.T) {
	f := newFixture(t, block.RoleServer)
	ctx := context.Background()

	f.player.Give(1, item.NewStack(f.stick, 1))
	s, handled, err := f.dispatcher.Start(ctx, f.player, block.Selection{Position: luckyPos, Face: block.FaceNorth})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Nil(t, s)

	_, _, err = f.dispatcher.Start(ctx, f.player, block.Selection{Position: vec.Vec3{X: 100}, Face: block.FaceNorth})
	assert.ErrorIs(t, err, block.ErrUnknownBlock)

	_, err = f.dispatcher.Step(ctx, f.player.ID(), 1)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.dispatcher.Stop(ctx, f.player.ID(), 1)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDispatcherClientRole(t *testing.T) {
	f := newFixture(t, block.RoleClient)
	ctx := context.Background()

	_, _, err := f.dispatcher.Start(ctx, f.player, block.Selection{Position: unluckyPos, Face: block.FaceNorth})
	require.NoError(t, err)
	res, err := f.dispatcher.Stop(ctx, f.player.ID(), 3)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.True(t, res.FeedbackSent)
	assert.False(t, res.ToolDamaged)
	assert.Equal(t, 10, f.player.ActiveSlot().Stack.Durability)

	msgs := f.world.Messages(f.player.ID())
	require.Len(t, msgs, 1)
	assert.Equal(t, implementations.InvalidLogErrorCode, msgs[0].Code)
}

func TestDispatcherHelp(t *testing.T) {
	f := newFixture(t, block.RoleServer)

	help, err := f.dispatcher.Help(luckyPos)
	require.NoError(t, err)
	require.Len(t, help, 1)
	assert.Equal(t, []item.Code{"game:knife-flint"}, help[0].Tools)
	assert.Equal(t, 2.0, help[0].DurationSeconds)

	_, err = f.dispatcher.Help(vec.Vec3{X: -1})
	assert.ErrorIs(t, err, block.ErrUnknownBlock)
}
