package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/eventbus"
	"github.com/annel0/resinfarm/internal/interaction"
	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/storage"
	"github.com/annel0/resinfarm/internal/world"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/block/implementations"
	"github.com/annel0/resinfarm/internal/world/item"
)

// App – собранный процесс: шина, хранилище настроек, мир и диспетчер
type App struct {
	Config     *config.Config
	Role       block.Role
	Bus        eventbus.EventBus
	Store      storage.ConfigStore
	World      *world.World
	Items      *item.Registry
	Behaviors  *block.BehaviorRegistry
	Dispatcher *interaction.Dispatcher
	Registry   *prometheus.Registry

	exporter *eventbus.MetricsExporter
	closers  []func() error
}

// New собирает приложение по конфигурации. cfg == nil – config.Default().
// При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	if cfg == nil {
		cfg = config.Default()
	}

	role := block.Role(cfg.World.GetRole())
	if !role.Valid() {
		return nil, fmt.Errorf("неизвестная роль %q", role)
	}

	a = &App{Config: cfg, Role: role, Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if a.Bus, err = openBus(cfg.EventBus); err != nil {
		return a, err
	}
	a.closers = append(a.closers, a.Bus.Close)

	if _, err = eventbus.StartLoggingListener(a.Bus); err != nil {
		return a, err
	}
	a.exporter = eventbus.NewMetricsExporter(a.Bus, a.Registry)
	if cfg.Server.MetricsPort > 0 {
		// Отдельный порт метрик только при явной настройке, иначе /metrics на REST
		a.exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), a.Registry)
	} else {
		a.exporter.Start()
	}

	if a.Store, err = storage.Open(cfg.Storage); err != nil {
		return a, fmt.Errorf("хранилище настроек: %w", err)
	}
	a.closers = append(a.closers, a.Store.Close)

	assets, err := config.LoadAssets(cfg.World.GetAssetsDir())
	if err != nil {
		return a, fmt.Errorf("ассеты: %w", err)
	}
	if a.Items, err = world.BuildItems(assets.Items); err != nil {
		return a, err
	}

	a.World = world.NewWorld(cfg.World.Seed, a.Bus)
	a.World.SetSource(string(role))

	a.Behaviors = block.NewBehaviorRegistry()
	implementations.RegisterDefaults(a.Behaviors)

	err = a.World.LoadTypes(assets.Blocks, a.Behaviors, block.Env{
		Ctx:     ctx,
		Role:    role,
		Items:   a.Items,
		Configs: a.Store,
	})
	if err != nil {
		return a, err
	}

	placed, err := world.NewGenerator(cfg.World.Seed, cfg.World.GetGeneratorSize()).Generate(a.World)
	if err != nil {
		return a, fmt.Errorf("генерация мира: %w", err)
	}
	logging.Info("🌲 Сгенерировано блоков: %d (seed=%d)", placed, cfg.World.Seed)

	a.Dispatcher = interaction.NewDispatcher(a.World, a.Bus, interaction.NewMetrics("resinfarm", a.Registry))
	return a, nil
}

func openBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(1024), nil
	}
	retention := time.Duration(cfg.Retention) * time.Hour
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, retention)
	if err != nil {
		return nil, err
	}
	logging.Info("📨 EventBus: NATS JetStream %s", cfg.URL)
	return bus, nil
}

// Close освобождает ресурсы в обратном порядке открытия
func (a *App) Close() error {
	if a.exporter != nil {
		a.exporter.Stop()
		a.exporter = nil
	}

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
