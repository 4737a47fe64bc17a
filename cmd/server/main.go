package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/resinfarm/internal/api"
	"github.com/annel0/resinfarm/internal/app"
	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "путь к config.yaml (по умолчанию GAME_CONFIG)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
		logging.Info("⚙️  Конфигурация не задана, используются значения по умолчанию")
	}
	logging.Default().SetConsoleLevel(logging.ParseLevel(cfg.Logging.Level))

	logging.Info("🌲 Запуск resinfarm (роль %s, seed %d)", cfg.World.GetRole(), cfg.World.Seed)

	ctx := context.Background()

	// === ТРАССИРОВКА ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry, cfg.World.GetRole())
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации трассировки: %v", err)
	}

	// === КОМПОНЕНТЫ ===
	application, err := app.New(ctx, cfg)
	if err != nil {
		logging.Error("❌ Ошибка сборки приложения: %v", err)
		log.Fatalf("❌ Ошибка сборки приложения: %v", err)
	}
	logging.Info("✅ Типов блоков: %d, предметов: %d", application.World.Types().Len(), application.Items.Len())

	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	restServer := api.NewRestServer(api.Config{
		Port:       restPort,
		World:      application.World,
		Items:      application.Items,
		Dispatcher: application.Dispatcher,
		Configs:    application.Store,
		Role:       application.Role,
		Registry:   application.Registry,
	})

	go func() {
		if err := restServer.Start(); err != nil {
			logging.Error("❌ REST API остановлен с ошибкой: %v", err)
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", restPort)

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logging.Debug("Остановка REST API...")
	if err := restServer.Stop(stopCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	logging.Debug("Закрытие шины и хранилища...")
	if err := application.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия ресурсов: %v", err)
	}

	if err := shutdownTelemetry(stopCtx); err != nil {
		logging.Error("❌ Ошибка остановки трассировки: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
