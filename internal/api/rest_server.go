package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/resinfarm/internal/interaction"
	"github.com/annel0/resinfarm/internal/logging"
	"github.com/annel0/resinfarm/internal/middleware"
	"github.com/annel0/resinfarm/internal/storage"
	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/item"
)

// Version – версия сервера в /api/server
const Version = "v0.1.0"

// RestServer представляет REST API сервер
type RestServer struct {
	router     *gin.Engine
	world      *world.World
	items      *item.Registry
	dispatcher *interaction.Dispatcher
	configs    storage.ConfigStore
	role       block.Role
	port       string
	metrics    *ServerMetrics
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port       string                  // порт для запуска сервера
	World      *world.World            // мир с блоками и игроками
	Items      *item.Registry          // каталог предметов для выдачи игрокам
	Dispatcher *interaction.Dispatcher // диспетчер взаимодействий
	Configs    storage.ConfigStore     // сохранённые настройки поведений (nil – без /api/configs)
	Role       block.Role              // роль процесса (для /api/server)

	// Registry – регистр для HTTP-метрик и /metrics (nil – дефолтный)
	Registry *prometheus.Registry
	// Logger – логгер запросов (nil – компонент "http")
	Logger *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	otelRouter := otelgin.Middleware("rest_api")
	router.Use(otelRouter)

	loggerMw := middleware.NewRequestLogger(config.Logger)
	router.Use(loggerMw.Handler())

	var reg prometheus.Registerer
	var gatherer prometheus.Gatherer
	if config.Registry != nil {
		reg, gatherer = config.Registry, config.Registry
	}
	promMw := middleware.NewPrometheusMiddleware("rest_api", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	server := &RestServer{
		router:     router,
		world:      config.World,
		items:      config.Items,
		dispatcher: config.Dispatcher,
		configs:    config.Configs,
		role:       config.Role,
		port:       config.Port,
		metrics:    NewServerMetrics(),
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")

	api.GET("/server", rs.handleServerInfo)

	blocks := api.Group("/blocks")
	{
		blocks.GET("/:x/:y/:z", rs.handleGetBlock)
		blocks.GET("/:x/:y/:z/help", rs.handleBlockHelp)
	}

	players := api.Group("/players")
	{
		players.POST("", rs.handleCreatePlayer)
		players.GET("/:id", rs.handleGetPlayer)
		players.GET("/:id/messages", rs.handlePlayerMessages)
	}

	interactions := api.Group("/interactions")
	{
		interactions.GET("", rs.handleListInteractions)
		interactions.POST("/start", rs.handleStart)
		interactions.POST("/step", rs.handleStep)
		interactions.POST("/stop", rs.handleStop)
		interactions.POST("/cancel", rs.handleCancel)
	}

	configs := api.Group("/configs")
	{
		configs.GET("", rs.handleListConfigs)
		configs.GET("/:key", rs.handleGetConfig)
		configs.DELETE("/:key", rs.handleDeleteConfig)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

// statusForError сопоставляет доменные ошибки HTTP-статусам
func statusForError(err error) int {
	switch {
	case errors.Is(err, interaction.ErrPositionBusy), errors.Is(err, interaction.ErrAgentBusy):
		return http.StatusConflict
	case errors.Is(err, interaction.ErrNoSession), errors.Is(err, block.ErrUnknownBlock):
		return http.StatusNotFound
	case errors.Is(err, block.ErrSessionNotActive):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parsePosition читает :x/:y/:z из пути
func parsePosition(c *gin.Context) (vec.Vec3, error) {
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return vec.Vec3{}, fmt.Errorf("координата %s: %w", name, err)
		}
		coords[i] = v
	}
	return vec.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// BlockResponse – блок в позиции
type BlockResponse struct {
	Position  vec.Vec3          `json:"position"`
	Code      string            `json:"code"`
	Variant   map[string]string `json:"variant,omitempty"`
	Behaviors []string          `json:"behaviors,omitempty"`
}

func (rs *RestServer) handleGetBlock(c *gin.Context) {
	pos, err := parsePosition(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	b, ok := rs.world.BlockAt(pos)
	if !ok {
		respondError(c, http.StatusNotFound, "Блок не найден")
		return
	}

	resp := BlockResponse{Position: pos, Code: b.Code.String(), Variant: b.Variant}
	if bt, ok := rs.world.Types().Get(b.Code); ok {
		for _, beh := range bt.Behaviors {
			resp.Behaviors = append(resp.Behaviors, beh.Name())
		}
	}
	respondOK(c, "Блок получен", resp)
}

func (rs *RestServer) handleBlockHelp(c *gin.Context) {
	pos, err := parsePosition(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	help, err := rs.dispatcher.Help(pos)
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	respondOK(c, "Подсказки получены", help)
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	// Получаем реальные метрики
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	info := ServerInfo{
		Name:        "Resin Farm Server",
		Version:     Version,
		Role:        string(rs.role),
		Seed:        rs.world.Seed(),
		Status:      "running",
		Uptime:      rs.metrics.GetUptime(),
		MemoryMB:    fmt.Sprintf("%.1f", memoryMB),
		CPUPercent:  fmt.Sprintf("%.1f", cpuPercent),
		BlockTypes:  rs.world.Types().Len(),
		Blocks:      rs.world.BlockCount(),
		Sessions:    len(rs.dispatcher.Sessions()),
		MemoryStats: rs.metrics.GetDetailedMemoryStats(),
	}
	respondOK(c, "Информация о сервере", info)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает HTTP сервер (блокирующий вызов)
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logging.Info("🌐 REST API слушает %s", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает HTTP сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	return rs.httpServer.Shutdown(ctx)
}
