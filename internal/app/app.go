// Package app содержит основную структуру приложения и логику инициализации.
// Собирает обработчик перехода, трекер, метрики и HTTP роутер.
package app

import (
	"net"
	"net/http"
	"time"

	"github.com/InQaaaaGit/go_redirect.git/internal/config"
	"github.com/InQaaaaGit/go_redirect.git/internal/handler"
	"github.com/InQaaaaGit/go_redirect.git/internal/metrics"
	"github.com/InQaaaaGit/go_redirect.git/internal/middleware"
	"github.com/InQaaaaGit/go_redirect.git/internal/redirect"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App представляет сервис переходов.
// Инкапсулирует конфигурацию, HTTP роутер, логгер, метрики и обработчики запросов.
type App struct {
	config  *config.Config    // Конфигурация приложения
	router  *chi.Mux          // HTTP роутер для обработки запросов
	logger  *zap.Logger       // Логгер для записи событий приложения
	handler *handler.Handler  // Обработчики HTTP запросов
	metrics *metrics.Recorder // Prometheus метрики
}

// NewApp создает приложение и регистрирует маршруты.
//
// Параметры:
//   - cfg: конфигурация запуска
//   - logger: логгер приложения
//   - settings: источник настроек перехода; nil означает чтение из окружения на каждый запрос
func NewApp(cfg *config.Config, logger *zap.Logger, settings handler.SettingsLoader) *App {
	if settings == nil {
		settings = config.LoadRedirectSettings
	}

	recorder := metrics.NewRecorder()
	tracker := redirect.NewTracker(newTrackerClient(), redirect.DefaultTrackerTimeout, logger.Named("tracker"), recorder)

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(tracker, settings, recorder, logger),
		metrics: recorder,
	}
	a.setupRoutes()

	return a
}

// setupRoutes настраивает HTTP маршруты и middleware.
// Recoverer стоит последним, чтобы ответ 500 проходил через gzip и попадал в лог.
func (a *App) setupRoutes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.LoggerMiddleware(a.logger))
	a.router.Use(middleware.Metrics(a.metrics))
	a.router.Use(middleware.GzipMiddleware(a.logger))
	a.router.Use(middleware.Recoverer(a.logger))

	a.router.HandleFunc("/", a.handler.HandleRedirect)
	a.router.HandleFunc("/api/redirect", a.handler.HandleRedirect)
	a.router.Get("/ping", a.handler.HandlePing)
	a.router.Method(http.MethodGet, "/metrics", a.metrics.Handler())
}

// Router возвращает HTTP обработчик приложения.
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer создает HTTP сервер с таймаутами.
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// newTrackerClient создает клиент для трекера. Общий таймаут задаёт контекст запроса.
func newTrackerClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}
