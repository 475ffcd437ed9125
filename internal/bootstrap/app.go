package bootstrap

import (
	"crypto/rand"
	"os"
	"strings"

	"github.com/facebookgo/clock"
	"github.com/gin-gonic/gin"

	"contract-console/internal/documents"
	"contract-console/internal/loading"
	"contract-console/internal/navigation"
	"contract-console/internal/services/health"
	"contract-console/internal/shared/config"
	"contract-console/internal/shared/server"
	"contract-console/internal/shared/telemetry"
	"contract-console/internal/uploads"
	"contract-console/internal/visualization"
)

// App holds shared dependencies.
type App struct {
	Config               config.Config
	Router               *gin.Engine
	Documents            *documents.Client
	Sessions             *loading.Registry
	Nav                  *navigation.Codec
	UploadService        *uploads.Service
	UploadHandler        *uploads.Handler
	LoadingHandler       *loading.Handler
	VisualizationHandler *visualization.Handler
	Health               *health.Service
}

// Build wires the console. Sessions are created but their reaper is started
// by the caller through Sessions.Run.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.Configure(os.Stdout, cfg.LogLevel)

	secret := []byte(cfg.NavStateSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		telemetry.Warn("bootstrap.nav_secret_generated", map[string]any{
			"env": cfg.Env,
		})
	}

	docs := documents.NewClient(cfg.APIBaseURL, cfg.HTTPClientTimeout)
	sessions := loading.NewRegistry(docs, loading.Options{
		Clock:        clock.New(),
		Interval:     cfg.PollInterval,
		StallTimeout: cfg.StallTimeout,
		Texts:        cfg.Texts,
	}, cfg.SessionIdleTimeout)
	nav := navigation.NewCodec(secret, 0)

	app := &App{
		Config:    cfg,
		Documents: docs,
		Sessions:  sessions,
		Nav:       nav,
		Health:    health.NewService(sessions, docs.BaseURL()),
	}
	app.UploadService = uploads.NewService(cfg, docs)
	app.UploadHandler = uploads.NewHandler(app.UploadService, nav, cfg.AppName)
	app.LoadingHandler = loading.NewHandler(cfg, sessions, nav)
	app.VisualizationHandler = visualization.NewHandler(docs, cfg.AppName)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Health:        app.Health,
		Upload:        app.UploadHandler,
		Loading:       app.LoadingHandler,
		Visualization: app.VisualizationHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"api_base_url":  docs.BaseURL(),
		"poll_interval": cfg.PollInterval.String(),
		"stall_timeout": cfg.StallTimeout.String(),
	})
	return app, nil
}
