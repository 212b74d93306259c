package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/adapters/excel"
	httpadapter "github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/adapters/jobs"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	janitor    *jobs.Janitor
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var artifacts ports.ArtifactStore
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		artifacts = cache.NewRedisArtifactStore(client)
	} else {
		artifacts = cache.NewMemoryArtifactStore()
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:    cfg.ServiceID,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			DownloadTTL:    cfg.DownloadTTL(),
			WorkDir:        cfg.WorkDir,
		},
		Workbooks: excel.NewFactory(),
		Artifacts: artifacts,
		Logger:    logger,
	})

	handler := httpadapter.NewHandler(service, cfg.MaxUploadBytes())
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: router, ReadHeaderTimeout: 5 * time.Second}
	janitor := jobs.NewJanitor(logger, service, cfg.SweepInterval())

	return &Runtime{cfg: cfg, logger: logger, httpServer: httpServer, janitor: janitor}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		_ = r.janitor.Run(ctx)
	}()

	r.logger.InfoContext(ctx, "api server started", "addr", r.httpServer.Addr)
	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	return nil
}
