package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/app/bootstrap"
)

func main() {
	configPath := "configs/default.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	runtime, err := bootstrap.NewRuntime(context.Background(), configPath)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	if err := runtime.RunAPI(context.Background()); err != nil {
		slog.Error("api server exited", "error", err)
		os.Exit(1)
	}
}
