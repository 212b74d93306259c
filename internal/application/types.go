package application

import (
	"log/slog"
	"os"
	"time"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
)

type Config struct {
	ServiceName    string
	MaxUploadBytes int64
	DownloadTTL    time.Duration
	WorkDir        string
}

type ProcessWorkbookInput struct {
	FileName string
	Content  []byte
}

type ProcessResult struct {
	Token          string
	Filename       string
	Messages       int
	Rows           int
	SkippedChunks  int
	FailedMessages int
}

type Service struct {
	cfg       Config
	workbooks ports.WorkbookFactory
	artifacts ports.ArtifactStore
	logger    *slog.Logger
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Workbooks ports.WorkbookFactory
	Artifacts ports.ArtifactStore
	Logger    *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "M63-Order-Extraction-Service"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 * 1024 * 1024
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = 30 * time.Minute
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		workbooks: deps.Workbooks,
		artifacts: deps.Artifacts,
		logger:    logger,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}
