package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
)

// ProcessWorkbook runs the full extraction over column A of the first sheet
// of the uploaded workbook and stages the flattened result for download. The
// output row cursor is threaded through message handling as a fold: each
// message advances it by its own line-item count, never by message.
func (s *Service) ProcessWorkbook(ctx context.Context, input ProcessWorkbookInput) (ProcessResult, error) {
	name := SanitizeFilename(input.FileName)
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ProcessResult{}, domain.ErrUnsupportedMedia
	}
	if len(input.Content) == 0 {
		return ProcessResult{}, domain.ErrInvalidInput
	}
	if int64(len(input.Content)) > s.cfg.MaxUploadBytes {
		return ProcessResult{}, domain.ErrPayloadTooLarge
	}

	started := s.nowFn()
	reader, err := s.workbooks.OpenReader(input.Content)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("%w: not a readable xlsx workbook", domain.ErrInvalidInput)
	}
	defer reader.Close()

	column, err := reader.FirstSheetColumn(1)
	if err != nil {
		return ProcessResult{}, err
	}

	writer := s.workbooks.NewWriter()
	defer writer.Close()
	for col, header := range domain.ColumnHeaders {
		if err := writer.WriteCell(1, col+1, header); err != nil {
			return ProcessResult{}, err
		}
	}

	nextRow := 2
	totalRows := 0
	var sinkErr error
	scanner := domain.NewScanner(s.logger)
	stats := scanner.Scan(column, func(msg string) error {
		records, err := domain.FlattenMessage(msg)
		if err != nil {
			return err
		}
		for k, record := range records {
			for col, value := range record {
				if err := writer.WriteCell(nextRow+k, col+1, value); err != nil {
					sinkErr = err
					return err
				}
			}
		}
		nextRow += len(records)
		totalRows += len(records)
		return nil
	})
	if sinkErr != nil {
		return ProcessResult{}, sinkErr
	}

	dir, err := os.MkdirTemp(s.cfg.WorkDir, "extract-")
	if err != nil {
		return ProcessResult{}, err
	}
	outName := "processed_" + name
	outPath := filepath.Join(dir, outName)
	if err := writer.SaveTo(outPath); err != nil {
		_ = os.RemoveAll(dir)
		return ProcessResult{}, err
	}

	now := s.nowFn()
	artifact := ports.Artifact{
		Token:     uuid.NewString(),
		Path:      outPath,
		Dir:       dir,
		Filename:  outName,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.DownloadTTL),
	}
	if err := s.artifacts.Put(ctx, artifact); err != nil {
		_ = os.RemoveAll(dir)
		return ProcessResult{}, err
	}

	s.logger.InfoContext(ctx, "workbook processed",
		"filename", name,
		"rows_scanned", stats.RowsScanned,
		"chunks", stats.ChunksFound,
		"messages", stats.Messages,
		"rows_written", totalRows,
		"skipped_chunks", stats.SkippedChunks,
		"failed_messages", stats.FailedMessages,
		"duration_ms", s.nowFn().Sub(started).Milliseconds(),
	)

	return ProcessResult{
		Token:          artifact.Token,
		Filename:       outName,
		Messages:       stats.Messages,
		Rows:           totalRows,
		SkippedChunks:  stats.SkippedChunks,
		FailedMessages: stats.FailedMessages,
	}, nil
}

// ClaimDownload pops the artifact for a one-shot download. The caller streams
// the file and releases it with Cleanup.
func (s *Service) ClaimDownload(ctx context.Context, token string) (ports.Artifact, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ports.Artifact{}, domain.ErrInvalidInput
	}
	artifact, err := s.artifacts.Claim(ctx, token)
	if err != nil {
		return ports.Artifact{}, err
	}
	if s.nowFn().After(artifact.ExpiresAt) {
		s.Cleanup(artifact)
		return ports.Artifact{}, domain.ErrNotFound
	}
	return artifact, nil
}

// Cleanup removes a claimed artifact's working directory.
func (s *Service) Cleanup(artifact ports.Artifact) {
	if artifact.Dir == "" {
		return
	}
	if err := os.RemoveAll(artifact.Dir); err != nil {
		s.logger.Warn("artifact cleanup failed", "dir", artifact.Dir, "error", err)
	}
}

// SweepExpired removes expired artifacts and their files, returning how many
// were removed.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.artifacts.SweepExpired(ctx, s.nowFn())
	if err != nil {
		return 0, err
	}
	for _, artifact := range expired {
		s.Cleanup(artifact)
	}
	return len(expired), nil
}
