package unit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/adapters/excel"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
	"github.com/xuri/excelize/v2"
)

const orderMessage = `<intercompanyMessage>
  <purchaseOrder PUSB="US12" orderNumber="4500012345">
    <header>
      <SoS>OUS</SoS>
      <customerProfileCode>123</customerProfileCode>
      <purchaseOrderCreationDate>2024-03-07</purchaseOrderCreationDate>
    </header>
    <lineItems>
      <lineItem sequenceNumber="007">
        <productIdentifier>70-0001-0001-1</productIdentifier>
        <orderQuantity>24</orderQuantity>
        <sellingUnit>CS</sellingUnit>
        <purchasingCompanyReferenceNumber>7700112233</purchasingCompanyReferenceNumber>
      </lineItem>
      <lineItem sequenceNumber="2">
        <productIdentifier>70-0001-0002-9</productIdentifier>
        <orderQuantity>8</orderQuantity>
        <sellingUnit>EA</sellingUnit>
      </lineItem>
    </lineItems>
  </purchaseOrder>
</intercompanyMessage>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, ttl time.Duration, maxUpload int64) *application.Service {
	t.Helper()
	return application.NewService(application.Dependencies{
		Config: application.Config{
			MaxUploadBytes: maxUpload,
			DownloadTTL:    ttl,
			WorkDir:        t.TempDir(),
		},
		Workbooks: excel.NewFactory(),
		Artifacts: cache.NewMemoryArtifactStore(),
		Logger:    discardLogger(),
	})
}

func workbookBytes(t *testing.T, cells []string) []byte {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := file.SetCellStr(sheet, cell, value); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestProcessWorkbookEndToEnd(t *testing.T) {
	service := newService(t, time.Minute, 0)
	half := len(orderMessage) / 2
	cells := []string{
		"export notes, ignore",
		orderMessage[:half],
		orderMessage[half:],
	}

	result, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
		Content:  workbookBytes(t, cells),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Messages != 1 || result.Rows != 2 {
		t.Fatalf("expected 1 message and 2 rows, got %+v", result)
	}
	if result.Filename != "processed_orders.xlsx" {
		t.Fatalf("unexpected output filename %q", result.Filename)
	}
	if result.Token == "" {
		t.Fatalf("expected a download token")
	}

	artifact, err := service.ClaimDownload(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	out, err := excelize.OpenFile(artifact.Path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer out.Close()
	rows, err := out.GetRows(out.GetSheetName(0))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 data rows, got %d", len(rows))
	}
	for i, header := range domain.ColumnHeaders {
		if rows[0][i] != header {
			t.Fatalf("header col %d: got %q want %q", i, rows[0][i], header)
		}
	}
	if rows[1][0] != "US12" || rows[1][1] != "4500012345" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[1][6] != "7" || rows[2][6] != "2" {
		t.Fatalf("unexpected line sequence numbers: %q, %q", rows[1][6], rows[2][6])
	}

	service.Cleanup(artifact)
	if _, err := os.Stat(artifact.Path); !os.IsNotExist(err) {
		t.Fatalf("output file should be gone after cleanup")
	}
}

func TestProcessWorkbookWithoutMessages(t *testing.T) {
	service := newService(t, time.Minute, 0)
	result, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "empty.xlsx",
		Content:  workbookBytes(t, []string{"nothing", "to", "see"}),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Messages != 0 || result.Rows != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}

	artifact, err := service.ClaimDownload(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	defer service.Cleanup(artifact)
	out, err := excelize.OpenFile(artifact.Path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer out.Close()
	rows, err := out.GetRows(out.GetSheetName(0))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header-only output, got %d rows", len(rows))
	}
}

func TestProcessWorkbookRejectsWrongExtension(t *testing.T) {
	service := newService(t, time.Minute, 0)
	_, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.csv",
		Content:  []byte("a,b,c"),
	})
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestProcessWorkbookRejectsEmptyContent(t *testing.T) {
	service := newService(t, time.Minute, 0)
	_, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessWorkbookRejectsOversizedContent(t *testing.T) {
	service := newService(t, time.Minute, 16)
	_, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
		Content:  make([]byte, 64),
	})
	if !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestProcessWorkbookRejectsCorruptContent(t *testing.T) {
	service := newService(t, time.Minute, 0)
	_, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
		Content:  []byte("definitely not a zip archive"),
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestClaimDownloadIsOneShot(t *testing.T) {
	service := newService(t, time.Minute, 0)
	result, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
		Content:  workbookBytes(t, []string{orderMessage}),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	artifact, err := service.ClaimDownload(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	service.Cleanup(artifact)

	if _, err := service.ClaimDownload(context.Background(), result.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second claim should fail with ErrNotFound, got %v", err)
	}
}

func TestClaimDownloadRejectsExpired(t *testing.T) {
	service := newService(t, time.Millisecond, 0)
	result, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
		Content:  workbookBytes(t, []string{orderMessage}),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := service.ClaimDownload(context.Background(), result.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired token should be rejected with ErrNotFound, got %v", err)
	}
}

func TestSweepExpiredRemovesArtifacts(t *testing.T) {
	service := newService(t, time.Millisecond, 0)
	result, err := service.ProcessWorkbook(context.Background(), application.ProcessWorkbookInput{
		FileName: "orders.xlsx",
		Content:  workbookBytes(t, []string{orderMessage}),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	removed, err := service.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed artifact, got %d", removed)
	}
	if _, err := service.ClaimDownload(context.Background(), result.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("swept token should be gone, got %v", err)
	}
}

func TestMemoryArtifactStore(t *testing.T) {
	store := cache.NewMemoryArtifactStore()
	ctx := context.Background()
	now := time.Now().UTC()

	live := ports.Artifact{Token: "live", Filename: "a.xlsx", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := ports.Artifact{Token: "stale", Filename: "b.xlsx", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	if err := store.Put(ctx, live); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, stale); err != nil {
		t.Fatalf("put: %v", err)
	}

	expired, err := store.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(expired) != 1 || expired[0].Token != "stale" {
		t.Fatalf("expected only the stale artifact, got %+v", expired)
	}

	got, err := store.Claim(ctx, "live")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got.Filename != "a.xlsx" {
		t.Fatalf("unexpected artifact: %+v", got)
	}
	if _, err := store.Claim(ctx, "live"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("claim should be one-shot, got %v", err)
	}
	if _, err := store.Claim(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown token should miss, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"orders.xlsx":                "orders.xlsx",
		"../../etc/passwd.xlsx":      "passwd.xlsx",
		`C:\Users\me\my report.xlsx`: "my_report.xlsx",
		"..hidden.xlsx":              "hidden.xlsx",
		"":                           "workbook.xlsx",
		"weird$$name & spaces!.xlsx": "weird_name_spaces_.xlsx",
	}
	for in, want := range cases {
		if got := application.SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q): got %q want %q", in, got, want)
		}
	}
}
