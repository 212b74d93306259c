package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/contracts"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler is the HTTP adapter entrypoint for the extraction use-cases.
type Handler struct {
	service        *application.Service
	maxUploadBytes int64
}

func NewHandler(service *application.Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "ok", nil)
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "ready", nil)
}

func (h *Handler) processWorkbook(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds size limit", requestID)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid multipart body", requestID)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "missing file part", requestID)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "unreadable file part", requestID)
		return
	}

	out, err := h.service.ProcessWorkbook(r.Context(), application.ProcessWorkbookInput{
		FileName: header.Filename,
		Content:  content,
	})
	if err != nil {
		status, code := mapDomainError(err)
		logRequestFailure(r.Context(), "process_workbook", status, code, err)
		writeError(w, status, code, err.Error(), requestID)
		return
	}

	writeSuccess(w, http.StatusCreated, "workbook processed", contracts.ProcessResponse{
		Token:          out.Token,
		DownloadURL:    "/extract/v1/downloads/" + out.Token,
		Filename:       out.Filename,
		Messages:       out.Messages,
		Rows:           out.Rows,
		SkippedChunks:  out.SkippedChunks,
		FailedMessages: out.FailedMessages,
	})
}

// downloadArtifact streams a processed workbook exactly once; the artifact
// and its working directory are gone after the response.
func (h *Handler) downloadArtifact(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromContext(r.Context())
	artifact, err := h.service.ClaimDownload(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		status, code := mapDomainError(err)
		logRequestFailure(r.Context(), "download_artifact", status, code, err)
		writeError(w, status, code, "invalid or expired token", requestID)
		return
	}
	defer h.service.Cleanup(artifact)

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	http.ServeFile(w, r, artifact.Path)
}
