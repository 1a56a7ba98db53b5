package ingestion

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	httperr "github.com/cdrlab/cdr-insights/internal/core/errors"
	"github.com/cdrlab/cdr-insights/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgFileMissing   = "File is missing or empty"
	msgFileTooLarge  = "File exceeds maximum allowed size"
	msgInvalidCsv    = "Failed to parse CSV file"
	msgDuplicateRef  = "Batch contains an already-stored reference"
	msgPersistFailed = "Failed to persist records"
)

// UploadHandler handles POST /cdr/upload. The CSV file arrives as the
// multipart form field "file"; the batch is parsed fully before anything is
// written, and persisted atomically.
func (s *Service) UploadHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil || header.Size == 0 {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   msgFileMissing,
		})
		return
	}
	defer file.Close()

	if header.Size > s.maxBodySizeBytes {
		slog.Warn("Upload exceeds maximum size", "size", header.Size, "max", s.maxBodySizeBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   msgFileTooLarge,
			Details: map[string]interface{}{
				"max_size_mb": s.maxBodySizeBytes / (1024 * 1024),
			},
		})
		return
	}

	batchID := uuid.New().String()

	records, err := ParseRecords(io.LimitReader(file, s.maxBodySizeBytes))
	if err != nil {
		slog.Warn("CSV parse failed", "batch_id", batchID, "file", header.Filename, "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidCsvError,
			Message:   msgInvalidCsv,
			Details:   err.Error(),
		})
		return
	}

	slog.Info("Received CDR batch",
		"batch_id", batchID,
		"file", header.Filename,
		"records", len(records),
		"file_size", header.Size)

	if err := s.store.SaveRecords(c.Request.Context(), records); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("Duplicate reference rejected batch", "batch_id", batchID, "error", err)
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpDuplicateRecordError,
				Message:   msgDuplicateRef,
				Details:   err.Error(),
			})
			return
		}

		slog.Error("Failed to persist batch", "batch_id", batchID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgPersistFailed,
		})
		return
	}

	c.String(http.StatusOK, fmt.Sprintf("%d records uploaded successfully.", len(records)))
}
