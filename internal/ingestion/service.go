package ingestion

import (
	"github.com/cdrlab/cdr-insights/internal/core/storage"
	"github.com/gin-gonic/gin"
)

type Service struct {
	store            storage.RecordStore
	maxBodySizeBytes int64
}

func NewService(store storage.RecordStore, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		maxBodySizeBytes: int64(maxBodySizeMB) * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/cdr/upload", s.UploadHandler)
}
