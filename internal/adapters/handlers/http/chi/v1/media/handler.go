package media

import (
	"log/slog"
	"net/http"
	"quipt/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 media routes
type HandlerV1 struct {
	uploadService port.UploadService
	publisher     port.DerivativePublisher
	logger        *slog.Logger
}

// NewMediaHandlerV1 creates HandlerV1
func NewMediaHandlerV1(service port.UploadService, publisher port.DerivativePublisher, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService: service,
		publisher:     publisher,
		logger:        logger,
	}
}

// Routes exposes handler routes. Upload requests go through requireAuth.
func (h *HandlerV1) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.With(requireAuth).Post("/upload", h.RequestUploadV1)
	router.Get("/{id}", h.GetMediaV1)

	return router
}
