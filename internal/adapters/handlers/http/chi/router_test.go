package chi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"quipt/internal/adapters/handlers/http/chi"
	"quipt/internal/adapters/handlers/http/chi/v1/media"
	"quipt/internal/config"
	"quipt/internal/core/service/derivative"
	"quipt/internal/core/service/upload"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(metricsHandler http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := derivative.NewPublisher(config.MediaConfig{PublicOrigin: "https://media.quipt.example"})
	handler := media.NewMediaHandlerV1(upload.NewMockUploadService(), publisher, logger)
	passThrough := func(next http.Handler) http.Handler { return next }
	return chi.NewRouter(logger, handler, passThrough, metricsHandler, "prod")
}

func TestRouter_Health(t *testing.T) {
	//Arrange
	h := newTestRouter(nil)
	w := httptest.NewRecorder()

	//Act
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	//Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var resp chi.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRouter_Metrics(t *testing.T) {
	t.Run("mounted", func(t *testing.T) {
		//Arrange
		h := newTestRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("quipt_upload_requests_total 1\n"))
		}))
		w := httptest.NewRecorder()

		//Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		//Assert
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "quipt_upload_requests_total")
	})

	t.Run("absent", func(t *testing.T) {
		//Arrange
		h := newTestRouter(nil)
		w := httptest.NewRecorder()

		//Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		//Assert
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
