package media_test

import (
	"encoding/json"
	http2 "net/http"
	"net/http/httptest"
	media3 "quipt/internal/adapters/handlers/http/chi/v1/media"
	"quipt/internal/core/service/upload"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMediaV1(t *testing.T) {
	//Arrange
	mockService := upload.NewMockUploadService()
	h := newRouter(mockService, asUser("user-1"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http2.MethodGet, "/api/v1/media/K", nil)

	//Act
	h.ServeHTTP(w, req)

	//Assert
	assert.Equal(t, http2.StatusOK, w.Code)
	var response media3.V1MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "K", response.ID)
	assert.Equal(t, "https://media.quipt.example/K.mp4", response.VideoURL)
	assert.Equal(t, "https://media.quipt.example/K.png", response.PosterURL)
}
