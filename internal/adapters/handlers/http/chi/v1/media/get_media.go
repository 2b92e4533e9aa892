package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// V1MediaResponse lists the public derivative URLs of an id
type V1MediaResponse struct {
	ID        string `json:"id"`
	VideoURL  string `json:"video_url"`
	PosterURL string `json:"poster_url"`
}

// GetMediaV1 maps an id to its derivative URLs. It does not check that they were published.
func (h *HandlerV1) GetMediaV1(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	links := h.publisher.Links(id)
	writeJSON(w, http.StatusOK, V1MediaResponse{
		ID:        links.ID,
		VideoURL:  links.VideoURL,
		PosterURL: links.PosterURL,
	}, h)
}
