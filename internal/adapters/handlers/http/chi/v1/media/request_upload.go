package media

import (
	"encoding/json"
	"errors"
	"net/http"
	"quipt/internal/adapters/handlers/http/auth"
	"quipt/internal/core/domain"
	"time"
)

// V1RequestUploadRequest claims a file by content hash and size
type V1RequestUploadRequest struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// V1DuplicateResponse is returned when the content is already published
type V1DuplicateResponse struct {
	Duplicate string `json:"duplicate"`
	VideoURL  string `json:"video_url"`
	PosterURL string `json:"poster_url"`
}

// V1UploadCredentialResponse carries the POST policy the client submits with its file
type V1UploadCredentialResponse struct {
	Key       string            `json:"key"`
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (h *HandlerV1) RequestUploadV1(w http.ResponseWriter, r *http.Request) {

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, domain.ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return
	}

	var req V1RequestUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding upload request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, requestErr := h.uploadService.RequestUpload(r.Context(), req.Hash, req.Size, principal)
	switch {
	case errors.Is(requestErr, domain.ErrInvalidHash), errors.Is(requestErr, domain.ErrInvalidSize):
		h.logger.Warn("invalid upload request", "error", requestErr)
		http.Error(w, requestErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(requestErr, domain.ErrPayloadTooLarge):
		h.logger.Warn("upload too large", "error", requestErr)
		http.Error(w, requestErr.Error(), http.StatusRequestEntityTooLarge)
		return
	case requestErr != nil:
		h.logger.Error("error requesting upload", "error", requestErr)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if outcome.Duplicate {
		links := h.publisher.Links(outcome.ID)
		writeJSON(w, http.StatusOK, V1DuplicateResponse{
			Duplicate: outcome.ID,
			VideoURL:  links.VideoURL,
			PosterURL: links.PosterURL,
		}, h)
		return
	}

	credential := outcome.Credential
	writeJSON(w, http.StatusCreated, V1UploadCredentialResponse{
		Key:       credential.Key,
		URL:       credential.URL,
		Fields:    credential.Fields,
		ExpiresAt: credential.ExpiresAt,
	}, h)
}

func writeJSON(w http.ResponseWriter, status int, body any, h *HandlerV1) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
