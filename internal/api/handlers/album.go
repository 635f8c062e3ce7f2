package handlers

import (
	"net/http"

	"github.com/dom/musikkhylla/internal/api/middleware"
	"github.com/dom/musikkhylla/internal/domain"
	"github.com/dom/musikkhylla/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AlbumHandler struct {
	albumService *service.AlbumService
}

func NewAlbumHandler(albumService *service.AlbumService) *AlbumHandler {
	return &AlbumHandler{albumService: albumService}
}

type AlbumListResponse struct {
	Albums []*domain.Album `json:"albums"`
}

// ReorderRequest accepts either a flat id list or the album objects
// themselves; only their ids are read.
type ReorderRequest struct {
	AlbumIDs []string       `json:"albumIds"`
	Albums   []ReorderEntry `json:"albums"`
}

type ReorderEntry struct {
	ID string `json:"id"`
}

func (req ReorderRequest) ids() ([]uuid.UUID, bool) {
	raw := req.AlbumIDs
	if raw == nil {
		if req.Albums == nil {
			return nil, false
		}
		raw = make([]string, len(req.Albums))
		for i, entry := range req.Albums {
			raw[i] = entry.ID
		}
	}

	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		// Unparseable ids keep their slot and match no album.
		if id, err := uuid.Parse(s); err == nil {
			ids[i] = id
		}
	}
	return ids, true
}

func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	albums, err := h.albumService.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AlbumListResponse{Albums: albums})
}

func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input domain.AlbumInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	album, err := h.albumService.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, album)
}

func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	albumID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, domain.ErrInvalidAlbumID)
		return
	}

	var patch domain.AlbumPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	album, err := h.albumService.Update(r.Context(), user.ID, albumID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, album)
}

func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	albumID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, domain.ErrInvalidAlbumID)
		return
	}

	if err := h.albumService.Delete(r.Context(), user.ID, albumID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Album deleted successfully"})
}

func (h *AlbumHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ids, ok := req.ids()
	if !ok {
		writeError(w, http.StatusBadRequest, "albums or albumIds is required")
		return
	}

	if err := h.albumService.Reorder(r.Context(), user.ID, ids); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Album order updated successfully"})
}
