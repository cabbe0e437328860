package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/adapters/respond"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/services"
)

type MediaHandler struct {
	media  *services.MediaService
	logger *zap.Logger
}

func NewMediaHandler(media *services.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{media: media, logger: logger}
}

type UploadURLRequest struct {
	FileName string `json:"file_name"`
}

type ImageRequest struct {
	BlobName     string `json:"blob_name"`
	Caption      string `json:"caption"`
	DisplayOrder *int   `json:"display_order"`
	IsPrimary    bool   `json:"is_primary"`
}

type ImageUpdateRequest struct {
	Caption      *string `json:"caption"`
	DisplayOrder *int    `json:"display_order"`
	IsPrimary    *bool   `json:"is_primary"`
}

type DocumentRequest struct {
	BlobName     string `json:"blob_name"`
	FileName     string `json:"file_name"`
	DocumentType string `json:"document_type"`
	Description  string `json:"description"`
}

type DocumentUpdateRequest struct {
	DocumentType *string `json:"document_type"`
	Description  *string `json:"description"`
}

func (h *MediaHandler) ImageUploadURL(w http.ResponseWriter, r *http.Request) {
	var req UploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	ticket, err := h.media.RequestImageUpload(r.Context(), chi.URLParam(r, "id"), req.FileName)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, ticket)
}

func (h *MediaHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req ImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	img, err := h.media.AddImage(r.Context(), actor, chi.URLParam(r, "id"), services.ImageInput{
		BlobName:     req.BlobName,
		Caption:      req.Caption,
		DisplayOrder: req.DisplayOrder,
		IsPrimary:    req.IsPrimary,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, img)
}

func (h *MediaHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.media.ListImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, images)
}

func (h *MediaHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	var req ImageUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	img, err := h.media.UpdateImage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "imageID"), services.ImageUpdate{
		Caption:      req.Caption,
		DisplayOrder: req.DisplayOrder,
		IsPrimary:    req.IsPrimary,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, img)
}

func (h *MediaHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.media.DeleteImage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "imageID")); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) DocumentUploadURL(w http.ResponseWriter, r *http.Request) {
	var req UploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	ticket, err := h.media.RequestDocumentUpload(r.Context(), chi.URLParam(r, "id"), req.FileName)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, ticket)
}

func (h *MediaHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var req DocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	doc, err := h.media.AddDocument(r.Context(), actor, chi.URLParam(r, "id"), services.DocumentInput{
		BlobName:     req.BlobName,
		FileName:     req.FileName,
		DocumentType: req.DocumentType,
		Description:  req.Description,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, doc)
}

func (h *MediaHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.media.ListDocuments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, docs)
}

func (h *MediaHandler) DocumentDownloadURL(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.media.DocumentDownloadURL(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "documentID"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, ticket)
}

func (h *MediaHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	doc, err := h.media.UpdateDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "documentID"), services.DocumentUpdate{
		DocumentType: req.DocumentType,
		Description:  req.Description,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

func (h *MediaHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.media.DeleteDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "documentID")); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
