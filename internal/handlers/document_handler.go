package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codocs/internal/models"
	"codocs/internal/repositories"
	"codocs/internal/utils"
)

// DocumentHandler manages document CRUD and the joined-documents listing.
type DocumentHandler struct {
	Docs   DocumentRepository
	Joined JoinedDocumentRepository
	Log    *zap.Logger
}

func NewDocumentHandler(docs DocumentRepository, joined JoinedDocumentRepository, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{Docs: docs, Joined: joined, Log: log}
}

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	First   string `json:"first"`
	Last    string `json:"last"`
}

type updateContentRequest struct {
	Content string `json:"content"`
}

type updateTitleRequest struct {
	Title string `json:"title"`
}

type joinDocumentRequest struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

func documentID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err
}

func (h *DocumentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	doc := &models.Document{
		Title:      req.Title,
		Content:    req.Content,
		OwnerFirst: req.First,
		OwnerLast:  req.Last,
	}
	if err := h.Docs.Create(r.Context(), doc); err != nil {
		h.Log.Error("create document failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to create document")
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{"id": doc.ID})
}

func (h *DocumentHandler) GetContentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	doc, err := h.Docs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"content": doc.Content})
}

func (h *DocumentHandler) UpdateContentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req updateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Docs.UpdateContent(r.Context(), id, req.Content); err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "failed to update document")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *DocumentHandler) UpdateTitleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req updateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Docs.UpdateTitle(r.Context(), id, req.Title); err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "failed to update title")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "title updated"})
}

// TouchHandler bumps updated_at and echoes the new timestamp.
func (h *DocumentHandler) TouchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	at, err := h.Docs.Touch(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "failed to touch document")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"updatedAt": at})
}

// DeleteHandler removes a document. Deleting an id that is already gone
// still succeeds.
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	if err := h.Docs.Delete(r.Context(), id); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ListByOwnerHandler lists the documents owned by first/last. No matches is
// a 200 with an empty list, not a 404.
func (h *DocumentHandler) ListByOwnerHandler(w http.ResponseWriter, r *http.Request) {
	first := r.URL.Query().Get("first")
	last := r.URL.Query().Get("last")
	docs, err := h.Docs.ListByOwner(r.Context(), first, last)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	utils.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// JoinHandler records that a user joined a document.
func (h *DocumentHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req joinDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := h.Docs.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			utils.JSONError(w, http.StatusNotFound, "document not found")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	entry := &models.JoinedDocument{DocumentID: id, First: req.First, Last: req.Last}
	if err := h.Joined.Add(r.Context(), entry); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to record join")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "joined"})
}

// ListJoinedHandler lists the documents a user has joined. As with the
// owner listing, no matches is an empty 200.
func (h *DocumentHandler) ListJoinedHandler(w http.ResponseWriter, r *http.Request) {
	first := r.URL.Query().Get("first")
	last := r.URL.Query().Get("last")
	views, err := h.Joined.ListByUser(r.Context(), first, last)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to list joined documents")
		return
	}
	if views == nil {
		views = []repositories.JoinedDocumentView{}
	}
	utils.JSON(w, http.StatusOK, map[string]any{"documents": views})
}
