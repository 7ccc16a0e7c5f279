package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/boardservice"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/sync"
)

// Handler holds API route handlers.
type Handler struct {
	svc *boardservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *boardservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetBoard handles GET /api/board.
//
//	@Summary		Load the board configuration and all cards
//	@Tags			board
//	@Produce		json
//	@Success		200	{object}	models.LoadedBoard
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/board [get]
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.svc.Load(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrBoardFileNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("board file not found"))
		case errors.Is(err, apperr.ErrInvalidBoardFile):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid board file"))
		default:
			slog.Error("load board failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}

// SaveBoard handles PUT /api/board.
//
//	@Summary		Replace the board configuration
//	@Tags			board
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveBoardRequest	true	"Board configuration"
//	@Success		200		{object}	models.Board
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/board [put]
func (h *Handler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SaveBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" || len(req.Columns) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("title and columns are required"))
		return
	}
	seen := make(map[string]struct{}, len(req.Columns))
	for _, c := range req.Columns {
		if c.ID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("column id is required"))
			return
		}
		if _, dup := seen[c.ID]; dup {
			writeJSON(w, http.StatusBadRequest, errorBody("duplicate column id: "+c.ID))
			return
		}
		seen[c.ID] = struct{}{}
	}

	b := &models.Board{Title: req.Title, Columns: req.Columns}
	if err := h.svc.SaveBoard(r.Context(), b); err != nil {
		slog.Error("save board failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CreateCard handles POST /api/cards.
//
//	@Summary		Create a new card
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCardRequest	true	"Card to create"
//	@Success		201		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [post]
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" || req.Column == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title and column are required"))
		return
	}

	card := &models.Card{
		Title:    req.Title,
		Column:   req.Column,
		Position: req.Position,
		Content:  req.Content,
	}
	if err := h.svc.CreateCard(r.Context(), card); err != nil {
		if errors.Is(err, apperr.ErrDuplicateTitle) {
			writeJSON(w, http.StatusConflict, errorBody("a card with this title already exists"))
		} else {
			slog.Error("create card failed", slog.String("title", req.Title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// UpdateCard handles PUT /api/cards.
//
//	@Summary		Update a card, optionally moving or renaming it
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateCardRequest	true	"Updated card with previous state"
//	@Success		200		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [put]
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" || req.Column == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title and column are required"))
		return
	}

	card := &models.Card{
		Title:      req.Title,
		Column:     req.Column,
		Position:   req.Position,
		Created:    req.Created,
		Content:    req.Content,
		SourceSlug: req.SourceSlug,
	}
	if err := h.svc.UpdateCard(r.Context(), card, req.PrevTitle, req.PrevColumn); err != nil {
		if errors.Is(err, apperr.ErrDuplicateTitle) {
			writeJSON(w, http.StatusConflict, errorBody("a card with this title already exists"))
		} else {
			slog.Error("update card failed", slog.String("title", req.Title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{column}/{slug}.
//
//	@Summary		Delete a card by column and filename stem
//	@Tags			cards
//	@Param			column	path	string	true	"Column id"
//	@Param			slug	path	string	true	"Card filename stem"
//	@Success		204		"Card deleted"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{column}/{slug} [delete]
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	slugParam := chi.URLParam(r, "slug")
	if column == "" || slugParam == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("column and slug are required"))
		return
	}
	card := &models.Card{Column: column, SourceSlug: slugParam}
	if err := h.svc.DeleteCard(r.Context(), card); err != nil {
		slog.Error("delete card failed", slog.String("slug", slugParam), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListArchived handles GET /api/archive.
//
//	@Summary		List archived cards, newest first
//	@Tags			archive
//	@Produce		json
//	@Success		200	{object}	ArchiveListResponse
//	@Security		BearerAuth
//	@Router			/archive [get]
func (h *Handler) ListArchived(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Archived(r.Context())
	if err != nil {
		slog.Error("list archive failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, ArchiveListResponse{Cards: cards})
}

// ArchiveCard handles POST /api/archive.
//
//	@Summary		Move a card into the archive
//	@Tags			archive
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ArchiveCardRequest	true	"Card to archive"
//	@Success		200		{object}	ArchiveCardResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/archive [post]
func (h *Handler) ArchiveCard(w http.ResponseWriter, r *http.Request) {
	var req ArchiveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" || req.Column == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title and column are required"))
		return
	}
	card := &models.Card{Title: req.Title, Column: req.Column, SourceSlug: req.SourceSlug}
	archivePath, err := h.svc.ArchiveCard(r.Context(), card)
	if err != nil {
		if errors.Is(err, apperr.ErrFileOperation) {
			writeJSON(w, http.StatusNotFound, errorBody("card file not found"))
		} else {
			slog.Error("archive card failed", slog.String("title", req.Title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ArchiveCardResponse{ArchivePath: archivePath})
}

// UnarchiveCard handles POST /api/archive/restore.
//
//	@Summary		Restore an archived card into its column
//	@Tags			archive
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UnarchiveCardRequest	true	"Archived card and target"
//	@Success		200		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/archive/restore [post]
func (h *Handler) UnarchiveCard(w http.ResponseWriter, r *http.Request) {
	var req UnarchiveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ArchivePath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("archivePath is required"))
		return
	}
	card := req.Card
	if err := h.svc.UnarchiveCard(r.Context(), req.ArchivePath, &card); err != nil {
		switch {
		case errors.Is(err, apperr.ErrDuplicateTitle):
			writeJSON(w, http.StatusConflict, errorBody("destination already occupied"))
		case errors.Is(err, apperr.ErrFileOperation):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid restore target"))
		default:
			slog.Error("unarchive card failed", slog.String("path", req.ArchivePath), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// SyncStatus handles GET /api/sync/status.
//
//	@Summary		Report the sync state and available actions
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncStatusResponse
//	@Security		BearerAuth
//	@Router			/sync/status [get]
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	st := h.svc.SyncStatus()
	writeJSON(w, http.StatusOK, SyncStatusResponse{
		State:   string(st.State),
		Message: st.Message,
		CanPush: st.CanPush(),
		CanPull: st.CanPull(),
	})
}

// SyncPush handles POST /api/sync/push.
//
//	@Summary		Upload local changes to the remote
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncStatusResponse
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync/push [post]
func (h *Handler) SyncPush(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, h.svc.Push, "push")
}

// SyncPull handles POST /api/sync/pull.
//
//	@Summary		Download remote changes
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncStatusResponse
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync/pull [post]
func (h *Handler) SyncPull(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, h.svc.Pull, "pull")
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, op func(context.Context) error, name string) {
	if err := op(r.Context()); err != nil {
		switch {
		case errors.Is(err, sync.ErrNotConfigured):
			writeJSON(w, http.StatusBadRequest, errorBody("sync is not configured"))
		case errors.Is(err, sync.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("local and remote have diverged"))
		case errors.Is(err, sync.ErrNetwork):
			writeJSON(w, http.StatusBadGateway, errorBody("remote unreachable"))
		case errors.Is(err, sync.ErrAuthentication):
			writeJSON(w, http.StatusBadGateway, errorBody("remote authentication failed"))
		default:
			slog.Error("sync failed", slog.String("op", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	st := h.svc.SyncStatus()
	writeJSON(w, http.StatusOK, SyncStatusResponse{
		State:   string(st.State),
		Message: st.Message,
		CanPush: st.CanPush(),
		CanPull: st.CanPull(),
	})
}
