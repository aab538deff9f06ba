package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/domain/note"
	"github.com/geocoder89/notehub/internal/notes"
	"github.com/gin-gonic/gin"
)

type NoteEngine interface {
	Create(ctx context.Context, req note.CreateNoteRequest) (note.Note, error)
	List(ctx context.Context, userID int64, p notes.Page) (notes.ListResult, error)
	Sorted(ctx context.Context, userID int64, sortBy note.SortKey, p notes.Page) ([]note.Note, error)
	Search(ctx context.Context, userID int64, query string) ([]note.Note, error)
	Update(ctx context.Context, userID, noteID int64, p note.Patch) (note.Note, error)
	Delete(ctx context.Context, userID, noteID int64) (note.Note, error)
}

type NotesHandler struct {
	notes NoteEngine
}

func NewNotesHandler(engine NoteEngine) *NotesHandler {
	return &NotesHandler{notes: engine}
}

const msgNoteNotFound = "Note not found or does not belong to the user"

func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}
	if !ownedBy(ctx, req.UserID, "user_not_found", "User not found") {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	n, err := h.notes.Create(cctx, req)
	if err != nil {
		RespondAppError(ctx, err, "Error creating note")
		return
	}

	ctx.JSON(http.StatusCreated, n)
}

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	userID, ok := h.owner(ctx)
	if !ok {
		return
	}

	page := notes.ParsePage(ctx.Query("page"), ctx.Query("limit"), notes.DefaultListLimit)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.notes.List(cctx, userID, page)
	if err != nil {
		RespondAppError(ctx, err, "Error fetching notes")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, res)
}

func (h *NotesHandler) SortNotes(ctx *gin.Context) {
	userID, ok := h.owner(ctx)
	if !ok {
		return
	}

	sortBy := note.ParseSortKey(ctx.Query("sortBy"))
	page := notes.ParsePage(ctx.Query("page"), ctx.Query("limit"), notes.DefaultSortLimit)

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.notes.Sorted(cctx, userID, sortBy, page)
	if err != nil {
		RespondAppError(ctx, err, "Error fetching sorted notes")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *NotesHandler) SearchNotes(ctx *gin.Context) {
	userID, ok := h.owner(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.notes.Search(cctx, userID, ctx.Query("query"))
	if err != nil {
		RespondAppError(ctx, err, "Error searching notes")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *NotesHandler) UpdateNote(ctx *gin.Context) {
	userID, ok := h.owner(ctx)
	if !ok {
		return
	}
	noteID, ok := pathID(ctx, "note_id", "Invalid note ID")
	if !ok {
		return
	}

	var req note.UpdateNoteRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	n, err := h.notes.Update(cctx, userID, noteID, req.Patch())
	if err != nil {
		RespondAppError(ctx, err, "Error updating note")
		return
	}

	ctx.JSON(http.StatusOK, n)
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	userID, ok := h.owner(ctx)
	if !ok {
		return
	}
	noteID, ok := pathID(ctx, "note_id", "Invalid note ID")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	n, err := h.notes.Delete(cctx, userID, noteID)
	if err != nil {
		RespondAppError(ctx, err, "Error deleting note")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Note deleted successfully",
		"deletedNote": n,
	})
}

// owner parses :user_id and checks it against the session.
func (h *NotesHandler) owner(ctx *gin.Context) (int64, bool) {
	userID, ok := pathID(ctx, "user_id", "User ID is required")
	if !ok {
		return 0, false
	}
	if !ownedBy(ctx, userID, "note_not_found", msgNoteNotFound) {
		return 0, false
	}
	return userID, true
}
