package note

import (
	"time"

	"github.com/geocoder89/notehub/internal/apperr"
)

type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNotFound      = apperr.NotFound("note_not_found", "Note not found or does not belong to the user")
	ErrOwnerNotFound = apperr.NotFound("user_not_found", "User not found")
	ErrEmptyPatch    = apperr.Validation("empty_update", "At least one field (title or content) is required for update")
	ErrEmptyQuery    = apperr.Validation("missing_query", "query is required")
)

type CreateNoteRequest struct {
	UserID  int64  `json:"user_id" binding:"required,min=1"`
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

// UpdateNoteRequest is a partial update; an empty string counts as absent.
type UpdateNoteRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=255"`
	Content *string `json:"content"`
}

type Patch struct {
	Title   *string
	Content *string
}

func (r UpdateNoteRequest) Patch() Patch {
	var p Patch
	if r.Title != nil && *r.Title != "" {
		p.Title = r.Title
	}
	if r.Content != nil && *r.Content != "" {
		p.Content = r.Content
	}
	return p
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

// Apply returns n with the patch applied and UpdatedAt set to now.
func (p Patch) Apply(n Note, now time.Time) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	n.UpdatedAt = now
	return n
}

// ListQuery is a window over one user's notes in a given order.
type ListQuery struct {
	Sort   SortKey
	Limit  int
	Offset int
}
