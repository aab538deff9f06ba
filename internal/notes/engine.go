package notes

import (
	"context"
	"strings"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/domain/note"
	"github.com/geocoder89/notehub/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrInvalidUserID = apperr.Validation("invalid_user_id", "Invalid user ID")

type Store interface {
	Create(ctx context.Context, userID int64, title, content string) (note.Note, error)
	List(ctx context.Context, userID int64, q note.ListQuery) ([]note.Note, error)
	Count(ctx context.Context, userID int64) (int, error)
	Search(ctx context.Context, userID int64, query string) ([]note.Note, error)
	Update(ctx context.Context, userID, noteID int64, p note.Patch) (note.Note, error)
	Delete(ctx context.Context, userID, noteID int64) (note.Note, error)
}

type ListResult struct {
	Notes      []note.Note `json:"notes"`
	TotalNotes int         `json:"totalNotes"`
}

// Engine answers note queries. Every operation is scoped to a single owner.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// List returns one page of the user's notes, newest first, plus the user's total note count.
func (e *Engine) List(ctx context.Context, userID int64, p Page) (res ListResult, err error) {
	ctx, span := startSpan(ctx, "notes.List", userID)
	defer func() { endSpan(span, err) }()

	if userID <= 0 {
		return ListResult{}, ErrInvalidUserID
	}

	items, err := e.store.List(ctx, userID, note.ListQuery{Sort: note.SortCreatedAt, Limit: p.Limit, Offset: p.Offset()})
	if err != nil {
		return ListResult{}, storeErr(err, "Error fetching notes")
	}

	total, err := e.store.Count(ctx, userID)
	if err != nil {
		return ListResult{}, storeErr(err, "Error fetching notes")
	}

	return ListResult{Notes: items, TotalNotes: total}, nil
}

// Sorted returns one page of the user's notes in the order named by sortBy.
func (e *Engine) Sorted(ctx context.Context, userID int64, sortBy note.SortKey, p Page) (items []note.Note, err error) {
	ctx, span := startSpan(ctx, "notes.Sorted", userID)
	span.SetAttributes(attribute.String("notes.sort", string(sortBy)))
	defer func() { endSpan(span, err) }()

	if userID <= 0 {
		return nil, ErrInvalidUserID
	}

	items, err = e.store.List(ctx, userID, note.ListQuery{Sort: sortBy, Limit: p.Limit, Offset: p.Offset()})
	if err != nil {
		return nil, storeErr(err, "Error fetching sorted notes")
	}
	return items, nil
}

func (e *Engine) Search(ctx context.Context, userID int64, query string) (items []note.Note, err error) {
	ctx, span := startSpan(ctx, "notes.Search", userID)
	defer func() { endSpan(span, err) }()

	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(query) == "" {
		return nil, note.ErrEmptyQuery
	}

	items, err = e.store.Search(ctx, userID, query)
	if err != nil {
		return nil, storeErr(err, "Error searching notes")
	}
	return items, nil
}

func (e *Engine) Create(ctx context.Context, req note.CreateNoteRequest) (n note.Note, err error) {
	ctx, span := startSpan(ctx, "notes.Create", req.UserID)
	defer func() { endSpan(span, err) }()

	if req.UserID <= 0 {
		return note.Note{}, ErrInvalidUserID
	}

	n, err = e.store.Create(ctx, req.UserID, req.Title, req.Content)
	if err != nil {
		return note.Note{}, storeErr(err, "Error creating note")
	}
	return n, nil
}

func (e *Engine) Update(ctx context.Context, userID, noteID int64, p note.Patch) (n note.Note, err error) {
	ctx, span := startSpan(ctx, "notes.Update", userID)
	defer func() { endSpan(span, err) }()

	if userID <= 0 {
		return note.Note{}, ErrInvalidUserID
	}
	if noteID <= 0 {
		return note.Note{}, note.ErrNotFound
	}
	if p.Empty() {
		return note.Note{}, note.ErrEmptyPatch
	}

	n, err = e.store.Update(ctx, userID, noteID, p)
	if err != nil {
		return note.Note{}, storeErr(err, "Error updating note")
	}
	return n, nil
}

func (e *Engine) Delete(ctx context.Context, userID, noteID int64) (n note.Note, err error) {
	ctx, span := startSpan(ctx, "notes.Delete", userID)
	defer func() { endSpan(span, err) }()

	if userID <= 0 {
		return note.Note{}, ErrInvalidUserID
	}
	if noteID <= 0 {
		return note.Note{}, note.ErrNotFound
	}

	n, err = e.store.Delete(ctx, userID, noteID)
	if err != nil {
		return note.Note{}, storeErr(err, "Error deleting note")
	}
	return n, nil
}

func storeErr(err error, message string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Dependency(message, err)
}

func startSpan(ctx context.Context, name string, userID int64) (context.Context, trace.Span) {
	ctx, span := observability.Tracer().Start(ctx, name)
	span.SetAttributes(attribute.Int64("user.id", userID))
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
