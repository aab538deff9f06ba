package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/notehub/internal/domain/note"
)

type NotesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]note.Note
	owners *UsersRepo
	now    func() time.Time
}

// NewNotesRepo returns an empty store. When owners is non-nil, Create rejects
// user ids it does not know, mirroring the notes.user_id foreign key.
func NewNotesRepo(owners *UsersRepo) *NotesRepo {
	return &NotesRepo{
		items:  make(map[int64]note.Note),
		owners: owners,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *NotesRepo) Create(_ context.Context, userID int64, title, content string) (note.Note, error) {
	if r.owners != nil && !r.owners.exists(userID) {
		return note.Note{}, note.ErrOwnerNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now()
	n := note.Note{
		ID:        r.nextID,
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.items[n.ID] = n

	return n, nil
}

func (r *NotesRepo) List(_ context.Context, userID int64, q note.ListQuery) ([]note.Note, error) {
	owned := r.owned(userID, func(note.Note) bool { return true })

	sort.Slice(owned, func(i, j int) bool { return q.Sort.Less(owned[i], owned[j]) })

	if q.Offset < 0 || q.Offset >= len(owned) {
		return []note.Note{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[q.Offset:end], nil
}

func (r *NotesRepo) Count(_ context.Context, userID int64) (int, error) {
	return len(r.owned(userID, func(note.Note) bool { return true })), nil
}

func (r *NotesRepo) Search(_ context.Context, userID int64, query string) ([]note.Note, error) {
	needle := strings.ToLower(query)

	matches := r.owned(userID, func(n note.Note) bool {
		return strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle)
	})

	sort.Slice(matches, func(i, j int) bool { return note.SortCreatedAt.Less(matches[i], matches[j]) })
	return matches, nil
}

func (r *NotesRepo) Update(_ context.Context, userID, noteID int64, p note.Patch) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[noteID]
	if !ok || n.UserID != userID {
		return note.Note{}, note.ErrNotFound
	}

	n = p.Apply(n, r.now())
	r.items[noteID] = n
	return n, nil
}

func (r *NotesRepo) Delete(_ context.Context, userID, noteID int64) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[noteID]
	if !ok || n.UserID != userID {
		return note.Note{}, note.ErrNotFound
	}

	delete(r.items, noteID)
	return n, nil
}

func (r *NotesRepo) owned(userID int64, keep func(note.Note) bool) []note.Note {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]note.Note, 0)
	for _, n := range r.items {
		if n.UserID == userID && keep(n) {
			out = append(out, n)
		}
	}
	return out
}
