package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/notehub/internal/domain/note"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const noteColumns = `id, user_id, title, content, created_at, updated_at`

// orderBy is the only source of ORDER BY text; user input never reaches the SQL.
// Titles sort bytewise so the order matches note.SortKey.Less.
var orderBy = map[note.SortKey]string{
	note.SortCreatedAt: "created_at DESC, id DESC",
	note.SortUpdatedAt: "updated_at DESC, id DESC",
	note.SortTitle:     `title COLLATE "C" ASC, id ASC`,
}

type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, prom: prom}
}

func scanNote(row pgx.Row) (note.Note, error) {
	var n note.Note

	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, err
	}
	return n, nil
}

func collectNotes(rows pgx.Rows, capacity int) ([]note.Note, error) {
	defer rows.Close()

	out := make([]note.Note, 0, capacity)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotesRepo) Create(ctx context.Context, userID int64, title, content string) (note.Note, error) {
	var n note.Note

	err := r.prom.ObserveDB("notes.create", func() error {
		var err error
		n, err = scanNote(r.pool.QueryRow(ctx,
			`INSERT INTO notes (user_id, title, content)
			 VALUES ($1, $2, $3)
			 RETURNING `+noteColumns,
			userID, title, content,
		))
		return err
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return note.Note{}, note.ErrOwnerNotFound
		}
		return note.Note{}, err
	}
	return n, nil
}

func (r *NotesRepo) List(ctx context.Context, userID int64, q note.ListQuery) ([]note.Note, error) {
	order, ok := orderBy[q.Sort]
	if !ok {
		order = orderBy[note.SortCreatedAt]
	}

	var out []note.Note

	err := r.prom.ObserveDB("notes.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+noteColumns+`
			 FROM notes
			 WHERE user_id = $1
			 ORDER BY `+order+`
			 LIMIT $2 OFFSET $3`,
			userID, q.Limit, q.Offset,
		)
		if err != nil {
			return err
		}

		out, err = collectNotes(rows, q.Limit)
		return err
	})
	return out, err
}

func (r *NotesRepo) Count(ctx context.Context, userID int64) (int, error) {
	var total int

	err := r.prom.ObserveDB("notes.count", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID,
		).Scan(&total)
	})
	return total, err
}

// Search matches query as a literal, case-insensitive substring of title or content.
func (r *NotesRepo) Search(ctx context.Context, userID int64, query string) ([]note.Note, error) {
	pattern := "%" + escapeLike(query) + "%"

	var out []note.Note

	err := r.prom.ObserveDB("notes.search", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+noteColumns+`
			 FROM notes
			 WHERE user_id = $1
			   AND (title ILIKE $2 ESCAPE '\' OR content ILIKE $2 ESCAPE '\')
			 ORDER BY created_at DESC, id DESC`,
			userID, pattern,
		)
		if err != nil {
			return err
		}

		out, err = collectNotes(rows, 0)
		return err
	})
	return out, err
}

func (r *NotesRepo) Update(ctx context.Context, userID, noteID int64, p note.Patch) (note.Note, error) {
	var n note.Note

	err := r.prom.ObserveDB("notes.update", func() error {
		var err error
		n, err = scanNote(r.pool.QueryRow(ctx,
			`UPDATE notes
			 SET title = COALESCE($3, title),
			     content = COALESCE($4, content),
			     updated_at = NOW()
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+noteColumns,
			noteID, userID, p.Title, p.Content,
		))
		return err
	})
	return n, err
}

func (r *NotesRepo) Delete(ctx context.Context, userID, noteID int64) (note.Note, error) {
	var n note.Note

	err := r.prom.ObserveDB("notes.delete", func() error {
		var err error
		n, err = scanNote(r.pool.QueryRow(ctx,
			`DELETE FROM notes
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+noteColumns,
			noteID, userID,
		))
		return err
	})
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
