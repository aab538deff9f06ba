package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, phone, password_hash, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, username, email, phone, passwordHash string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.create", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (username, email, phone, password_hash)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+userColumns,
			username, email, phone, passwordHash,
		))
		return err
	})

	if err != nil {
		if isUniqueViolation(err, "") {
			return user.User{}, user.ErrDuplicate
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})
	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return u, err
}

func (r *UsersRepo) GetByIdentity(ctx context.Context, id user.Identity) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_identity", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			 FROM users
			 WHERE username = $1 AND email = $2 AND phone = $3`,
			id.Username, id.Email, id.Phone))
		return err
	})
	return u, err
}

// ChangePassword locks the user row, hands the current hash to replace and
// stores whatever hash it returns. An error from replace aborts the transaction.
func (r *UsersRepo) ChangePassword(ctx context.Context, id int64, replace func(currentHash string) (string, error)) error {
	return r.prom.ObserveDB("users.change_password", func() error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			var current string

			err := tx.QueryRow(ctx,
				`SELECT password_hash FROM users WHERE id = $1 FOR UPDATE`, id,
			).Scan(&current)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return user.ErrNotFound
				}
				return err
			}

			next, err := replace(current)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
				id, next,
			)
			return err
		})
	})
}

func (r *UsersRepo) UpdatePasswordByIdentity(ctx context.Context, id user.Identity, passwordHash string) error {
	return r.prom.ObserveDB("users.reset_password", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			 SET password_hash = $4, updated_at = NOW()
			 WHERE username = $1 AND email = $2 AND phone = $3`,
			id.Username, id.Email, id.Phone, passwordHash,
		)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func (r *UsersRepo) UpdateUsername(ctx context.Context, id int64, username string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.update_username", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users SET username = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, username,
		))
		return err
	})

	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Availability(ctx context.Context, email, phone string) (user.Availability, error) {
	var a user.Availability

	err := r.prom.ObserveDB("users.availability", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT
			   EXISTS (SELECT 1 FROM users WHERE email = $1),
			   EXISTS (SELECT 1 FROM users WHERE phone = $2)`,
			email, phone,
		).Scan(&a.EmailExists, &a.PhoneExists)
	})
	return a, err
}
