package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/notehub/internal/domain/user"
)

// UsersRepo keeps users in process memory with the same uniqueness rules as the users table.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
	now    func() time.Time
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *UsersRepo) Create(_ context.Context, username, email, phone, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Username == username || u.Email == email || u.Phone == phone {
			return user.User{}, user.ErrDuplicate
		}
	}

	r.nextID++
	now := r.now()
	u := user.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByIdentity(_ context.Context, id user.Identity) (user.User, error) {
	return r.find(func(u user.User) bool {
		return u.Username == id.Username && u.Email == id.Email && u.Phone == id.Phone
	})
}

func (r *UsersRepo) ChangePassword(_ context.Context, id int64, replace func(currentHash string) (string, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	next, err := replace(u.PasswordHash)
	if err != nil {
		return err
	}

	u.PasswordHash = next
	u.UpdatedAt = r.now()
	r.items[id] = u
	return nil
}

func (r *UsersRepo) UpdatePasswordByIdentity(_ context.Context, id user.Identity, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, u := range r.items {
		if u.Username == id.Username && u.Email == id.Email && u.Phone == id.Phone {
			u.PasswordHash = passwordHash
			u.UpdatedAt = r.now()
			r.items[key] = u
			return nil
		}
	}
	return user.ErrNotFound
}

func (r *UsersRepo) UpdateUsername(_ context.Context, id int64, username string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	for other, existing := range r.items {
		if other != id && existing.Username == username {
			return user.User{}, user.ErrUsernameTaken
		}
	}

	u.Username = username
	u.UpdatedAt = r.now()
	r.items[id] = u
	return u, nil
}

func (r *UsersRepo) Availability(_ context.Context, email, phone string) (user.Availability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var a user.Availability
	for _, u := range r.items {
		if u.Email == email {
			a.EmailExists = true
		}
		if u.Phone == phone {
			a.PhoneExists = true
		}
	}
	return a, nil
}

func (r *UsersRepo) exists(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok
}

func (r *UsersRepo) find(match func(user.User) bool) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
