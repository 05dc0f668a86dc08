package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsersRepo keeps records in memory with the same semantics as the mongo
// store: unique email/mobile, case-insensitive substring search, pages in
// newest-created-first order. Used by service and handler tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items []user.User // insertion order; newest records sit at the tail
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{}
}

func (r *UsersRepo) Insert(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, &user.ConflictError{Field: "email"}
		}
		if existing.Mobile == u.Mobile {
			return user.User{}, &user.ConflictError{Field: "mobile"}
		}
	}

	u.ID = primitive.NewObjectID()
	r.items = append(r.items, u)

	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.ID.Hex() == id {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Search(ctx context.Context, q user.SearchQuery) ([]user.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.newestFirst(q.Search)
	total := int64(len(matched))

	start := (q.Page - 1) * q.PageSize
	if start >= len(matched) {
		return []user.User{}, total, nil
	}

	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, f user.Fields, imageRef *string) (user.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, u := range r.items {
		if u.ID.Hex() == id {
			idx = i
			continue
		}
		if u.Email == f.Email {
			return user.User{}, &user.ConflictError{Field: "email"}
		}
		if u.Mobile == f.Mobile {
			return user.User{}, &user.ConflictError{Field: "mobile"}
		}
	}

	if idx == -1 {
		return user.User{}, user.ErrNotFound
	}

	u := r.items[idx]
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email
	u.Mobile = f.Mobile
	u.Gender = f.Gender
	u.Status = f.Status
	u.Location = f.Location
	u.UpdatedAt = time.Now().UTC()

	if imageRef != nil {
		ref := *imageRef
		u.ProfileImage = &ref
	}

	r.items[idx] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return user.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.items {
		if u.ID.Hex() == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}

	return user.ErrNotFound
}

func (r *UsersRepo) All(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.newestFirst(""), nil
}

// newestFirst walks the items from the tail, which stands in for
// createdAt-descending since inserts append.
func (r *UsersRepo) newestFirst(search string) []user.User {
	out := []user.User{}

	for i := len(r.items) - 1; i >= 0; i-- {
		if matches(r.items[i], search) {
			out = append(out, r.items[i])
		}
	}

	return out
}

func matches(u user.User, search string) bool {
	if search == "" {
		return true
	}

	t := strings.ToLower(search)

	return strings.Contains(strings.ToLower(u.FirstName), t) ||
		strings.Contains(strings.ToLower(u.LastName), t) ||
		strings.Contains(strings.ToLower(u.Email), t)
}
