package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

// Directory is the in-memory user directory with phone and email indices.
type Directory struct {
	mu      sync.RWMutex
	users   map[string]entity.User
	byPhone map[entity.Phone]string
	byEmail map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		users:   make(map[string]entity.User),
		byPhone: make(map[entity.Phone]string),
		byEmail: make(map[string]string),
	}
}

func (d *Directory) Insert(_ context.Context, u entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[u.ID]; ok {
		return goerror.ErrConflict
	}
	if u.Phone != "" {
		if _, ok := d.byPhone[u.Phone]; ok {
			return goerror.ErrConflict
		}
	}
	email := emailKey(u.Email)
	if email != "" {
		if _, ok := d.byEmail[email]; ok {
			return goerror.ErrConflict
		}
	}

	d.put(u.Clone())
	return nil
}

// Update replaces an existing user. The id is the immutable key.
func (d *Directory) Update(_ context.Context, u entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	old, ok := d.users[u.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if u.Phone != "" && u.Phone != old.Phone {
		if _, taken := d.byPhone[u.Phone]; taken {
			return goerror.ErrConflict
		}
	}
	if email := emailKey(u.Email); email != "" && email != emailKey(old.Email) {
		if _, taken := d.byEmail[email]; taken {
			return goerror.ErrConflict
		}
	}

	d.unindex(old)
	d.put(u.Clone())
	return nil
}

func (d *Directory) GetByID(_ context.Context, id string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.get(id)
}

func (d *Directory) FindByPhone(_ context.Context, phone entity.Phone) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byPhone[phone]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return d.get(id)
}

func (d *Directory) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[emailKey(email)]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return d.get(id)
}

// All returns every user ordered by creation time, then id.
func (d *Directory) All(_ context.Context) ([]entity.User, error) {
	d.mu.RLock()
	out := make([]entity.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.Clone())
	}
	d.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Replace swaps the whole content for users. Later duplicates of a phone or
// email are dropped from the index but kept by id.
func (d *Directory) Replace(_ context.Context, users []entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users = make(map[string]entity.User, len(users))
	d.byPhone = make(map[entity.Phone]string, len(users))
	d.byEmail = make(map[string]string, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		d.put(u.Clone())
	}
	return nil
}

func (d *Directory) Clear(ctx context.Context) error {
	return d.Replace(ctx, nil)
}

func (d *Directory) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.users), nil
}

func (d *Directory) get(id string) (*entity.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	c := u.Clone()
	return &c, nil
}

func (d *Directory) put(u entity.User) {
	d.users[u.ID] = u
	if u.Phone != "" {
		if _, taken := d.byPhone[u.Phone]; !taken {
			d.byPhone[u.Phone] = u.ID
		}
	}
	if email := emailKey(u.Email); email != "" {
		if _, taken := d.byEmail[email]; !taken {
			d.byEmail[email] = u.ID
		}
	}
}

func (d *Directory) unindex(u entity.User) {
	if d.byPhone[u.Phone] == u.ID {
		delete(d.byPhone, u.Phone)
	}
	if email := emailKey(u.Email); d.byEmail[email] == u.ID {
		delete(d.byEmail, email)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
