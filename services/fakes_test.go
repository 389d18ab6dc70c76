package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
)

// fakeUserRepo is an in-memory UserRepository that enforces the same
// uniqueness rules as the real tables.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User)}
}

func (r *fakeUserRepo) conflict(u *models.User) error {
	for _, existing := range r.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email already in use", pkg.ErrConflict)
		}
		if existing.Username == u.Username {
			return fmt.Errorf("%w: username already taken", pkg.ErrConflict)
		}
	}
	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, pkg.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return pkg.ErrNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	r.users[u.ID] = *u
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]models.Product
	failNext error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]models.Product)}
}

func (r *fakeProductRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", pkg.ErrNotFound, id)
	}
	return &p, nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.products[p.ID]; !ok {
		return fmt.Errorf("%w: product %d", pkg.ErrNotFound, p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: product %d", pkg.ErrNotFound, id)
	}
	delete(r.products, id)
	return nil
}

// fakeUploads records saved and removed paths without touching the disk.
type fakeUploads struct {
	saved   []string
	removed []string
	err     error
}

func (u *fakeUploads) Save(name string, _ int64, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	stored := fmt.Sprintf("/uploads/%d-%s", len(u.saved)+1, name)
	u.saved = append(u.saved, stored)
	return stored, nil
}

func (u *fakeUploads) CheckName(string) error { return u.err }

func (u *fakeUploads) Remove(storedPath string) error {
	u.removed = append(u.removed, storedPath)
	return nil
}
