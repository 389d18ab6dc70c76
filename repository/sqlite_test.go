package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/shopapi/database"
	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
)

func newSQLite(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "shop.db"), database.SQLiteMigrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(email, username string) *models.User {
	return &models.User{
		ID:           uuid.New().String(),
		Name:         "Test User",
		Email:        email,
		Username:     username,
		PasswordHash: "pbkdf2-sha256$1$00$00",
	}
}

func TestSQLiteUserRepo_CreateAndGet(t *testing.T) {
	repo := NewSQLiteUserRepo(newSQLite(t).Conn)
	ctx := context.Background()

	u := newUser("ada@example.com", "ada")
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, u.PasswordHash, byID.PasswordHash)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byUsername.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestSQLiteUserRepo_UniqueConstraints(t *testing.T) {
	repo := NewSQLiteUserRepo(newSQLite(t).Conn)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("ada@example.com", "ada")))

	err := repo.Create(ctx, newUser("ada@example.com", "other"))
	assert.ErrorIs(t, err, pkg.ErrConflict)
	assert.Contains(t, err.Error(), "email")

	err = repo.Create(ctx, newUser("other@example.com", "ada"))
	assert.ErrorIs(t, err, pkg.ErrConflict)
	assert.Contains(t, err.Error(), "username")
}

func TestSQLiteUserRepo_Update(t *testing.T) {
	repo := NewSQLiteUserRepo(newSQLite(t).Conn)
	ctx := context.Background()

	a := newUser("a@example.com", "alpha")
	b := newUser("b@example.com", "bravo")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	a.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	a.Email = "b@example.com"
	assert.ErrorIs(t, repo.Update(ctx, a), pkg.ErrConflict)

	ghost := newUser("ghost@example.com", "ghost")
	assert.ErrorIs(t, repo.Update(ctx, ghost), pkg.ErrNotFound)
}

func TestSQLiteUserRepo_ConcurrentDuplicateEmail(t *testing.T) {
	repo := NewSQLiteUserRepo(newSQLite(t).Conn)
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, newUser("race@example.com", fmt.Sprintf("racer%d", i)))
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, pkg.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestSQLiteProductRepo_CRUD(t *testing.T) {
	repo := NewSQLiteProductRepo(newSQLite(t).Conn)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	p := &models.Product{Title: "Mug", Description: "Ceramic", Price: 9.99, Quantity: 10}
	require.NoError(t, repo.Create(ctx, p))
	assert.Positive(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Title)
	assert.Equal(t, "Ceramic", got.Description)
	assert.InDelta(t, 9.99, got.Price, 1e-9)
	assert.Equal(t, 10, got.Quantity)
	assert.Equal(t, "", got.Image)

	got.Quantity = 0
	got.Image = "/uploads/abc.png"
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Quantity)
	assert.Equal(t, "/uploads/abc.png", again.Image)

	second := &models.Product{Title: "Plate", Description: "Flat", Price: 4, Quantity: 1}
	require.NoError(t, repo.Create(ctx, second))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestSQLiteProductRepo_UnknownID(t *testing.T) {
	repo := NewSQLiteProductRepo(newSQLite(t).Conn)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	err = repo.Update(ctx, &models.Product{ID: 404, Title: "x", Description: "y", Price: 1})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 404), pkg.ErrNotFound)
}

func TestSQLiteProductRepo_CheckConstraint(t *testing.T) {
	repo := NewSQLiteProductRepo(newSQLite(t).Conn)

	// The service rejects this first; the table refuses it as well.
	err := repo.Create(context.Background(), &models.Product{Title: "x", Description: "y", Price: 0})
	assert.ErrorIs(t, err, pkg.ErrStorage)
}
