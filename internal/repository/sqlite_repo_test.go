package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafscan/internal/db"
	"leafscan/internal/domain"
)

func setupSQLite(t *testing.T) (*SQLiteUserRepository, *SQLiteScanRepository) {
	t.Helper()
	sqlDB, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewSQLiteUserRepository(sqlDB), NewSQLiteScanRepository(sqlDB)
}

func newUser(email string) domain.User {
	return domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		Salt:         "salt",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	users, _ := setupSQLite(t)

	user := newUser("a@x.com")
	require.NoError(t, users.Create(ctx, user))

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)
	assert.Equal(t, user.Salt, byID.Salt)
	assert.True(t, user.CreatedAt.Equal(byID.CreatedAt))

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestSQLiteUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	users, _ := setupSQLite(t)

	_, err := users.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users, _ := setupSQLite(t)

	require.NoError(t, users.Create(ctx, newUser("dup@x.com")))
	err := users.Create(ctx, newUser("dup@x.com"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLiteUserRepository_IDCollisionIsNotDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users, _ := setupSQLite(t)

	first := newUser("first@x.com")
	require.NoError(t, users.Create(ctx, first))

	second := newUser("second@x.com")
	second.ID = first.ID
	err := users.Create(ctx, second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestSQLiteUserRepository_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	users, _ := setupSQLite(t)

	require.NoError(t, users.Create(ctx, newUser("case@x.com")))
	require.NoError(t, users.Create(ctx, newUser("Case@x.com")))
}

func TestSQLiteUserRepository_ConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	users, _ := setupSQLite(t)

	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := users.Create(ctx, newUser("race@x.com"))
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case ErrDuplicate:
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
}

func TestSQLiteScanRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	users, scans := setupSQLite(t)

	owner := newUser("owner@x.com")
	other := newUser("other@x.com")
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	base := time.Now().UTC().Truncate(time.Second)
	older := domain.ScanRecord{ID: uuid.NewString(), UserID: owner.ID, Prediction: "Healthy", Confidence: 0.9, CreatedAt: base}
	newer := domain.ScanRecord{ID: uuid.NewString(), UserID: owner.ID, Prediction: "Late Blight", Confidence: 0.8, CreatedAt: base.Add(time.Minute)}
	foreign := domain.ScanRecord{ID: uuid.NewString(), UserID: other.ID, Prediction: "Healthy", Confidence: 0.7, CreatedAt: base}
	for _, s := range []domain.ScanRecord{older, newer, foreign} {
		require.NoError(t, scans.Create(ctx, s))
	}

	list, err := scans.ListByUser(ctx, owner.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	assert.ErrorIs(t, scans.Delete(ctx, owner.ID, foreign.ID), ErrNotFound)
	require.NoError(t, scans.Delete(ctx, owner.ID, older.ID))
	assert.ErrorIs(t, scans.Delete(ctx, owner.ID, older.ID), ErrNotFound)

	list, err = scans.ListByUser(ctx, owner.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
