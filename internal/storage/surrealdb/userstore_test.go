package surrealdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/roastme/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(id string, tokens int) *models.User {
	return models.NewUser(id, id+"@example.com", tokens, time.Now().UTC().Truncate(time.Second))
}

func TestUserStoreCreateAndGet(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("user_1", 5)))

	got, err := store.GetUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.IdentityRef)
	assert.Equal(t, "user_1@example.com", got.Email)
	assert.Equal(t, 5, got.Tokens)
	assert.Equal(t, models.HarshnessStandardSnark, got.HarshnessLevel)
}

func TestUserStoreGetNotFound(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())

	_, err := store.GetUser(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRecordNotFound))
}

func TestUserStoreCreateDuplicateIdentity(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("dup", 5)))

	second := newTestUser("dup", 9)
	second.Email = "other@example.com"
	assert.Error(t, store.CreateUser(ctx, second))

	got, err := store.GetUser(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Tokens, "existing record must not be overwritten")
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	a := newTestUser("a", 5)
	b := newTestUser("b", 5)
	b.Email = a.Email

	require.NoError(t, store.CreateUser(ctx, a))
	assert.Error(t, store.CreateUser(ctx, b))
}

func TestUserStoreDecrementTokens(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("spender", 2)))

	remaining, err := store.DecrementTokens(ctx, "spender")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	remaining, err = store.DecrementTokens(ctx, "spender")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	got, err := store.GetUser(ctx, "spender")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Tokens)
}

func TestUserStoreDecrementTokensMissingUser(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())

	_, err := store.DecrementTokens(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRecordNotFound))

	// UPDATE must not have created the record
	_, err = store.GetUser(context.Background(), "ghost")
	assert.True(t, errors.Is(err, models.ErrRecordNotFound))
}

func TestUserStoreDecrementTokensConcurrent(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("busy", 10)))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.DecrementTokens(ctx, "busy")
		}()
	}
	wg.Wait()

	got, err := store.GetUser(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Tokens, "every decrement must be applied exactly once")
}

func TestUserStoreSetHarshnessLevel(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("picky", 5)))

	updated, err := store.SetHarshnessLevel(ctx, "picky", models.HarshnessInfernoMode)
	require.NoError(t, err)
	assert.Equal(t, models.HarshnessInfernoMode, updated.HarshnessLevel)
	assert.Equal(t, 5, updated.Tokens, "tokens untouched by settings write")

	// Idempotent
	_, err = store.SetHarshnessLevel(ctx, "picky", models.HarshnessInfernoMode)
	require.NoError(t, err)

	got, err := store.GetUser(ctx, "picky")
	require.NoError(t, err)
	assert.Equal(t, models.HarshnessInfernoMode, got.HarshnessLevel)
}

func TestUserStoreSetHarshnessLevelRejectsUnknown(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("strict", 5)))

	_, err := store.SetHarshnessLevel(ctx, "strict", models.HarshnessLevel("Nuclear"))
	require.Error(t, err)

	got, err := store.GetUser(ctx, "strict")
	require.NoError(t, err)
	assert.Equal(t, models.HarshnessStandardSnark, got.HarshnessLevel)
}

func TestUserStoreSetHarshnessLevelMissingUser(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db, testLogger())

	_, err := store.SetHarshnessLevel(context.Background(), "ghost", models.HarshnessGentleTease)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRecordNotFound))
}
