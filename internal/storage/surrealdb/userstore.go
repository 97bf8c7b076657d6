package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	now    func() time.Time
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *UserStore) GetUser(ctx context.Context, identityRef string) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID(userTable, identityRef))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.IdentityRef == "" {
		return nil, fmt.Errorf("user %s: %w", identityRef, models.ErrRecordNotFound)
	}
	return user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	sql := "CREATE type::record('" + userTable + "', $id) CONTENT $user"
	vars := map[string]any{"id": user.IdentityRef, "user": user}

	if _, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// DecrementTokens is a single UPDATE so the decrement is applied server-side.
// It is not retried: a retried decrement could charge twice.
func (s *UserStore) DecrementTokens(ctx context.Context, identityRef string) (int, error) {
	sql := "UPDATE type::record('" + userTable + "', $id) SET tokens -= 1, modified_at = $now RETURN AFTER"
	vars := map[string]any{"id": identityRef, "now": s.now().UTC()}

	user, err := s.updateOne(ctx, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement tokens: %w", err)
	}
	return user.Tokens, nil
}

func (s *UserStore) SetHarshnessLevel(ctx context.Context, identityRef string, level models.HarshnessLevel) (*models.User, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("refusing to store harshness level %q", level)
	}

	sql := "UPDATE type::record('" + userTable + "', $id) SET harshness_level = $level, modified_at = $now RETURN AFTER"
	vars := map[string]any{"id": identityRef, "level": string(level), "now": s.now().UTC()}

	user, err := s.updateOne(ctx, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to set harshness level: %w", err)
	}
	return user, nil
}

// updateOne runs an UPDATE against one record id. UPDATE does not create
// missing records, so an empty result means the identity has no record.
func (s *UserStore) updateOne(ctx context.Context, sql string, vars map[string]any) (*models.User, error) {
	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("user %v: %w", vars["id"], models.ErrRecordNotFound)
	}
	user := (*results)[0].Result[0]
	return &user, nil
}

func (s *UserStore) Close() error {
	return nil
}

var _ interfaces.UserStore = (*UserStore)(nil)
