// Package surrealdb implements RoastMe storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// userTable holds one document per identity, keyed by identity reference.
const userTable = "roast_user"

// schema is applied at startup. SurrealDB v3 errors on querying undefined tables.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS " + userTable + " SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS " + userTable + "_email ON TABLE " + userTable + " FIELDS email UNIQUE",
}

// Manager implements interfaces.StorageManager using SurrealDB.
// The connection is opened once and shared by every request until Close.
type Manager struct {
	db        *surrealdb.DB
	logger    *common.Logger
	userStore *UserStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	m := newManager(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func newManager(db *surrealdb.DB, logger *common.Logger) *Manager {
	return &Manager{
		db:        db,
		logger:    logger,
		userStore: NewUserStore(db, logger),
	}
}

func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	for _, sql := range schema {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) UserStore() interfaces.UserStore {
	return m.userStore
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
