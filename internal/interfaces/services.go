package interfaces

import (
	"context"

	"github.com/bobmcallan/roastme/internal/models"
)

// QuotaGate checks and debits the per-user token balance.
type QuotaGate interface {
	// Check returns the user's record when at least one token remains.
	Check(ctx context.Context, identityRef string) (*models.User, error)

	// Debit removes one token. Failures are logged, never returned.
	Debit(ctx context.Context, identityRef string)
}

// RoastService runs the gated generation workflow.
type RoastService interface {
	Generate(ctx context.Context, identityRef string, input models.RoastInput) (*models.Roast, error)
}

// SettingsService reads and writes the harshness preference.
type SettingsService interface {
	GetHarshness(ctx context.Context, identityRef string) (models.HarshnessLevel, error)
	SaveHarshness(ctx context.Context, identityRef, level string) error
}

// AccountService provisions local user records on first visit.
type AccountService interface {
	EnsureUser(ctx context.Context, identityRef, email string) (*models.User, bool, error)
}
