// Package quota gates roast generation on the per-user token balance.
package quota

import (
	"context"
	"errors"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/metrics"
	"github.com/bobmcallan/roastme/internal/models"
)

// Gate checks the balance before generation and debits it afterwards.
//
// Check and Debit are separate operations with no lock or transaction
// between them: concurrent requests for one identity can all pass Check
// before any Debit lands, over-spending by up to (requests - 1) tokens.
type Gate struct {
	users   interfaces.UserStore
	metrics *metrics.Metrics
	logger  *common.Logger
}

// NewGate creates a quota gate. m may be nil.
func NewGate(users interfaces.UserStore, m *metrics.Metrics, logger *common.Logger) *Gate {
	return &Gate{
		users:   users,
		metrics: m,
		logger:  logger,
	}
}

// Check returns the user's record when at least one token remains.
func (g *Gate) Check(ctx context.Context, identityRef string) (*models.User, error) {
	user, err := g.users.GetUser(ctx, identityRef)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			g.logger.Error().Str("identity", identityRef).Msg("User authenticated but not found in database")
			return nil, models.NewError(models.ErrNotFound, "User profile not found in database.")
		}
		g.logger.Error().Err(err).Str("identity", identityRef).Msg("Failed to fetch user for token check")
		return nil, models.WrapError(models.ErrPersistence, "Error checking user tokens.", err)
	}

	if user.Tokens <= 0 {
		g.logger.Info().Str("identity", identityRef).Int("tokens", user.Tokens).Msg("Roast attempted with no tokens")
		return nil, models.NewError(models.ErrQuotaExhausted, "You're out of roast tokens! Please purchase more.")
	}

	g.logger.Debug().Str("identity", identityRef).Int("tokens", user.Tokens).Msg("Token check passed")
	return user, nil
}

// Debit removes one token. The roast has already been produced, so a failed
// debit is logged and counted but never surfaced: the user keeps the roast.
// The write runs detached from ctx cancellation so a disconnecting client
// cannot skip it.
func (g *Gate) Debit(ctx context.Context, identityRef string) {
	ctx = context.WithoutCancel(ctx)

	remaining, err := g.users.DecrementTokens(ctx, identityRef)
	switch {
	case err == nil:
		g.metrics.TokenDebit("ok")
		g.logger.Info().Str("identity", identityRef).Int("tokens", remaining).Msg("Token decremented")
	case errors.Is(err, models.ErrRecordNotFound):
		g.metrics.TokenDebit("missing")
		g.logger.Error().Str("identity", identityRef).Msg("Failed to decrement token: user record missing after successful roast")
	default:
		g.metrics.TokenDebit("error")
		g.logger.Error().Err(err).Str("identity", identityRef).Msg("Failed to decrement token after successful roast")
	}
}

var _ interfaces.QuotaGate = (*Gate)(nil)
