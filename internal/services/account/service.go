// Package account provisions local user records for authenticated identities.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/metrics"
	"github.com/bobmcallan/roastme/internal/models"
)

// Service implements AccountService.
type Service struct {
	users         interfaces.UserStore
	initialTokens int
	metrics       *metrics.Metrics
	logger        *common.Logger
	now           func() time.Time
}

// NewService creates an account service that grants initialTokens to new users.
func NewService(users interfaces.UserStore, initialTokens int, m *metrics.Metrics, logger *common.Logger) *Service {
	return &Service{
		users:         users,
		initialTokens: initialTokens,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// EnsureUser returns the local record for identityRef, creating it with
// default settings on first visit. The bool reports whether it was created.
func (s *Service) EnsureUser(ctx context.Context, identityRef, email string) (*models.User, bool, error) {
	if identityRef == "" {
		return nil, false, models.NewError(models.ErrUnauthorized, "Unauthorized")
	}

	user, err := s.users.GetUser(ctx, identityRef)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, models.ErrRecordNotFound) {
		s.logger.Error().Err(err).Str("identity", identityRef).Msg("Failed to load user")
		return nil, false, models.WrapError(models.ErrPersistence, "Failed to load user profile.", err)
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, models.NewError(models.ErrInvalidInput, "User email not found.")
	}

	user = models.NewUser(identityRef, email, s.initialTokens, s.now().UTC())
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Another request for the same identity may have won the insert.
		if existing, getErr := s.users.GetUser(ctx, identityRef); getErr == nil {
			s.logger.Debug().Str("identity", identityRef).Msg("User created concurrently, using existing record")
			return existing, false, nil
		}
		s.logger.Error().Err(err).Str("identity", identityRef).Msg("Failed to create user")
		return nil, false, models.WrapError(models.ErrPersistence, "Failed to create user profile.", err)
	}

	s.metrics.UserCreated()
	s.logger.Info().Str("identity", identityRef).Int("tokens", user.Tokens).Msg("User created")
	return user, true, nil
}

var _ interfaces.AccountService = (*Service)(nil)
