// Package settings reads and saves the per-user harshness preference.
package settings

import (
	"context"
	"errors"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/models"
)

// Service implements SettingsService
type Service struct {
	users  interfaces.UserStore
	logger *common.Logger
}

// NewService creates a settings service
func NewService(users interfaces.UserStore, logger *common.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger,
	}
}

// GetHarshness returns the stored harshness level.
func (s *Service) GetHarshness(ctx context.Context, identityRef string) (models.HarshnessLevel, error) {
	if identityRef == "" {
		return "", models.NewError(models.ErrUnauthorized, "Unauthorized")
	}

	user, err := s.users.GetUser(ctx, identityRef)
	if err != nil {
		return "", s.lookupError(err, identityRef)
	}

	return user.HarshnessLevel, nil
}

// SaveHarshness validates and persists a new level. The record must already
// exist; saving never creates one.
func (s *Service) SaveHarshness(ctx context.Context, identityRef, level string) error {
	if identityRef == "" {
		return models.NewError(models.ErrUnauthorized, "Unauthorized")
	}

	parsed, err := models.ParseHarshnessLevel(level)
	if err != nil {
		return models.WrapError(models.ErrInvalidInput, "Invalid or missing harshnessLevel value provided.", err)
	}

	if _, err := s.users.GetUser(ctx, identityRef); err != nil {
		return s.lookupError(err, identityRef)
	}

	if _, err := s.users.SetHarshnessLevel(ctx, identityRef, parsed); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return models.NewError(models.ErrNotFound, "User profile not found.")
		}
		s.logger.Error().Err(err).Str("identity", identityRef).Msg("Failed to update harshness level")
		return models.WrapError(models.ErrPersistence, "Failed to update settings in database.", err)
	}

	s.logger.Info().Str("identity", identityRef).Str("harshness", string(parsed)).Msg("Harshness level saved")
	return nil
}

func (s *Service) lookupError(err error, identityRef string) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		s.logger.Warn().Str("identity", identityRef).Msg("Settings requested for unknown user")
		return models.NewError(models.ErrNotFound, "User profile not found.")
	}
	s.logger.Error().Err(err).Str("identity", identityRef).Msg("Failed to load user settings")
	return models.WrapError(models.ErrPersistence, "Failed to load user settings.", err)
}

var _ interfaces.SettingsService = (*Service)(nil)
