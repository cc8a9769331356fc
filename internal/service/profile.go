package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// ProfileService reads the onboarding profile handed to the planner.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// GetProfile retrieves an active user profile
func (s *ProfileService) GetProfile(ctx context.Context, owner uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", owner, true).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile for user %s", ErrNotFound, owner)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// PlannerProfile builds the free-form planner input from the stored
// onboarding metadata. Empty metadata yields an empty preference map.
func (s *ProfileService) PlannerProfile(ctx context.Context, owner uuid.UUID) (*types.PlannerProfile, error) {
	profile, err := s.GetProfile(ctx, owner)
	if err != nil {
		return nil, err
	}

	prefs := map[string]interface{}{}
	if len(profile.Metadata) > 0 && string(profile.Metadata) != "null" {
		if err := json.Unmarshal(profile.Metadata, &prefs); err != nil {
			return nil, fmt.Errorf("%w: profile metadata for user %s is not a JSON object: %v", ErrValidation, owner, err)
		}
	}

	return &types.PlannerProfile{
		OwnerID:     profile.ID,
		FullName:    profile.FullName,
		Preferences: prefs,
	}, nil
}
