package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/testhelpers"
)

func TestPlannerProfile(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	profiles := service.NewProfileService(db)
	owner := uuid.New()
	testhelpers.CreateProfile(t, db, owner, map[string]interface{}{
		"diet":      "vegetarian",
		"allergies": []string{"peanuts"},
	})

	profile, err := profiles.PlannerProfile(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner, profile.OwnerID)
	assert.Equal(t, "Test User", profile.FullName)
	assert.Equal(t, "vegetarian", profile.Preferences["diet"])
	assert.Equal(t, []interface{}{"peanuts"}, profile.Preferences["allergies"])
}

func TestPlannerProfileMissing(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	profiles := service.NewProfileService(db)

	_, err := profiles.PlannerProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	inactive := uuid.New()
	testhelpers.CreateProfile(t, db, inactive, nil)
	require.NoError(t, db.Model(&models.UserProfile{}).Where("id = ?", inactive).Update("is_active", false).Error)

	_, err = profiles.PlannerProfile(context.Background(), inactive)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPlannerProfileEmptyMetadata(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	profiles := service.NewProfileService(db)
	owner := uuid.New()
	testhelpers.CreateProfile(t, db, owner, nil)

	profile, err := profiles.PlannerProfile(context.Background(), owner)
	require.NoError(t, err)
	assert.NotNil(t, profile.Preferences)
	assert.Empty(t, profile.Preferences)
}
