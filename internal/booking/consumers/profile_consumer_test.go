package consumers_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()
	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		panic(err)
	}
	code := m.Run()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

func TestProfileConsumer_UpsertOnUserCreated(t *testing.T) {
	ctx := context.Background()
	profileRepo := repository.NewProfileRepository(suite.DB)

	userID := uuid.New().String()
	err := profileRepo.Upsert(ctx, &repository.Profile{
		ID:          userID,
		Email:       "mara@staffops.io",
		DisplayName: "Mara Lindt",
		Role:        "staff",
	})
	require.NoError(t, err)

	profile, err := profileRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Mara Lindt", profile.DisplayName)
	assert.Equal(t, "staff", profile.Role)
}

func TestProfileConsumer_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	profileRepo := repository.NewProfileRepository(suite.DB)

	userID := uuid.New().String()
	first := &repository.Profile{
		ID:          userID,
		Email:       "jon@staffops.io",
		DisplayName: "Jon Elm",
		Role:        "staff",
	}
	require.NoError(t, profileRepo.Upsert(ctx, first))

	// Replayed event with newer data converges on the latest values
	updated := &repository.Profile{
		ID:          userID,
		Email:       "jon.elm@staffops.io",
		DisplayName: "Jon Elm",
		Role:        "leader",
	}
	require.NoError(t, profileRepo.Upsert(ctx, updated))

	profile, err := profileRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "jon.elm@staffops.io", profile.Email)
	assert.Equal(t, "leader", profile.Role)
}

func TestProfileConsumer_DeleteOnUserDeleted(t *testing.T) {
	ctx := context.Background()
	profileRepo := repository.NewProfileRepository(suite.DB)

	userID := uuid.New().String()
	require.NoError(t, profileRepo.Upsert(ctx, &repository.Profile{
		ID:          userID,
		Email:       "gone@staffops.io",
		DisplayName: "Gone Soon",
		Role:        "staff",
	}))

	require.NoError(t, profileRepo.Delete(ctx, userID))

	_, err := profileRepo.GetByID(ctx, userID)
	require.Error(t, err)

	// Deleting again is a no-op, so replayed delete events are safe
	assert.NoError(t, profileRepo.Delete(ctx, userID))
}
