package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kru-nsru/survey-portal-backend/internal/logger"
	"github.com/kru-nsru/survey-portal-backend/internal/requestdata"
	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

func newAuthFixture(t *testing.T) (*authService, *fakeUserTokenRepo, *types.User) {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		StudentID: "64111111",
		Email:     "somchai@nsru.ac.th",
		Role:      types.RoleStudent,
	}
	tokenRepo := &fakeUserTokenRepo{}
	svc := NewAuthService(nil, logger.NewNop(), newFakeUserRepo(user), tokenRepo, nil, "test-secret", time.Hour, 24*time.Hour, "nsru.ac.th")
	return svc.(*authService), tokenRepo, user
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, tokenRepo, user := newAuthFixture(t)

	accessToken, err := svc.generateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)

	tokenRepo.tokens = append(tokenRepo.tokens, &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: "refresh-abc",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	})

	ctx, err := svc.SetContextFromToken(context.Background(), accessToken)
	require.NoError(t, err)

	rd := requestdata.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, user.ID, rd.UserID)
	assert.Equal(t, "64111111", rd.StudentID)
	assert.Equal(t, types.RoleStudent, rd.Role)
	assert.Equal(t, accessToken, rd.TokenString)
	assert.Equal(t, "refresh-abc", rd.RefreshToken)
}

func TestSetContextFromTokenRejectsWrongSecret(t *testing.T) {
	svc, _, user := newAuthFixture(t)

	otherSvc := NewAuthService(nil, logger.NewNop(), newFakeUserRepo(user), &fakeUserTokenRepo{}, nil, "other-secret", time.Hour, 24*time.Hour, "nsru.ac.th").(*authService)
	accessToken, err := otherSvc.generateAccessToken(user)
	require.NoError(t, err)

	_, err = svc.SetContextFromToken(context.Background(), accessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestSetContextFromTokenRequiresSession(t *testing.T) {
	svc, _, user := newAuthFixture(t)

	// A structurally valid JWT whose session row was already removed (logout)
	// must not authenticate.
	accessToken, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	_, err = svc.SetContextFromToken(context.Background(), accessToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session found")
}

func TestGetAccessTTL(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	assert.Equal(t, time.Hour, svc.GetAccessTTL())
}
