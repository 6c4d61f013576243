package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kru-nsru/survey-portal-backend/internal/apperr"
	"github.com/kru-nsru/survey-portal-backend/internal/logger"
	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

func newAdminFixture(t *testing.T) (*types.User, *fakeUserRepo, AdminService) {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		StudentID: "64111111",
		Email:     "somchai@nsru.ac.th",
		Password:  "hashed",
		Role:      types.RoleStudent,
	}
	userRepo := newFakeUserRepo(user)
	svc := NewAdminService(nil, logger.NewNop(), userRepo, &fakeUserTokenRepo{}, newFakeResponseRepo())
	return user, userRepo, svc
}

func TestListUsersStripsPasswords(t *testing.T) {
	_, _, svc := newAdminFixture(t)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)
}

func TestAdminCreateUser(t *testing.T) {
	_, userRepo, svc := newAdminFixture(t)

	created, err := svc.CreateUser(context.Background(), &types.User{
		StudentID: "64222222",
		Email:     "somying@nsru.ac.th",
		FirstName: "Somying",
		LastName:  "Rakdee",
		Password:  "secret123",
		Role:      types.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Empty(t, created.Password)
	assert.Equal(t, types.RoleTeacher, created.Role)
	assert.Equal(t, types.UnspecifiedTH, created.Faculty)
	require.Len(t, userRepo.users, 2)
	assert.Equal(t, "64222222", userRepo.users[1].StudentID)
}

func TestAdminCreateUserDuplicateStudentID(t *testing.T) {
	_, _, svc := newAdminFixture(t)

	_, err := svc.CreateUser(context.Background(), &types.User{
		StudentID: "64111111",
		Email:     "other@nsru.ac.th",
		FirstName: "Somying",
		LastName:  "Rakdee",
		Password:  "secret123",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestUpdateUserRole(t *testing.T) {
	user, userRepo, svc := newAdminFixture(t)

	role := types.RoleTeacher
	_, err := svc.UpdateUser(context.Background(), user.ID, AdminUserUpdate{Role: &role})
	require.NoError(t, err)

	fields := userRepo.updatedFields[user.ID]
	require.NotNil(t, fields)
	assert.Equal(t, types.RoleTeacher, fields["role"])
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	user, _, svc := newAdminFixture(t)

	role := "superuser"
	_, err := svc.UpdateUser(context.Background(), user.ID, AdminUserUpdate{Role: &role})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUpdateUserNotFound(t *testing.T) {
	_, _, svc := newAdminFixture(t)

	role := types.RoleTeacher
	_, err := svc.UpdateUser(context.Background(), uuid.New(), AdminUserUpdate{Role: &role})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteResponse(t *testing.T) {
	user, _, _ := newAdminFixture(t)
	responseRepo := newFakeResponseRepo(&types.SurveyResponse{
		ID:       uuid.New(),
		UserID:   user.ID,
		SurveyID: "intelligent-tk",
	})
	svc := NewAdminService(nil, logger.NewNop(), newFakeUserRepo(user), &fakeUserTokenRepo{}, responseRepo)

	require.NoError(t, svc.DeleteResponse(context.Background(), responseRepo.responses[0].ID))
	assert.Empty(t, responseRepo.responses)
}
