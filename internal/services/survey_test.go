package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kru-nsru/survey-portal-backend/internal/apperr"
	"github.com/kru-nsru/survey-portal-backend/internal/logger"
	"github.com/kru-nsru/survey-portal-backend/internal/surveys"
	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

func writeSurveyFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestSurveyStore(t *testing.T) *surveys.Store {
	t.Helper()
	dir := t.TempDir()
	writeSurveyFile(t, dir, "intelligent-tk.json", `{
		"id": "intelligent-tk",
		"title": "TK (เทคโนโลยี)",
		"questions": [
			{"id": 1, "question": "q one", "type": "rating", "category": "TK"},
			{"id": 2, "question": "q two", "type": "rating", "category": "TK"},
			{"id": 3, "question": "comments", "type": "text", "category": "TK"}
		]
	}`)
	store, err := surveys.NewStore(logger.NewNop(), dir)
	require.NoError(t, err)
	return store
}

func newSurveyFixture(t *testing.T) (*types.User, *fakeResponseRepo, SurveyService) {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		StudentID: "64111111",
		Email:     "somchai@nsru.ac.th",
		Faculty:   "ครุศาสตร์",
		Major:     "คอมพิวเตอร์ศึกษา",
		YearLevel: "3",
	}
	userRepo := newFakeUserRepo(user)
	responseRepo := newFakeResponseRepo()
	svc := NewSurveyService(nil, logger.NewNop(), newTestSurveyStore(t), userRepo, responseRepo, nil, nil)
	return user, responseRepo, svc
}

func TestSubmitRecordsResponseWithSnapshot(t *testing.T) {
	user, responseRepo, svc := newSurveyFixture(t)

	response, err := svc.Submit(context.Background(), user.ID, "intelligent-tk", map[string]interface{}{
		"question_1": float64(4),
		"question_2": float64(5),
		"question_3": "ข้อเสนอแนะ",
	})
	require.NoError(t, err)
	require.NotNil(t, response)

	assert.Equal(t, user.ID, response.UserID)
	assert.Equal(t, "intelligent-tk", response.SurveyID)
	assert.Equal(t, "ครุศาสตร์", response.Faculty)
	assert.Equal(t, "คอมพิวเตอร์ศึกษา", response.Major)
	assert.Equal(t, "3", response.YearLevel)
	assert.False(t, response.Exported)
	assert.Len(t, responseRepo.responses, 1)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	user, _, svc := newSurveyFixture(t)
	ctx := context.Background()
	answers := map[string]interface{}{
		"question_1": float64(3),
		"question_2": float64(3),
	}

	_, err := svc.Submit(ctx, user.ID, "intelligent-tk", answers)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, user.ID, "intelligent-tk", answers)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestSubmitUnknownSurvey(t *testing.T) {
	user, _, svc := newSurveyFixture(t)

	_, err := svc.Submit(context.Background(), user.ID, "no-such-survey", map[string]interface{}{
		"question_1": float64(3),
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSubmitValidatesRatings(t *testing.T) {
	user, _, svc := newSurveyFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		answers map[string]interface{}
	}{
		{"missing rating", map[string]interface{}{"question_1": float64(3)}},
		{"rating out of range", map[string]interface{}{"question_1": float64(3), "question_2": float64(6)}},
		{"rating not numeric", map[string]interface{}{"question_1": float64(3), "question_2": "five"}},
		{"no answers", map[string]interface{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, user.ID, "intelligent-tk", tt.answers)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}
}

func TestSubmitUnknownUser(t *testing.T) {
	_, _, svc := newSurveyFixture(t)

	_, err := svc.Submit(context.Background(), uuid.New(), "intelligent-tk", map[string]interface{}{
		"question_1": float64(3),
		"question_2": float64(3),
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
