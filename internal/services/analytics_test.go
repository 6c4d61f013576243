package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"

	"github.com/kru-nsru/survey-portal-backend/internal/logger"
	"github.com/kru-nsru/survey-portal-backend/internal/surveys"
	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

func newAnalyticsStore(t *testing.T) *surveys.Store {
	t.Helper()
	dir := t.TempDir()
	writeSurveyFile(t, dir, "intelligent-tk.json", `{
		"id": "intelligent-tk",
		"title": "TK (เทคโนโลยี)",
		"questions": [
			{"id": 1, "question": "tk one", "type": "rating", "category": "TK"},
			{"id": 2, "question": "tk two", "type": "rating", "category": "TK"}
		]
	}`)
	writeSurveyFile(t, dir, "ethical-knowledge.json", `{
		"id": "ethical-knowledge",
		"title": "จริยธรรม",
		"questions": [
			{"id": 1, "question": "ethics one", "type": "rating", "category": "Ethics"},
			{"id": 2, "question": "ethics comments", "type": "text", "category": "Ethics"}
		]
	}`)
	store, err := surveys.NewStore(logger.NewNop(), dir)
	require.NoError(t, err)
	return store
}

func ratingResponse(userID uuid.UUID, surveyID string, ratings map[string]float64) *types.SurveyResponse {
	answers := datatypes.JSONMap{}
	for k, v := range ratings {
		answers[k] = v
	}
	return &types.SurveyResponse{
		ID:       uuid.New(),
		UserID:   userID,
		SurveyID: surveyID,
		Answers:  answers,
	}
}

func TestComputeAnalyticsRadarAndMeta(t *testing.T) {
	alice := &types.User{ID: uuid.New(), Faculty: "ครุศาสตร์", YearLevel: "3"}
	bob := &types.User{ID: uuid.New(), Faculty: "วิทยาศาสตร์", YearLevel: "4"}
	userRepo := newFakeUserRepo(alice, bob)
	responseRepo := newFakeResponseRepo(
		ratingResponse(alice.ID, "intelligent-tk", map[string]float64{"question_1": 4, "question_2": 5}),
		ratingResponse(bob.ID, "intelligent-tk", map[string]float64{"question_1": 3, "question_2": 4}),
	)
	svc := NewAnalyticsService(nil, logger.NewNop(), newAnalyticsStore(t), userRepo, responseRepo)

	analytics, err := svc.ComputeAnalytics(context.Background())
	require.NoError(t, err)

	require.Len(t, analytics.RadarChart.Labels, 5)
	require.Len(t, analytics.RadarChart.Scores, 5)
	assert.Equal(t, 5, analytics.RadarChart.MaxScore)
	assert.Equal(t, "TK (เทคโนโลยี)", analytics.RadarChart.Labels[0])
	// (4+5+3+4) / 4
	assert.Equal(t, "4.00", analytics.RadarChart.Scores[0])
	// Dimensions with no responses report "0", not "0.00".
	assert.Equal(t, "0", analytics.RadarChart.Scores[4])

	assert.Equal(t, 2, analytics.Meta.TotalResponses)
	assert.Equal(t, 2, analytics.Meta.TotalUsers)
	assert.NotEmpty(t, analytics.Meta.LastUpdated)

	assert.False(t, analytics.TrendData.Enabled)
	assert.Equal(t, "ยังไม่มีข้อมูล Pre-test/Post-test", analytics.TrendData.Message)
}

func TestComputeAnalyticsSkillRankings(t *testing.T) {
	alice := &types.User{ID: uuid.New(), Faculty: "ครุศาสตร์", YearLevel: "3"}
	userRepo := newFakeUserRepo(alice)
	responseRepo := newFakeResponseRepo(
		ratingResponse(alice.ID, "intelligent-tk", map[string]float64{"question_1": 5, "question_2": 2}),
		ratingResponse(alice.ID, "ethical-knowledge", map[string]float64{"question_1": 3}),
	)
	svc := NewAnalyticsService(nil, logger.NewNop(), newAnalyticsStore(t), userRepo, responseRepo)

	analytics, err := svc.ComputeAnalytics(context.Background())
	require.NoError(t, err)

	// Three rating questions have data; text questions never rank.
	require.Len(t, analytics.TopSkills, 3)
	require.Len(t, analytics.BottomSkills, 3)

	assert.Equal(t, "tk one", analytics.TopSkills[0].Question)
	assert.Equal(t, "5.00", analytics.TopSkills[0].Mean)
	assert.Equal(t, "TK (เทคโนโลยี)", analytics.TopSkills[0].SurveyName)

	// Bottom list is ordered worst-first.
	assert.Equal(t, "tk two", analytics.BottomSkills[0].Question)
	assert.Equal(t, "2.00", analytics.BottomSkills[0].Mean)
}

func TestComputeAnalyticsComparativeGroups(t *testing.T) {
	alice := &types.User{ID: uuid.New(), Faculty: "ครุศาสตร์", YearLevel: "3"}
	noGroup := &types.User{ID: uuid.New()}
	userRepo := newFakeUserRepo(alice, noGroup)
	responseRepo := newFakeResponseRepo(
		ratingResponse(alice.ID, "intelligent-tk", map[string]float64{"question_1": 4, "question_2": 4}),
		ratingResponse(noGroup.ID, "intelligent-tk", map[string]float64{"question_1": 2, "question_2": 2}),
		// A response whose user no longer exists is skipped silently.
		ratingResponse(uuid.New(), "intelligent-tk", map[string]float64{"question_1": 5}),
	)
	svc := NewAnalyticsService(nil, logger.NewNop(), newAnalyticsStore(t), userRepo, responseRepo)

	analytics, err := svc.ComputeAnalytics(context.Background())
	require.NoError(t, err)

	require.Contains(t, analytics.Comparative.ByFaculty, "ครุศาสตร์")
	assert.Equal(t, "4.00", analytics.Comparative.ByFaculty["ครุศาสตร์"].Mean)
	assert.Equal(t, 1, analytics.Comparative.ByFaculty["ครุศาสตร์"].Responses)

	require.Contains(t, analytics.Comparative.ByFaculty, "ไม่ระบุ")
	assert.Equal(t, "2.00", analytics.Comparative.ByFaculty["ไม่ระบุ"].Mean)

	require.Contains(t, analytics.Comparative.ByYear, "3")
	require.Contains(t, analytics.Comparative.ByYear, "ไม่ระบุ")
	assert.Len(t, analytics.Comparative.ByFaculty, 2)
}

func TestComputeAnalyticsGaugeLevels(t *testing.T) {
	tests := []struct {
		name   string
		rating float64
		level  string
		color  string
	}{
		{"novice", 2.0, "Novice", "#dc3545"},
		{"novice at 2.50", 2.5, "Novice", "#dc3545"},
		{"intermediate from 2.51", 2.51, "Intermediate", "#ffc107"},
		{"intermediate", 3.0, "Intermediate", "#ffc107"},
		{"intermediate at 3.50", 3.5, "Intermediate", "#ffc107"},
		{"advanced from 3.51", 3.51, "Advanced", "#28a745"},
		{"advanced", 4.0, "Advanced", "#28a745"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := &types.User{ID: uuid.New(), Faculty: "ครุศาสตร์", YearLevel: "3"}
			userRepo := newFakeUserRepo(alice)
			responseRepo := newFakeResponseRepo(
				ratingResponse(alice.ID, "intelligent-tk", map[string]float64{
					"question_1": tt.rating,
					"question_2": tt.rating,
				}),
			)
			svc := NewAnalyticsService(nil, logger.NewNop(), newAnalyticsStore(t), userRepo, responseRepo)

			analytics, err := svc.ComputeAnalytics(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.level, analytics.PerformanceGauge.Level)
			assert.Equal(t, tt.color, analytics.PerformanceGauge.Color)
			assert.Equal(t, fmt.Sprintf("%.2f", tt.rating), analytics.PerformanceGauge.Score)
			assert.Equal(t, 5, analytics.PerformanceGauge.MaxScore)
		})
	}
}

func TestComputeAnalyticsEmpty(t *testing.T) {
	svc := NewAnalyticsService(nil, logger.NewNop(), newAnalyticsStore(t), newFakeUserRepo(), newFakeResponseRepo())

	analytics, err := svc.ComputeAnalytics(context.Background())
	require.NoError(t, err)

	for _, score := range analytics.RadarChart.Scores {
		assert.Equal(t, "0", score)
	}
	assert.Empty(t, analytics.TopSkills)
	assert.Empty(t, analytics.BottomSkills)
	assert.Equal(t, "Novice", analytics.PerformanceGauge.Level)
	assert.Equal(t, 0, analytics.Meta.TotalResponses)
}
