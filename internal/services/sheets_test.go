package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

func TestSheetNameFor(t *testing.T) {
	assert.Equal(t, "TK", sheetNameFor("intelligent-tk"))
	assert.Equal(t, "TPK", sheetNameFor("intelligent-tpk"))
	assert.Equal(t, "TCK", sheetNameFor("intelligent-tck"))
	assert.Equal(t, "TPACK", sheetNameFor("intelligent-tpack"))
	assert.Equal(t, "Ethical Knowledge", sheetNameFor("ethical-knowledge"))
	// Unknown ids fall back to the raw id so new surveys still export.
	assert.Equal(t, "some-new-survey", sheetNameFor("some-new-survey"))
}

func TestTruncateLabelCountsRunes(t *testing.T) {
	thai := strings.Repeat("ท่านสามารถใช้เทคโนโลยี", 5)
	require.Greater(t, utf8.RuneCountInString(thai), 50)

	truncated := truncateLabel(thai, 50)
	assert.True(t, utf8.ValidString(truncated))
	assert.Equal(t, 50, utf8.RuneCountInString(truncated))
	assert.Equal(t, string([]rune(thai)[:50]), truncated)

	// Short labels pass through untouched even when they exceed 50 bytes.
	short := "ท่านสามารถใช้เทคโนโลยี"
	require.Greater(t, len(short), 50)
	assert.Equal(t, short, truncateLabel(short, 50))
}

func TestAnswerValuesSortsNumerically(t *testing.T) {
	response := &types.SurveyResponse{
		Answers: datatypes.JSONMap{
			"question_10": float64(1),
			"question_2":  float64(2),
			"question_1":  "free text",
		},
	}

	values := answerValues(response)

	// Keys sort by question number, not lexicographically.
	assert.Equal(t, []interface{}{"free text", float64(2), float64(1)}, values)
}

func TestAnswerValuesNilBecomesEmptyString(t *testing.T) {
	response := &types.SurveyResponse{
		Answers: datatypes.JSONMap{"question_1": nil},
	}

	assert.Equal(t, []interface{}{""}, answerValues(response))
}
