package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

// SurveyResponse is one user's answers to one survey. The composite unique
// index makes the one-response-per-survey rule hold even under concurrent
// submits.
type SurveyResponse struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID              uuid.UUID                 `gorm:"not null;uniqueIndex:idx_survey_response_user_survey" json:"userId"`
  User                *User                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  SurveyID            string                    `gorm:"not null;uniqueIndex:idx_survey_response_user_survey;column:survey_id" json:"surveyId"`

  Answers             datatypes.JSONMap         `gorm:"column:answers" json:"answers"`

  // Demographics at submit time, so regrouping a user later does not move
  // their historical responses.
  Faculty             string                    `gorm:"column:faculty" json:"faculty"`
  Major               string                    `gorm:"column:major" json:"major"`
  YearLevel           string                    `gorm:"column:year_level" json:"yearLevel"`

  Exported            bool                      `gorm:"not null;default:false;column:exported" json:"exported"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updatedAt"`
}

func (SurveyResponse) TableName() string {
  return "survey_response"
}
