package repos

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/kru-nsru/survey-portal-backend/internal/apperr"
    "github.com/kru-nsru/survey-portal-backend/internal/logger"
    "github.com/kru-nsru/survey-portal-backend/internal/types"
)

type SurveyResponseRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, responses []*types.SurveyResponse) ([]*types.SurveyResponse, error)

    // READ
    GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SurveyResponse, error)
    GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.SurveyResponse, error)
    GetBySurveyIDs(ctx context.Context, tx *gorm.DB, surveyIDs []string) ([]*types.SurveyResponse, error)
    GetUnexported(ctx context.Context, tx *gorm.DB) ([]*types.SurveyResponse, error)
    ExistsByUserAndSurvey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, surveyID string) (bool, error)

    // UPDATE
    MarkExported(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error

    // FULL (HARD) DELETE
    FullDeleteByIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error
    FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type surveyResponseRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewSurveyResponseRepo(db *gorm.DB, baseLog *logger.Logger) SurveyResponseRepo {
    repoLog := baseLog.With("repo", "SurveyResponseRepo")
    return &surveyResponseRepo{db: db, log: repoLog}
}

// isDuplicateKey catches the unique-index violation on (user_id, survey_id).
// Not every gorm driver translates to gorm.ErrDuplicatedKey, so the pg error
// text is checked as well.
func isDuplicateKey(err error) bool {
    if errors.Is(err, gorm.ErrDuplicatedKey) {
        return true
    }
    return strings.Contains(err.Error(), "duplicate key value") ||
        strings.Contains(err.Error(), "SQLSTATE 23505")
}

//------------------------------------------------------------------------------
// CREATE
//------------------------------------------------------------------------------

func (srr *surveyResponseRepo) Create(ctx context.Context, tx *gorm.DB, responses []*types.SurveyResponse) ([]*types.SurveyResponse, error) {
    srr.log.Info("Starting Create SurveyResponses now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    if len(responses) == 0 {
        srr.log.Debug("No responses provided, returning empty slice")
        return []*types.SurveyResponse{}, nil
    }
    srr.log.Debug("Creating survey responses in DB", "count", len(responses))

    if err := transaction.WithContext(ctx).Create(&responses).Error; err != nil {
        if isDuplicateKey(err) {
            srr.log.Warn("Duplicate survey response rejected by unique index", "error", err)
            return nil, fmt.Errorf("%w: response already submitted", apperr.ErrConflict)
        }
        srr.log.Error("Failed to create survey responses", "error", err)
        return nil, err
    }
    srr.log.Info("Successfully created survey responses", "count", len(responses))
    return responses, nil
}

//------------------------------------------------------------------------------
// READ
//------------------------------------------------------------------------------

func (srr *surveyResponseRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SurveyResponse, error) {
    srr.log.Info("Starting GetAll for SurveyResponses now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    var results []*types.SurveyResponse
    srr.log.Info("Fetching all survey responses now...")
    if err := transaction.WithContext(ctx).
        Order("created_at DESC").
        Find(&results).Error; err != nil {
        srr.log.Error("Failed to fetch all survey responses", "error", err)
        return nil, err
    }
    srr.log.Info("Successfully fetched all survey responses", "count", len(results))
    return results, nil
}

func (srr *surveyResponseRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.SurveyResponse, error) {
    srr.log.Info("Starting GetByUserIDs for SurveyResponses now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    var results []*types.SurveyResponse
    if len(userIDs) == 0 {
        srr.log.Debug("No userIDs provided, returning empty slice")
        return results, nil
    }
    srr.log.Debug("Fetching survey responses by userIDs", "count", len(userIDs), "userIDs", userIDs)

    if err := transaction.WithContext(ctx).
        Where("user_id IN ?", userIDs).
        Find(&results).Error; err != nil {
        srr.log.Error("Failed to fetch survey responses by userIDs", "error", err)
        return nil, err
    }
    srr.log.Info("Successfully fetched survey responses by userIDs", "count", len(results))
    return results, nil
}

func (srr *surveyResponseRepo) GetBySurveyIDs(ctx context.Context, tx *gorm.DB, surveyIDs []string) ([]*types.SurveyResponse, error) {
    srr.log.Info("Starting GetBySurveyIDs for SurveyResponses now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    var results []*types.SurveyResponse
    if len(surveyIDs) == 0 {
        srr.log.Debug("No surveyIDs provided, returning empty slice")
        return results, nil
    }
    srr.log.Debug("Fetching survey responses by surveyIDs", "count", len(surveyIDs), "surveyIDs", surveyIDs)

    if err := transaction.WithContext(ctx).
        Where("survey_id IN ?", surveyIDs).
        Find(&results).Error; err != nil {
        srr.log.Error("Failed to fetch survey responses by surveyIDs", "error", err)
        return nil, err
    }
    srr.log.Info("Successfully fetched survey responses by surveyIDs", "count", len(results))
    return results, nil
}

func (srr *surveyResponseRepo) GetUnexported(ctx context.Context, tx *gorm.DB) ([]*types.SurveyResponse, error) {
    srr.log.Info("Starting GetUnexported for SurveyResponses now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    var results []*types.SurveyResponse
    srr.log.Info("Fetching unexported survey responses now...")
    if err := transaction.WithContext(ctx).
        Where("exported = ?", false).
        Order("created_at ASC").
        Find(&results).Error; err != nil {
        srr.log.Error("Failed to fetch unexported survey responses", "error", err)
        return nil, err
    }
    srr.log.Info("Successfully fetched unexported survey responses", "count", len(results))
    return results, nil
}

func (srr *surveyResponseRepo) ExistsByUserAndSurvey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, surveyID string) (bool, error) {
    srr.log.Info("Starting ExistsByUserAndSurvey now...", "userID", userID, "surveyID", surveyID)

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    var count int64
    srr.log.Info("Counting survey responses for the pair...")
    if err := transaction.WithContext(ctx).
        Model(&types.SurveyResponse{}).
        Where("user_id = ? AND survey_id = ?", userID, surveyID).
        Count(&count).Error; err != nil {
        srr.log.Error("Failed to count survey responses", "error", err)
        return false, err
    }
    exists := count > 0
    srr.log.Info("ExistsByUserAndSurvey check complete", "userID", userID, "surveyID", surveyID, "exists", exists)
    return exists, nil
}

//------------------------------------------------------------------------------
// UPDATE
//------------------------------------------------------------------------------

func (srr *surveyResponseRepo) MarkExported(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error {
    srr.log.Info("Starting MarkExported now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    if len(responseIDs) == 0 {
        srr.log.Debug("No responseIDs provided, skipping mark exported")
        return nil
    }
    srr.log.Debug("Marking survey responses as exported", "count", len(responseIDs), "responseIDs", responseIDs)

    if err := transaction.WithContext(ctx).
        Model(&types.SurveyResponse{}).
        Where("id IN (?)", responseIDs).
        Update("exported", true).Error; err != nil {
        srr.log.Error("Failed to mark survey responses as exported", "error", err)
        return err
    }
    srr.log.Info("Successfully marked survey responses as exported", "count", len(responseIDs))
    return nil
}

//------------------------------------------------------------------------------
// FULL (HARD) DELETE
//------------------------------------------------------------------------------

func (srr *surveyResponseRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error {
    srr.log.Info("Starting FullDeleteByIDs now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    if len(responseIDs) == 0 {
        srr.log.Debug("No responseIDs provided, skipping full delete")
        return nil
    }
    srr.log.Debug("Full deleting survey responses by responseIDs", "count", len(responseIDs), "responseIDs", responseIDs)

    if err := transaction.WithContext(ctx).
        Unscoped().
        Where("id IN (?)", responseIDs).
        Delete(&types.SurveyResponse{}).Error; err != nil {
        srr.log.Error("Failed to FULL delete survey responses by IDs", "error", err)
        return err
    }
    srr.log.Info("Successfully FULL deleted survey responses by IDs", "count", len(responseIDs))
    return nil
}

func (srr *surveyResponseRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
    srr.log.Info("Starting FullDeleteByUserIDs now...")

    transaction := tx
    if transaction == nil {
        transaction = srr.db
        srr.log.Debug("Transaction is nil, using srr.db")
    }

    if len(userIDs) == 0 {
        srr.log.Debug("No userIDs provided, skipping full delete")
        return nil
    }
    srr.log.Debug("Full deleting survey responses by userIDs", "count", len(userIDs), "userIDs", userIDs)

    if err := transaction.WithContext(ctx).
        Unscoped().
        Where("user_id IN (?)", userIDs).
        Delete(&types.SurveyResponse{}).Error; err != nil {
        srr.log.Error("Failed to FULL delete survey responses by userIDs", "error", err)
        return err
    }
    srr.log.Info("Successfully FULL deleted survey responses by userIDs", "count", len(userIDs))
    return nil
}
