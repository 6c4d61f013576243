package repos

import (
    "context"
    "fmt"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/kru-nsru/survey-portal-backend/internal/logger"
    "github.com/kru-nsru/survey-portal-backend/internal/requestdata"
    "github.com/kru-nsru/survey-portal-backend/internal/types"
)

type UserRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)

    // READ
    GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
    GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*types.User, error)
    GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error)
    GetAll(ctx context.Context, tx *gorm.DB) ([]*types.User, error)
    EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error)
    StudentIDExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error)

    // UPDATE
    UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error
    UpdatePasswordByEmail(ctx context.Context, tx *gorm.DB, userEmail, hashedPassword string) error

    // DELETE
    SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
    FullDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error

    // MISC
    GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error)
}

type userRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
    // Add a repo field for consistent logs
    repoLog := baseLog.With("repo", "UserRepo")
    return &userRepo{db: db, log: repoLog}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
    ur.log.Info("Starting Create Users now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db instead")
    }

    if len(users) == 0 {
        ur.log.Debug("Users array is empty, returning empty slice", "count", 0)
        return []*types.User{}, nil
    }
    ur.log.Debug("Users array has items", "count", len(users))

    ur.log.Info("Creating users now in DB...")
    if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
        ur.log.Error("Failed to create users", "error", err)
        return nil, err
    }
    ur.log.Info("Successfully created users", "count", len(users))
    return users, nil
}

// ----------------------------------------------------------------
// READ
// ----------------------------------------------------------------

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
    ur.log.Info("Starting GetByIDs for Users now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    var results []*types.User
    if len(userIDs) == 0 {
        ur.log.Debug("No userIDs provided, returning empty slice")
        return results, nil
    }
    ur.log.Debug("UserIDs provided", "count", len(userIDs), "userIDs", userIDs)

    ur.log.Info("Fetching users by userIDs now...")
    if err := transaction.WithContext(ctx).
        Where("id IN ?", userIDs).
        Find(&results).Error; err != nil {
        ur.log.Error("Failed to fetch users by IDs", "error", err)
        return nil, err
    }
    ur.log.Info("Successfully fetched users by IDs", "count", len(results))
    return results, nil
}

func (ur *userRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*types.User, error) {
    ur.log.Info("Starting GetByStudentIDs for Users now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    var results []*types.User
    if len(studentIDs) == 0 {
        ur.log.Debug("No studentIDs provided, returning empty slice")
        return results, nil
    }
    ur.log.Debug("StudentIDs provided", "count", len(studentIDs), "studentIDs", studentIDs)

    ur.log.Info("Fetching users by studentIDs now...")
    if err := transaction.WithContext(ctx).
        Where("student_id IN ?", studentIDs).
        Find(&results).Error; err != nil {
        ur.log.Error("Failed to fetch users by studentIDs", "error", err)
        return nil, err
    }
    ur.log.Info("Successfully fetched users by studentIDs", "count", len(results))
    return results, nil
}

func (ur *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
    ur.log.Info("Starting GetByEmails for Users now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    var results []*types.User
    if len(userEmails) == 0 {
        ur.log.Debug("No userEmails provided, returning empty slice")
        return results, nil
    }
    ur.log.Debug("UserEmails provided", "count", len(userEmails), "emails", userEmails)

    ur.log.Info("Fetching users by Emails now...")
    if err := transaction.WithContext(ctx).
        Where("email IN ?", userEmails).
        Find(&results).Error; err != nil {
        ur.log.Error("Failed to fetch users by emails", "error", err)
        return nil, err
    }
    ur.log.Info("Successfully fetched users by emails", "count", len(results))
    return results, nil
}

func (ur *userRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
    ur.log.Info("Starting GetAll for Users now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    var results []*types.User
    ur.log.Info("Fetching all users now...")
    if err := transaction.WithContext(ctx).
        Order("created_at DESC").
        Find(&results).Error; err != nil {
        ur.log.Error("Failed to fetch all users", "error", err)
        return nil, err
    }
    ur.log.Info("Successfully fetched all users", "count", len(results))
    return results, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
    ur.log.Info("Starting EmailExists now...", "email", userEmail)

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    var count int64
    ur.log.Info("Counting users with the provided email...")
    if err := transaction.WithContext(ctx).
        Model(&types.User{}).
        Where("email = ?", userEmail).
        Count(&count).Error; err != nil {
        ur.log.Error("Failed to count users by email", "error", err)
        return false, err
    }
    exists := count > 0
    ur.log.Info("EmailExists check complete", "email", userEmail, "exists", exists)
    return exists, nil
}

func (ur *userRepo) StudentIDExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error) {
    ur.log.Info("Starting StudentIDExists now...", "studentID", studentID)

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    var count int64
    ur.log.Info("Counting users with the provided studentID...")
    if err := transaction.WithContext(ctx).
        Model(&types.User{}).
        Where("student_id = ?", studentID).
        Count(&count).Error; err != nil {
        ur.log.Error("Failed to count users by studentID", "error", err)
        return false, err
    }
    exists := count > 0
    ur.log.Info("StudentIDExists check complete", "studentID", studentID, "exists", exists)
    return exists, nil
}

// ----------------------------------------------------------------
// UPDATE
// ----------------------------------------------------------------

func (ur *userRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error {
    ur.log.Info("Starting UpdateFields now...", "userID", userID)

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    if len(fields) == 0 {
        ur.log.Debug("No fields provided, skipping update")
        return nil
    }
    ur.log.Debug("Fields provided for update", "count", len(fields))

    ur.log.Info("Updating user fields now...")
    result := transaction.WithContext(ctx).
        Model(&types.User{}).
        Where("id = ?", userID).
        Updates(fields)
    if result.Error != nil {
        ur.log.Error("Failed to update user fields", "error", result.Error, "userID", userID)
        return result.Error
    }
    if result.RowsAffected == 0 {
        ur.log.Warn("No user row matched for update", "userID", userID)
        return fmt.Errorf("no user found with id '%s'", userID)
    }
    ur.log.Info("Successfully updated user fields", "userID", userID)
    return nil
}

func (ur *userRepo) UpdatePasswordByEmail(ctx context.Context, tx *gorm.DB, userEmail, hashedPassword string) error {
    ur.log.Info("Starting UpdatePasswordByEmail now...", "email", userEmail)

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    ur.log.Info("Updating user password now...")
    result := transaction.WithContext(ctx).
        Model(&types.User{}).
        Where("email = ?", userEmail).
        Update("password", hashedPassword)
    if result.Error != nil {
        ur.log.Error("Failed to update user password", "error", result.Error, "email", userEmail)
        return result.Error
    }
    if result.RowsAffected == 0 {
        ur.log.Warn("No user row matched for password update", "email", userEmail)
        return fmt.Errorf("no user found with email '%s'", userEmail)
    }
    ur.log.Info("Successfully updated user password", "email", userEmail)
    return nil
}

// ----------------------------------------------------------------
// DELETE
// ----------------------------------------------------------------

func (ur *userRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
    ur.log.Info("Starting SoftDeleteByIDs now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    if len(userIDs) == 0 {
        ur.log.Debug("No userIDs provided, skipping soft delete")
        return nil
    }
    ur.log.Debug("Soft deleting by userIDs", "count", len(userIDs), "userIDs", userIDs)

    ur.log.Info("Performing soft delete by userIDs now...")
    if err := transaction.WithContext(ctx).
        Where("id IN (?)", userIDs).
        Delete(&types.User{}).Error; err != nil {
        ur.log.Error("Failed to soft delete users by IDs", "error", err)
        return err
    }
    ur.log.Info("Successfully soft deleted users by IDs", "count", len(userIDs))
    return nil
}

func (ur *userRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
    ur.log.Info("Starting FullDeleteByIDs now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    if len(userIDs) == 0 {
        ur.log.Debug("No userIDs provided, skipping full delete")
        return nil
    }
    ur.log.Debug("Full deleting by userIDs", "count", len(userIDs), "userIDs", userIDs)

    ur.log.Info("Performing FULL (hard) delete by userIDs now...")
    if err := transaction.WithContext(ctx).
        Unscoped().
        Where("id IN (?)", userIDs).
        Delete(&types.User{}).Error; err != nil {
        ur.log.Error("Failed to FULL delete users by IDs", "error", err)
        return err
    }
    ur.log.Info("Successfully FULL deleted users by IDs", "count", len(userIDs))
    return nil
}

// ----------------------------------------------------------------
// MISC - GET ME
// ----------------------------------------------------------------

func (ur *userRepo) GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error) {
    ur.log.Info("Starting GetMe now...")

    transaction := tx
    if transaction == nil {
        transaction = ur.db
        ur.log.Debug("Transaction is nil, using ur.db")
    }

    rd := requestdata.GetRequestData(ctx)
    if rd == nil {
        ur.log.Error("No request data in context, cannot get me!")
        return &types.User{}, fmt.Errorf("no request data found in context")
    }
    ur.log.Debug("Request data found for GetMe", "userID", rd.UserID)

    var user *types.User
    ur.log.Info("Fetching current user by rd.UserID now...")
    if err := transaction.WithContext(ctx).
        Where("id = ?", rd.UserID).
        First(&user).Error; err != nil {
        ur.log.Error("Failed to fetch current user (GetMe)", "error", err, "userID", rd.UserID)
        return user, err
    }
    ur.log.Info("Successfully fetched current user (GetMe)", "userID", rd.UserID)
    return user, nil
}
