package seed

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
  "github.com/kru-nsru/survey-portal-backend/internal/utils"
)

// SeedAdmin makes sure a default administrator account exists. It reads the
// SEED_ADMIN_* environment variables and does nothing when an account with
// the configured student id is already present.
func SeedAdmin(db *gorm.DB, userRepo repos.UserRepo, log *logger.Logger) error {
  seedLog := log.With("seed", "Admin")
  ctx := context.Background()

  studentID := utils.GetEnv("SEED_ADMIN_STUDENT_ID", "admin", seedLog)
  email := utils.GetEnv("SEED_ADMIN_EMAIL", "admin@nsru.ac.th", seedLog)
  password := utils.GetEnv("SEED_ADMIN_PASSWORD", "", seedLog)
  if password == "" {
    seedLog.Warn("SEED_ADMIN_PASSWORD not set, skipping admin seed")
    return nil
  }

  exists, err := userRepo.StudentIDExists(ctx, nil, studentID)
  if err != nil {
    seedLog.Error("Failed to check for existing admin", "error", err)
    return err
  }
  if exists {
    seedLog.Debug("Admin account already present, nothing to seed", "studentID", studentID)
    return nil
  }

  hashed, err := utils.HashPasswordString(password)
  if err != nil {
    seedLog.Error("Failed to hash seed admin password", "error", err)
    return err
  }
  admin := &types.User{
    ID:        uuid.New(),
    StudentID: studentID,
    Email:     email,
    Password:  hashed,
    FirstName: "Portal",
    LastName:  "Admin",
    Role:      types.RoleAdmin,
    Faculty:   types.UnspecifiedTH,
    Major:     types.UnspecifiedTH,
    YearLevel: types.UnspecifiedTH,
  }
  if _, err := userRepo.Create(ctx, nil, []*types.User{admin}); err != nil {
    seedLog.Error("Failed to create seed admin", "error", err)
    return err
  }
  seedLog.Info("Seed admin created successfully :)", "studentID", studentID)
  return nil
}
