package services

import (
  "context"
  "fmt"

  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/normalization"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/requestdata"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
  "github.com/kru-nsru/survey-portal-backend/internal/utils"
)

// PersonalInfoUpdate carries the profile fields a user may change about
// themselves. Nil pointers leave the stored value untouched.
type PersonalInfoUpdate struct {
  FirstName *string `json:"firstName"`
  LastName  *string `json:"lastName"`
  Phone     *string `json:"phone"`
  Faculty   *string `json:"faculty"`
  Major     *string `json:"major"`
  YearLevel *string `json:"yearLevel"`
}

type MeService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UpdatePersonalInfo(ctx context.Context, update PersonalInfoUpdate) (*types.User, error)
  ChangePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) error
}

type meService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewMeService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) MeService {
  serviceLog := log.With("service", "MeService")
  return &meService{db: db, log: serviceLog, userRepo: userRepo}
}

func (ms *meService) GetMe(ctx context.Context) (*types.User, error) {
  ms.log.Info("Starting GetMe now...")
  user, err := ms.userRepo.GetMe(ctx, nil)
  if err != nil {
    ms.log.Error("Failed to fetch current user", "error", err)
    return nil, err
  }
  user.Password = ""
  ms.log.Info("GetMe finished successfully :)", "userID", user.ID)
  return user, nil
}

func (ms *meService) UpdatePersonalInfo(ctx context.Context, update PersonalInfoUpdate) (*types.User, error) {
  ms.log.Info("Starting UpdatePersonalInfo now...")

  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    ms.log.Warn("No request data present on context, cannot update profile")
    return nil, fmt.Errorf("%w: not authenticated", apperr.ErrValidation)
  }

  current, err := ms.userRepo.GetMe(ctx, nil)
  if err != nil {
    ms.log.Error("Failed to fetch current user", "error", err)
    return nil, err
  }

  fields := map[string]interface{}{}
  if update.FirstName != nil {
    name := normalization.ParseInputString(*update.FirstName)
    if name == "" {
      ms.log.Warn("First name cannot be blanked out")
      return nil, fmt.Errorf("%w: first name cannot be empty", apperr.ErrValidation)
    }
    fields["first_name"] = name
  }
  if update.LastName != nil {
    name := normalization.ParseInputString(*update.LastName)
    if name == "" {
      ms.log.Warn("Last name cannot be blanked out")
      return nil, fmt.Errorf("%w: last name cannot be empty", apperr.ErrValidation)
    }
    fields["last_name"] = name
  }
  if update.Phone != nil {
    phone := normalization.ParsePhone(*update.Phone)
    if phone != "" && !utils.ValidPhone(phone) {
      ms.log.Warn("Phone number is malformed", "phone", phone)
      return nil, fmt.Errorf("%w: phone number is not valid", apperr.ErrValidation)
    }
    fields["phone_number"] = phone
  }
  // Demographic fields can be filled in once. After that they are fixed so
  // the analytics grouping stays stable across submissions.
  demographics := []struct {
    column  string
    label   string
    stored  string
    updated *string
  }{
    {"faculty", "faculty", current.Faculty, update.Faculty},
    {"major", "major", current.Major, update.Major},
    {"year_level", "year level", current.YearLevel, update.YearLevel},
  }
  for _, d := range demographics {
    if d.updated == nil {
      continue
    }
    value := normalization.ParseInputString(*d.updated)
    if value == "" || value == d.stored {
      continue
    }
    if d.stored != "" && d.stored != types.UnspecifiedTH {
      ms.log.Warn("Demographic field is already set and cannot be changed", "field", d.column)
      return nil, fmt.Errorf("%w: %s is already set and cannot be changed", apperr.ErrValidation, d.label)
    }
    fields[d.column] = value
  }
  if len(fields) == 0 {
    ms.log.Warn("No fields to update, returning current user")
    return ms.GetMe(ctx)
  }

  if err := ms.userRepo.UpdateFields(ctx, nil, rd.UserID, fields); err != nil {
    ms.log.Error("Failed to update personal info", "error", err)
    return nil, err
  }
  ms.log.Info("UpdatePersonalInfo finished successfully :)", "userID", rd.UserID)
  return ms.GetMe(ctx)
}

func (ms *meService) ChangePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) error {
  ms.log.Info("Starting ChangePassword now...")

  //1) Validate input
  if currentPassword == "" || newPassword == "" {
    ms.log.Warn("Current or new password is empty")
    return fmt.Errorf("%w: current and new passwords are required", apperr.ErrValidation)
  }
  if len(newPassword) < utils.MinPasswordLength {
    ms.log.Warn("New password is too short", "length", len(newPassword))
    return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, utils.MinPasswordLength)
  }
  if newPassword != confirmPassword {
    ms.log.Warn("New password and confirmation do not match")
    return fmt.Errorf("%w: passwords do not match", apperr.ErrValidation)
  }

  //2) The current password must check out before anything changes
  user, err := ms.userRepo.GetMe(ctx, nil)
  if err != nil {
    ms.log.Error("Failed to fetch current user", "error", err)
    return err
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
    ms.log.Warn("Current password is incorrect", "userID", user.ID)
    return fmt.Errorf("%w: current password is incorrect", apperr.ErrMismatch)
  }

  //3) Hash and persist
  hashed, err := utils.HashPasswordString(newPassword)
  if err != nil {
    ms.log.Error("Failed to hash new password", "error", err)
    return err
  }
  if err := ms.userRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{"password": hashed}); err != nil {
    ms.log.Error("Failed to persist new password", "error", err)
    return err
  }
  ms.log.Info("ChangePassword finished successfully :)", "userID", user.ID)
  return nil
}
