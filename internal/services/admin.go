package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/normalization"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
  "github.com/kru-nsru/survey-portal-backend/internal/utils"
)

// AdminUserUpdate carries the fields an administrator may change on any
// account. Nil pointers leave the stored value untouched.
type AdminUserUpdate struct {
  FirstName *string `json:"firstName"`
  LastName  *string `json:"lastName"`
  Role      *string `json:"role"`
  Faculty   *string `json:"faculty"`
  Major     *string `json:"major"`
  YearLevel *string `json:"yearLevel"`
}

type AdminService interface {
  ListUsers(ctx context.Context) ([]*types.User, error)
  CreateUser(ctx context.Context, user *types.User) (*types.User, error)
  UpdateUser(ctx context.Context, userID uuid.UUID, update AdminUserUpdate) (*types.User, error)
  DeleteUser(ctx context.Context, userID uuid.UUID) error
  ListResponses(ctx context.Context) ([]*types.SurveyResponse, error)
  DeleteResponse(ctx context.Context, responseID uuid.UUID) error
}

type adminService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  responseRepo  repos.SurveyResponseRepo
}

func NewAdminService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  responseRepo repos.SurveyResponseRepo,
) AdminService {
  serviceLog := log.With("service", "AdminService")
  return &adminService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    responseRepo:  responseRepo,
  }
}

func (adm *adminService) ListUsers(ctx context.Context) ([]*types.User, error) {
  adm.log.Info("Starting ListUsers now...")
  users, err := adm.userRepo.GetAll(ctx, nil)
  if err != nil {
    adm.log.Error("Failed to fetch users", "error", err)
    return nil, err
  }
  for _, u := range users {
    u.Password = ""
  }
  adm.log.Info("ListUsers finished successfully :)", "count", len(users))
  return users, nil
}

// CreateUser provisions an account on a user's behalf. The same registration
// checks apply, the policy agreement is implied for admin-created accounts.
func (adm *adminService) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
  adm.log.Info("Starting CreateUser now...")

  //1) Normalize and validate like a self-registration
  utils.NormalizeUserFields(ctx, user)
  if vErr := utils.ValidateRegistration(ctx, adm.userRepo, adm.log, user, user.Password, true); vErr != nil {
    return nil, vErr
  }

  //2) Role and demographic defaults
  if user.Role == "" {
    user.Role = types.RoleStudent
  }
  if !types.ValidRole(user.Role) {
    adm.log.Warn("Unknown role on create", "role", user.Role)
    return nil, fmt.Errorf("%w: unknown role '%s'", apperr.ErrValidation, user.Role)
  }
  if user.Faculty == "" {
    user.Faculty = types.UnspecifiedTH
  }
  if user.Major == "" {
    user.Major = types.UnspecifiedTH
  }
  if user.YearLevel == "" {
    user.YearLevel = types.UnspecifiedTH
  }

  //3) Hash and persist
  if hErr := utils.HashPassword(ctx, adm.log, user); hErr != nil {
    return nil, hErr
  }
  user.ID = uuid.New()
  created, err := adm.userRepo.Create(ctx, nil, []*types.User{user})
  if err != nil {
    adm.log.Error("Failed to create user", "error", err)
    return nil, err
  }
  if len(created) == 0 {
    return nil, fmt.Errorf("Failure to create user in DB")
  }
  created[0].Password = ""
  adm.log.Info("CreateUser finished successfully :)", "userID", created[0].ID)
  return created[0], nil
}

func (adm *adminService) UpdateUser(ctx context.Context, userID uuid.UUID, update AdminUserUpdate) (*types.User, error) {
  adm.log.Info("Starting UpdateUser now...", "userID", userID)

  users, err := adm.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    adm.log.Error("Failed to fetch user", "error", err)
    return nil, err
  }
  if len(users) == 0 {
    adm.log.Warn("User not found", "userID", userID)
    return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
  }

  fields := map[string]interface{}{}
  if update.FirstName != nil {
    name := normalization.ParseInputString(*update.FirstName)
    if name == "" {
      adm.log.Warn("First name cannot be blanked out")
      return nil, fmt.Errorf("%w: first name cannot be empty", apperr.ErrValidation)
    }
    fields["first_name"] = name
  }
  if update.LastName != nil {
    name := normalization.ParseInputString(*update.LastName)
    if name == "" {
      adm.log.Warn("Last name cannot be blanked out")
      return nil, fmt.Errorf("%w: last name cannot be empty", apperr.ErrValidation)
    }
    fields["last_name"] = name
  }
  if update.Role != nil {
    role := normalization.ParseInputString(*update.Role)
    if !types.ValidRole(role) {
      adm.log.Warn("Unknown role on update", "role", role)
      return nil, fmt.Errorf("%w: unknown role '%s'", apperr.ErrValidation, role)
    }
    fields["role"] = role
  }
  if update.Faculty != nil {
    fields["faculty"] = normalization.ParseInputString(*update.Faculty)
  }
  if update.Major != nil {
    fields["major"] = normalization.ParseInputString(*update.Major)
  }
  if update.YearLevel != nil {
    fields["year_level"] = normalization.ParseInputString(*update.YearLevel)
  }
  if len(fields) == 0 {
    adm.log.Warn("No fields to update, returning user as-is")
    users[0].Password = ""
    return users[0], nil
  }

  if err := adm.userRepo.UpdateFields(ctx, nil, userID, fields); err != nil {
    adm.log.Error("Failed to update user", "error", err)
    return nil, err
  }

  updated, err := adm.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    adm.log.Error("Failed to re-fetch updated user", "error", err)
    return nil, err
  }
  if len(updated) == 0 {
    return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
  }
  updated[0].Password = ""
  adm.log.Info("UpdateUser finished successfully :)", "userID", userID)
  return updated[0], nil
}

// DeleteUser removes an account along with its tokens and responses in one
// transaction. The last admin account cannot be removed.
func (adm *adminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
  adm.log.Info("Starting DeleteUser now...", "userID", userID)

  users, err := adm.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    adm.log.Error("Failed to fetch user", "error", err)
    return err
  }
  if len(users) == 0 {
    adm.log.Warn("User not found", "userID", userID)
    return fmt.Errorf("%w: user not found", apperr.ErrNotFound)
  }
  target := users[0]

  if target.Role == types.RoleAdmin {
    all, err := adm.userRepo.GetAll(ctx, nil)
    if err != nil {
      adm.log.Error("Failed to count admins", "error", err)
      return err
    }
    admins := 0
    for _, u := range all {
      if u.Role == types.RoleAdmin {
        admins++
      }
    }
    if admins <= 1 {
      adm.log.Warn("Refusing to delete the last admin", "userID", userID)
      return fmt.Errorf("%w: cannot delete the last admin account", apperr.ErrValidation)
    }
  }

  err = adm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := adm.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
      return err
    }
    if err := adm.responseRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
      return err
    }
    return adm.userRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{userID})
  })
  if err != nil {
    adm.log.Error("Failed to delete user", "error", err)
    return err
  }
  adm.log.Info("DeleteUser finished successfully :)", "userID", userID)
  return nil
}

func (adm *adminService) ListResponses(ctx context.Context) ([]*types.SurveyResponse, error) {
  adm.log.Info("Starting ListResponses now...")
  responses, err := adm.responseRepo.GetAll(ctx, nil)
  if err != nil {
    adm.log.Error("Failed to fetch responses", "error", err)
    return nil, err
  }
  adm.log.Info("ListResponses finished successfully :)", "count", len(responses))
  return responses, nil
}

func (adm *adminService) DeleteResponse(ctx context.Context, responseID uuid.UUID) error {
  adm.log.Info("Starting DeleteResponse now...", "responseID", responseID)
  if err := adm.responseRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{responseID}); err != nil {
    adm.log.Error("Failed to delete response", "error", err)
    return err
  }
  adm.log.Info("DeleteResponse finished successfully :)", "responseID", responseID)
  return nil
}
