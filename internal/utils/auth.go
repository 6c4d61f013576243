package utils

import (
  "context"
  "fmt"
  "regexp"

  "golang.org/x/crypto/bcrypt"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/normalization"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

var (
  emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
  phonePattern = regexp.MustCompile(`^[0-9]{9,10}$`)
)

const MinPasswordLength = 6

// ValidPhone reports whether a normalized phone number (digits only) looks
// like a Thai phone number.
func ValidPhone(phone string) bool {
  return phonePattern.MatchString(phone)
}

func ValidateRegistration(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User, confirmPassword string, agreePolicy bool) error {
  //1) Check if user is empty
  if user == nil {
    log.Warn("User is nil, cannot proceed further. Returning error", "user", user)
    return fmt.Errorf("%w: no user given", apperr.ErrValidation)
  }

  //2) Check StudentID
  if user.StudentID == "" {
    log.Warn("Student ID is empty, cannot proceed further. Returning error", "studentID", user.StudentID)
    return fmt.Errorf("%w: a student id is required to register", apperr.ErrValidation)
  }
  studentIDExists, err := userRepo.StudentIDExists(ctx, nil, user.StudentID)
  if err != nil {
    log.Warn("Failed to check if student id exists, error from UserRepo. Returning an error.", "error", err)
    return fmt.Errorf("failed checking student id '%s' existence: %w", user.StudentID, err)
  }
  if studentIDExists {
    log.Warn("Student ID is already in use, cannot continue. Returning an error.", "studentID", user.StudentID)
    return fmt.Errorf("%w: student id is already in use", apperr.ErrConflict)
  }

  //3) Check Email
  if user.Email == "" {
    log.Warn("Email is empty, cannot proceed further. Returning error", "email", user.Email)
    return fmt.Errorf("%w: an email is required to register", apperr.ErrValidation)
  }
  if !emailPattern.MatchString(user.Email) {
    log.Warn("Email does not look like an email address. Returning error", "email", user.Email)
    return fmt.Errorf("%w: email address is not valid", apperr.ErrValidation)
  }
  emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    log.Warn("Failed to check if user email exists, error from UserRepo. Returning an error.", "error", err)
    return fmt.Errorf("failed checking user email '%s' existence: %w", user.Email, err)
  }
  if emailExists {
    log.Warn("Email is already in use, cannot continue. Returning an error.", "emailExists", emailExists)
    return fmt.Errorf("%w: email is already in use", apperr.ErrConflict)
  }

  //4) Check Phone Number
  if user.PhoneNumber != nil && *user.PhoneNumber != "" {
    if !phonePattern.MatchString(*user.PhoneNumber) {
      log.Warn("Phone number must be 9 or 10 digits. Returning error", "phoneNumber", *user.PhoneNumber)
      return fmt.Errorf("%w: phone number must be 9 or 10 digits", apperr.ErrValidation)
    }
  }

  //5) Check Password
  if user.Password == "" {
    log.Warn("Password is empty, cannot proceed further. Returning error")
    return fmt.Errorf("%w: a password is required to register", apperr.ErrValidation)
  }
  if len(user.Password) < MinPasswordLength {
    log.Warn("Password is too short, cannot proceed further. Returning error", "length", len(user.Password))
    return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, MinPasswordLength)
  }
  if user.Password != confirmPassword {
    log.Warn("Password confirmation does not match. Returning error")
    return fmt.Errorf("%w: password confirmation does not match", apperr.ErrValidation)
  }

  //6) Check FirstName
  if user.FirstName == "" {
    log.Warn("First Name is empty, cannot proceed further. Returning error", "firstName", user.FirstName)
    return fmt.Errorf("%w: a first name is required to register", apperr.ErrValidation)
  }

  //7) Check LastName
  if user.LastName == "" {
    log.Warn("Last Name is empty, cannot proceed further. Returning error", "lastName", user.LastName)
    return fmt.Errorf("%w: a last name is required to register", apperr.ErrValidation)
  }

  //8) Check policy agreement
  if !agreePolicy {
    log.Warn("User has not agreed to the privacy policy. Returning error", "agreePolicy", agreePolicy)
    return fmt.Errorf("%w: you must agree to the privacy policy to register", apperr.ErrValidation)
  }
  return nil
}

func ValidateLogin(ctx context.Context, log *logger.Logger, studentID, password string) error {
  //1) Check StudentID
  if studentID == "" {
    log.Warn("Student ID is an empty string, Cannot proceed.", "studentID", studentID)
    return fmt.Errorf("%w: student id is required", apperr.ErrValidation)
  }

  //2) Check Password
  if password == "" {
    log.Warn("Password is an empty string, Cannot proceed.")
    return fmt.Errorf("%w: password is required", apperr.ErrValidation)
  }
  return nil
}

// HashPasswordString hashes a raw password with bcrypt at default cost.
func HashPasswordString(password string) (string, error) {
  hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return "", fmt.Errorf("failed to hash password")
  }
  return string(hashed), nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    log.Warn("Failure to hash password for user. Returning error", "error", err)
    return fmt.Errorf("failed to hash password for user")
  }
  user.Password = string(hashedPassword)
  return nil
}

func NormalizeUserFields(ctx context.Context, user *types.User) {
  user.StudentID = normalization.ParseInputString(user.StudentID)
  user.Prefix = normalization.ParseInputString(user.Prefix)
  user.Email = normalization.ParseEmail(user.Email)
  user.Birthdate = normalization.ParseInputString(user.Birthdate)
  if user.PhoneNumber != nil {
    normalized := normalization.ParsePhone(*user.PhoneNumber)
    user.PhoneNumber = &normalized
  }
  user.Password = normalization.ParseInputString(user.Password)
  user.FirstName = normalization.ParseInputString(user.FirstName)
  user.LastName = normalization.ParseInputString(user.LastName)
  user.Faculty = normalization.ParseInputString(user.Faculty)
  user.Major = normalization.ParseInputString(user.Major)
  user.YearLevel = normalization.ParseInputString(user.YearLevel)
}
