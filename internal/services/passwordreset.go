package services

import (
  "context"
  "crypto/rand"
  "fmt"
  "math/big"
  "regexp"
  "time"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/codes"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/normalization"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/templates"
  "github.com/kru-nsru/survey-portal-backend/internal/utils"
)

// CodeTTL is how long an issued one-time code stays valid.
const CodeTTL = 5 * time.Minute

var resetEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type PasswordResetService interface {
  // RequestCode issues a fresh 6-digit code for the email, replacing any
  // prior one, and delivers it via email (and SMS when enabled).
  RequestCode(ctx context.Context, email string) error

  // VerifyCode checks a submitted code without consuming it.
  VerifyCode(ctx context.Context, email, code string) error

  // ResetPassword re-validates the code, updates the user's password, and
  // consumes the code.
  ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type PasswordResetConfig struct {
  // FailOnDeliveryError makes RequestCode surface delivery failures instead
  // of treating issuance as complete once the code is stored.
  FailOnDeliveryError bool

  // SMSEnabled additionally sends the code to the user's phone number when
  // one is on file.
  SMSEnabled bool
}

type passwordResetService struct {
  log      *logger.Logger
  store    codes.Store
  userRepo repos.UserRepo
  email    EmailService
  text     TextService
  cfg      PasswordResetConfig
}

func NewPasswordResetService(
  log *logger.Logger,
  store codes.Store,
  userRepo repos.UserRepo,
  email EmailService,
  text TextService,
  cfg PasswordResetConfig,
) PasswordResetService {
  serviceLog := log.With("service", "PasswordResetService")
  return &passwordResetService{
    log:      serviceLog,
    store:    store,
    userRepo: userRepo,
    email:    email,
    text:     text,
    cfg:      cfg,
  }
}

// generateCode draws a uniform 6-digit code from [100000, 999999].
func generateCode() (string, error) {
  n, err := rand.Int(rand.Reader, big.NewInt(900000))
  if err != nil {
    return "", fmt.Errorf("failed to generate code: %w", err)
  }
  return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (prs *passwordResetService) RequestCode(ctx context.Context, email string) error {
  prs.log.Info("Starting RequestCode now...")

  //1) Validate the email
  normalizedEmail := normalization.ParseEmail(email)
  if normalizedEmail == "" {
    prs.log.Warn("Email is empty, cannot issue a code")
    return fmt.Errorf("%w: an email is required", apperr.ErrValidation)
  }
  if !resetEmailPattern.MatchString(normalizedEmail) {
    prs.log.Warn("Email is malformed, cannot issue a code", "email", normalizedEmail)
    return fmt.Errorf("%w: email address is not valid", apperr.ErrValidation)
  }

  //2) Make sure an account exists for it
  users, err := prs.userRepo.GetByEmails(ctx, nil, []string{normalizedEmail})
  if err != nil {
    prs.log.Error("Failed to look up user by email", "error", err)
    return fmt.Errorf("%w: failed to look up account", apperr.ErrDependency)
  }
  if len(users) == 0 {
    prs.log.Warn("No account found for email", "email", normalizedEmail)
    return fmt.Errorf("%w: no account with that email", apperr.ErrNotFound)
  }
  user := users[0]

  //3) Generate and store the code, replacing any prior one
  code, err := generateCode()
  if err != nil {
    prs.log.Error("Failed to generate one-time code", "error", err)
    return err
  }
  entry := codes.Entry{Code: code, ExpiresAt: time.Now().Add(CodeTTL)}
  if err := prs.store.Set(ctx, normalizedEmail, entry, CodeTTL); err != nil {
    prs.log.Error("Failed to store one-time code", "error", err)
    return fmt.Errorf("%w: failed to store code", apperr.ErrDependency)
  }
  prs.log.Info("One-time code stored successfully :)", "email", normalizedEmail)

  //4) Deliver the code. Issuance already succeeded, so delivery failures are
  //   logged and only surfaced when the service is configured to do so.
  data := templates.OTPEmailData{Code: code, ExpiryMinutes: int(CodeTTL / time.Minute)}
  htmlBody, err := templates.RenderOTPEmailHTML(data)
  if err != nil {
    prs.log.Error("Failed to render OTP email", "error", err)
    htmlBody = ""
  }
  plainBody := templates.RenderOTPEmailText(data)
  deliveryErr := prs.email.SendEmail(ctx, normalizedEmail, "Your password reset code", plainBody, htmlBody, "authorization")
  if deliveryErr != nil {
    prs.log.Warn("Failed to deliver one-time code email", "email", normalizedEmail, "error", deliveryErr)
  }

  if prs.cfg.SMSEnabled && prs.text != nil && user.PhoneNumber != nil && *user.PhoneNumber != "" {
    if smsErr := prs.text.SendText(ctx, *user.PhoneNumber, plainBody); smsErr != nil {
      prs.log.Warn("Failed to deliver one-time code SMS", "error", smsErr)
    }
  }

  if deliveryErr != nil && prs.cfg.FailOnDeliveryError {
    return fmt.Errorf("%w: failed to deliver code", apperr.ErrDependency)
  }
  prs.log.Info("RequestCode finished successfully :)", "email", normalizedEmail)
  return nil
}

// checkCode runs the shared existence/expiry/equality checks. The entry is
// deleted only when found expired; a mismatch leaves it in place so the user
// can retry within the window.
func (prs *passwordResetService) checkCode(ctx context.Context, email, code string) error {
  entry, ok, err := prs.store.Get(ctx, email)
  if err != nil {
    prs.log.Error("Failed to read one-time code from store", "error", err)
    return fmt.Errorf("%w: failed to read code", apperr.ErrDependency)
  }
  if !ok {
    prs.log.Warn("No one-time code found for email", "email", email)
    return fmt.Errorf("%w: no code found, please request a new one", apperr.ErrNotFound)
  }
  if time.Now().After(entry.ExpiresAt) {
    prs.log.Warn("One-time code has expired, purging it", "email", email)
    if delErr := prs.store.Delete(ctx, email); delErr != nil {
      prs.log.Warn("Failed to purge expired code", "email", email, "error", delErr)
    }
    return fmt.Errorf("%w: code has expired, please request a new one", apperr.ErrExpired)
  }
  if entry.Code != code {
    prs.log.Warn("Submitted code does not match", "email", email)
    return fmt.Errorf("%w: incorrect code", apperr.ErrMismatch)
  }
  return nil
}

func (prs *passwordResetService) VerifyCode(ctx context.Context, email, code string) error {
  prs.log.Info("Starting VerifyCode now...")

  normalizedEmail := normalization.ParseEmail(email)
  if normalizedEmail == "" || code == "" {
    prs.log.Warn("Email or code is empty, cannot verify")
    return fmt.Errorf("%w: an email and code are required", apperr.ErrValidation)
  }
  if err := prs.checkCode(ctx, normalizedEmail, code); err != nil {
    return err
  }
  prs.log.Info("VerifyCode finished successfully :)", "email", normalizedEmail)
  return nil
}

func (prs *passwordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
  prs.log.Info("Starting ResetPassword now...")

  //1) Validate input
  normalizedEmail := normalization.ParseEmail(email)
  if normalizedEmail == "" || code == "" || newPassword == "" {
    prs.log.Warn("Email, code or password is empty, cannot reset")
    return fmt.Errorf("%w: an email, code and new password are required", apperr.ErrValidation)
  }
  if len(newPassword) < utils.MinPasswordLength {
    prs.log.Warn("New password is too short", "length", len(newPassword))
    return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, utils.MinPasswordLength)
  }

  //2) Re-validate the code. A prior VerifyCode call is not trusted; a code
  //   that expired in between is rejected here.
  if err := prs.checkCode(ctx, normalizedEmail, code); err != nil {
    return err
  }

  //3) Hash and persist the new password
  hashed, err := utils.HashPasswordString(newPassword)
  if err != nil {
    prs.log.Error("Failed to hash new password", "error", err)
    return err
  }
  if err := prs.userRepo.UpdatePasswordByEmail(ctx, nil, normalizedEmail, hashed); err != nil {
    prs.log.Error("Failed to update user password", "error", err)
    return fmt.Errorf("%w: failed to update password", apperr.ErrNotFound)
  }

  //4) Consume the code. Single use is enforced here.
  if err := prs.store.Delete(ctx, normalizedEmail); err != nil {
    prs.log.Warn("Failed to delete consumed code", "email", normalizedEmail, "error", err)
  }
  prs.log.Info("ResetPassword finished successfully :)", "email", normalizedEmail)
  return nil
}
