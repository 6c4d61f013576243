package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  oauth2api "google.golang.org/api/oauth2/v2"
  "google.golang.org/api/option"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/normalization"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/requestdata"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
  "github.com/kru-nsru/survey-portal-backend/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  StudentID string `json:"student_id,omitempty"`
  Role      string `json:"role,omitempty"`
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User, confirmPassword string, agreePolicy bool) error
  Login(ctx context.Context, studentID, password string, rememberMe bool) (string, string, error)
  LoginWithGoogle(ctx context.Context, idToken string) (string, string, error)
  Refresh(ctx context.Context) (string, string, error)
  Logout(ctx context.Context) error

  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  avatarService AvatarService
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
  allowedDomain string
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  avatarService AvatarService,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
  allowedDomain string,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    avatarService: avatarService,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
    allowedDomain: allowedDomain,
  }
}

//----------------------------------------------------------------------------------------------------------------------
// RegisterUser
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) RegisterUser(ctx context.Context, user *types.User, confirmPassword string, agreePolicy bool) error {
  as.log.Info("Starting Register User now...")

  //1) Normalize User Fields
  utils.NormalizeUserFields(ctx, user)

  //2) Checks on user fields
  if vErr := utils.ValidateRegistration(ctx, as.userRepo, as.log, user, confirmPassword, agreePolicy); vErr != nil {
    return vErr
  }

  //3) Hash Password
  if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
    return hErr
  }

  //4) Default the role and demographic fields
  if user.Role == "" {
    user.Role = types.RoleStudent
  }
  if !types.ValidRole(user.Role) {
    as.log.Warn("Invalid role given for registration, Cannot proceed. Returning error.", "role", user.Role)
    return fmt.Errorf("%w: unknown role '%s'", apperr.ErrValidation, user.Role)
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

  //5) Transaction Body
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()
    if as.avatarService != nil {
      if ucaErr := as.avatarService.CreateAndUploadUserAvatar(ctx, user); ucaErr != nil {
        as.log.Warn("Failed to create and upload user avatar, continuing without one", "error", ucaErr)
      }
    }
    createdUsers, ucErr := as.userRepo.Create(ctx, tx, []*types.User{user})
    if ucErr != nil {
      as.log.Warn("Failure from AuthService -> UserRepo to create final user", "error", ucErr)
      return fmt.Errorf("Failure to create user: %w", ucErr)
    }
    if len(createdUsers) == 0 {
      as.log.Warn("Failure to actually create user from AuthService")
      return fmt.Errorf("Failure to create user in DB")
    }
    return nil
  })
}

//----------------------------------------------------------------------------------------------------------------------
// Login / LoginWithGoogle
//----------------------------------------------------------------------------------------------------------------------

// rememberMeRefreshTTL keeps the session alive across browser restarts when
// the user ticks "remember me" at login.
const rememberMeRefreshTTL = 30 * 24 * time.Hour

func (as *authService) Login(ctx context.Context, studentID, password string, rememberMe bool) (string, string, error) {
  //1) Normalize Input
  normalizedStudentID := normalization.ParseInputString(studentID)
  normalizedPassword := normalization.ParseInputString(password)

  //2) Input Validations
  if vErr := utils.ValidateLogin(ctx, as.log, normalizedStudentID, normalizedPassword); vErr != nil {
    return "", "", vErr
  }

  //3) Find User By StudentID
  users, uSErr := as.userRepo.GetByStudentIDs(ctx, nil, []string{normalizedStudentID})
  if uSErr != nil {
    as.log.Warn("Failure to retrieve user by studentID, Cannot proceed. Returning error.", "error", uSErr)
    return "", "", fmt.Errorf("error retrieving user by student id: %w", uSErr)
  }
  if len(users) == 0 {
    as.log.Warn("Invalid student id, no users returned", "len(users)", len(users))
    return "", "", fmt.Errorf("%w: no account with that student id", apperr.ErrNotFound)
  }
  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(normalizedPassword)); hErr != nil {
    as.log.Warn("Invalid password, user password and hash dont match, Cannot proceed. Returning error.", "error", hErr)
    return "", "", fmt.Errorf("%w: incorrect password", apperr.ErrMismatch)
  }

  refreshTTL := as.refreshTTL
  if rememberMe {
    refreshTTL = rememberMeRefreshTTL
  }
  return as.issueTokens(ctx, user, refreshTTL)
}

// LoginWithGoogle exchanges a Google ID token for a portal session. The token
// is verified against Google's tokeninfo endpoint and the email must belong
// to the allowed university domain.
func (as *authService) LoginWithGoogle(ctx context.Context, idToken string) (string, string, error) {
  if idToken == "" {
    as.log.Warn("Google ID token is empty, Cannot proceed.")
    return "", "", fmt.Errorf("%w: a Google ID token is required", apperr.ErrValidation)
  }

  oauthSvc, err := oauth2api.NewService(ctx, option.WithoutAuthentication())
  if err != nil {
    as.log.Error("Failed to create oauth2 service", "error", err)
    return "", "", fmt.Errorf("%w: failed to reach Google", apperr.ErrDependency)
  }
  tokenInfo, err := oauthSvc.Tokeninfo().IdToken(idToken).Context(ctx).Do()
  if err != nil {
    as.log.Warn("Google token verification failed", "error", err)
    return "", "", fmt.Errorf("%w: Google token verification failed", apperr.ErrValidation)
  }
  if !tokenInfo.VerifiedEmail {
    as.log.Warn("Google account email is not verified", "email", tokenInfo.Email)
    return "", "", fmt.Errorf("%w: Google account email is not verified", apperr.ErrValidation)
  }
  email := normalization.ParseEmail(tokenInfo.Email)
  if as.allowedDomain != "" && !strings.HasSuffix(email, "@"+as.allowedDomain) {
    as.log.Warn("Google account is outside the allowed domain", "email", email, "allowedDomain", as.allowedDomain)
    return "", "", fmt.Errorf("%w: only @%s accounts may sign in", apperr.ErrValidation, as.allowedDomain)
  }

  users, uSErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if uSErr != nil {
    as.log.Warn("Failure to retrieve user by email, Cannot proceed. Returning error.", "error", uSErr)
    return "", "", fmt.Errorf("error retrieving user by email: %w", uSErr)
  }
  if len(users) == 0 {
    as.log.Warn("No account registered for Google email", "email", email)
    return "", "", fmt.Errorf("%w: no account with that email, please register first", apperr.ErrNotFound)
  }
  return as.issueTokens(ctx, users[0], as.refreshTTL)
}

// issueTokens writes a fresh token pair for the user, replacing any token row
// that has already expired.
func (as *authService) issueTokens(ctx context.Context, user *types.User, refreshTTL time.Duration) (string, string, error) {
  var accessToken string
  var refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, fTErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if fTErr != nil {
      as.log.Warn("Failed to check whether user already has user tokens, Cannot proceed. Returning error.", "error", fTErr)
      return fmt.Errorf("Failed to check whether user already has user tokens: %w", fTErr)
    }
    var staleIDs []uuid.UUID
    for _, t := range foundTokens {
      if t != nil && t.ExpiresAt.Before(time.Now()) {
        staleIDs = append(staleIDs, t.ID)
      }
    }
    if len(staleIDs) > 0 {
      if dTErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, staleIDs); dTErr != nil {
        as.log.Warn("Failed to delete expired user tokens, Cannot proceed. Returning error.", "error", dTErr)
        return fmt.Errorf("Failed to delete expired user tokens: %w", dTErr)
      }
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      as.log.Warn("Generate Access Token Error, Cannot proceed. Returning error.", "error", genErr)
      return fmt.Errorf("Generate Access Token Error: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    expiresAt := time.Now().Add(refreshTTL)
    userToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    expiresAt,
    }
    _, cTErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken})
    if cTErr != nil {
      as.log.Warn("Create User Token Error, Cannot proceed. Returning error.", "error", cTErr)
      return fmt.Errorf("Create User Token Error: %w", cTErr)
    }
    return nil
  }); err != nil {
    return "", "", err
  }
  return accessToken, refreshToken, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Refresh / Logout
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) Refresh(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    as.log.Warn("No Request Data found in context, Cannot proceed", "requestdata", rd)
    return "", "", fmt.Errorf("No Request Data found in context.")
  }
  if rd.RefreshToken == "" {
    as.log.Warn("RefreshToken in Request Data in context is an empty string, Cannot proceed")
    return "", "", fmt.Errorf("RefreshToken in Request Data in context is an empty string.")
  }

  var accessToken string
  var newRefreshTokenStr string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, fTErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if fTErr != nil {
      as.log.Warn("Error fetching refresh token, Cannot proceed. Returning error.", "error", fTErr)
      return fmt.Errorf("Error fetching refresh token: %w", fTErr)
    }
    if len(foundTokens) == 0 {
      as.log.Warn("No user token found for the given refresh token, Cannot proceed.")
      return fmt.Errorf("%w: no session for the given refresh token", apperr.ErrNotFound)
    }
    existingToken := foundTokens[0]

    if existingToken.ExpiresAt.Before(time.Now()) {
      if dTErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dTErr != nil {
        as.log.Warn("Refresh token expired, error deleting expired refresh token, Cannot proceed. Returning error.", "error", dTErr)
        return fmt.Errorf("Refresh token expired, error deleting: %w", dTErr)
      }
      as.log.Warn("Refresh Token Expired, Cannot proceed.")
      return fmt.Errorf("%w: refresh token expired", apperr.ErrExpired)
    }
    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if uErr != nil {
      as.log.Warn("Failed to load user for refresh, Cannot proceed. Returning error.", "error", uErr)
      return fmt.Errorf("Failed to load user for refresh: %w", uErr)
    }
    if len(users) == 0 {
      as.log.Warn("No user found for the given refresh token, Cannot proceed.", "len(users)", len(users))
      return fmt.Errorf("No user found for the given refresh token.")
    }
    user := users[0]
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      as.log.Warn("Failed to generate new access token, Cannot proceed. Returning error.", "error", genErr)
      return fmt.Errorf("Failed to generate new access token: %w", genErr)
    }
    accessToken = tok
    newRefreshTokenStr = uuid.New().String()
    newExpiresAt := time.Now().Add(as.refreshTTL)
    newUserToken := types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshTokenStr,
      ExpiresAt:    newExpiresAt,
    }
    _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&newUserToken})
    if cErr != nil {
      as.log.Warn("Failed to create new user token, Cannot proceed. Returning error.", "error", cErr)
      return fmt.Errorf("Failed to create new user token: %w", cErr)
    }
    if dErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
      as.log.Warn("Failed to remove old refresh token, Cannot proceed. Returning error.", "error", dErr)
      return fmt.Errorf("Failed to remove old refresh token: %w", dErr)
    }
    return nil
  })
  if err != nil {
    as.log.Warn("Failed transaction, Cannot proceed. Returning error.", "error", err)
    return "", "", err
  }
  return accessToken, newRefreshTokenStr, nil
}

func (as *authService) Logout(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    as.log.Warn("No Request Data found in context, Cannot proceed.", "requestdata", rd)
    return fmt.Errorf("No Request Data found in context.")
  }
  if rd.TokenString == "" {
    as.log.Warn("TokenString in Request Data is an empty string, Cannot proceed.", "tokenstring", rd.TokenString)
    return fmt.Errorf("TokenString in RequestData is an empty string.")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, fTErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if fTErr != nil {
      as.log.Warn("Error finding user token from token string, Cannot proceed. Returning error.", "error", fTErr)
      return fmt.Errorf("Error finding user token from token string: %w", fTErr)
    }
    if len(foundTokens) == 0 {
      as.log.Debug("No user token found for access token, nothing to delete")
      return nil
    }
    if tDErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{foundTokens[0].ID}); tDErr != nil {
      as.log.Warn("Error deleting user token, Cannot proceed. Returning error.", "error", tDErr)
      return fmt.Errorf("Error deleting user token: %w", tDErr)
    }
    return nil
  })
}

//----------------------------------------------------------------------------------------------------------------------
// Tokens
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
    StudentID: user.StudentID,
    Role:      user.Role,
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("failed to parse token: %w", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("invalid or expired JWT token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("invalid user ID in token: %w", err)
  }
  var refreshTokenStr string
  foundTokens, fTErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if fTErr != nil {
    as.log.Warn("Error fetching user token by access token, Cannot proceed. Returning error.", "error", fTErr)
    return ctx, fmt.Errorf("Failed to fetch user token by access token: %w", fTErr)
  }
  if len(foundTokens) == 0 {
    return ctx, fmt.Errorf("no session found for the given access token")
  }
  refreshTokenStr = foundTokens[0].RefreshToken
  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: refreshTokenStr,
    UserID:       userID,
    StudentID:    claims.StudentID,
    Role:         claims.Role,
  }
  ctx = requestdata.WithRequestData(ctx, rd)
  return ctx, nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
