package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    StudentID       string  `json:"studentId"`
    Prefix          string  `json:"prefix,omitempty"`
    Email           string  `json:"email"`
    Phone           string  `json:"phone,omitempty"`
    FirstName       string  `json:"firstName"`
    LastName        string  `json:"lastName"`
    Birthdate       string  `json:"birthdate,omitempty"`
    Age             int     `json:"age,omitempty"`
    Password        string  `json:"password"`
    ConfirmPassword string  `json:"confirmPassword"`
    Faculty         string  `json:"faculty,omitempty"`
    Major           string  `json:"major,omitempty"`
    YearLevel       string  `json:"yearLevel,omitempty"`
    AgreePolicy     bool    `json:"agreePolicy"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user := types.User{
    StudentID: req.StudentID,
    Prefix:    req.Prefix,
    Email:     req.Email,
    FirstName: req.FirstName,
    LastName:  req.LastName,
    Birthdate: req.Birthdate,
    Age:       req.Age,
    Password:  req.Password,
    Faculty:   req.Faculty,
    Major:     req.Major,
    YearLevel: req.YearLevel,
  }
  if req.Phone != "" {
    user.PhoneNumber = &req.Phone
  }
  if err := ah.authService.RegisterUser(c.Request.Context(), &user, req.ConfirmPassword, req.AgreePolicy); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "registered successfully"})
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    StudentID  string `json:"studentId"`
    Password   string `json:"password"`
    RememberMe bool   `json:"rememberMe"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  accessToken, refreshToken, err := ah.authService.Login(c.Request.Context(), req.StudentID, req.Password, req.RememberMe)
  if err != nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())

  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) LoginWithGoogle(c *gin.Context) {
  var req struct {
    IDToken string `json:"idToken"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  accessToken, refreshToken, err := ah.authService.LoginWithGoogle(c.Request.Context(), req.IDToken)
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())

  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  accessToken, refreshToken, err := ah.authService.Refresh(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())

  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.Logout(c.Request.Context()); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}
