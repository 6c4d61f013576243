package handlers

import (
  "encoding/json"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
)

// otpString coerces the otp field to a string whether the client sent it
// quoted or as a bare number.
func otpString(v interface{}) string {
  switch t := v.(type) {
  case string:
    return t
  case float64:
    return strconv.FormatFloat(t, 'f', -1, 64)
  case json.Number:
    return t.String()
  default:
    return ""
  }
}

type ForgotPasswordHandler struct {
  resetService services.PasswordResetService
}

func NewForgotPasswordHandler(resetService services.PasswordResetService) *ForgotPasswordHandler {
  return &ForgotPasswordHandler{resetService: resetService}
}

func (fph *ForgotPasswordHandler) SendOTP(c *gin.Context) {
  var req struct {
    Email string `json:"email"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
    return
  }
  if err := fph.resetService.RequestCode(c.Request.Context(), req.Email); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"success": false, "message": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "code sent to your email"})
}

func (fph *ForgotPasswordHandler) VerifyOTP(c *gin.Context) {
  var req struct {
    Email string      `json:"email"`
    OTP   interface{} `json:"otp"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
    return
  }
  if err := fph.resetService.VerifyCode(c.Request.Context(), req.Email, otpString(req.OTP)); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"success": false, "message": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "code verified"})
}

func (fph *ForgotPasswordHandler) ResetPassword(c *gin.Context) {
  var req struct {
    Email    string      `json:"email"`
    OTP      interface{} `json:"otp"`
    Password string      `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
    return
  }
  if err := fph.resetService.ResetPassword(c.Request.Context(), req.Email, otpString(req.OTP), req.Password); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"success": false, "message": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "password reset successfully"})
}
