package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
)

type MeHandler struct {
  meService services.MeService
}

func NewMeHandler(meService services.MeService) *MeHandler {
  return &MeHandler{meService: meService}
}

func (mh *MeHandler) GetMe(c *gin.Context) {
  user, err := mh.meService.GetMe(c.Request.Context())
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (mh *MeHandler) UpdatePersonalInfo(c *gin.Context) {
  var req services.PersonalInfoUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, err := mh.meService.UpdatePersonalInfo(c.Request.Context(), req)
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (mh *MeHandler) ChangePassword(c *gin.Context) {
  var req struct {
    CurrentPassword string `json:"currentPassword"`
    NewPassword     string `json:"newPassword"`
    ConfirmPassword string `json:"confirmPassword"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if err := mh.meService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "password changed successfully"})
}
