package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

type AdminHandler struct {
  adminService     services.AdminService
  analyticsService services.AnalyticsService
  sheetsService    services.SheetsService
}

func NewAdminHandler(
  adminService services.AdminService,
  analyticsService services.AnalyticsService,
  sheetsService services.SheetsService,
) *AdminHandler {
  return &AdminHandler{
    adminService:     adminService,
    analyticsService: analyticsService,
    sheetsService:    sheetsService,
  }
}

func (adh *AdminHandler) ListUsers(c *gin.Context) {
  users, err := adh.adminService.ListUsers(c.Request.Context())
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"users": users})
}

func (adh *AdminHandler) CreateUser(c *gin.Context) {
  var req struct {
    StudentID string `json:"studentId"`
    Email     string `json:"email"`
    Phone     string `json:"phone,omitempty"`
    FirstName string `json:"firstName"`
    LastName  string `json:"lastName"`
    Password  string `json:"password"`
    Role      string `json:"role,omitempty"`
    Faculty   string `json:"faculty,omitempty"`
    Major     string `json:"major,omitempty"`
    YearLevel string `json:"yearLevel,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user := types.User{
    StudentID: req.StudentID,
    Email:     req.Email,
    FirstName: req.FirstName,
    LastName:  req.LastName,
    Password:  req.Password,
    Role:      req.Role,
    Faculty:   req.Faculty,
    Major:     req.Major,
    YearLevel: req.YearLevel,
  }
  if req.Phone != "" {
    user.PhoneNumber = &req.Phone
  }
  created, err := adh.adminService.CreateUser(c.Request.Context(), &user)
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": created})
}

func (adh *AdminHandler) UpdateUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("userId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  var req services.AdminUserUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, err := adh.adminService.UpdateUser(c.Request.Context(), userID, req)
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (adh *AdminHandler) DeleteUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("userId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  if err := adh.adminService.DeleteUser(c.Request.Context(), userID); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
}

func (adh *AdminHandler) ListResponses(c *gin.Context) {
  responses, err := adh.adminService.ListResponses(c.Request.Context())
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"responses": responses})
}

func (adh *AdminHandler) DeleteResponse(c *gin.Context) {
  responseID, err := uuid.Parse(c.Param("responseId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid response id"})
    return
  }
  if err := adh.adminService.DeleteResponse(c.Request.Context(), responseID); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "response deleted"})
}

func (adh *AdminHandler) Analytics(c *gin.Context) {
  analytics, err := adh.analyticsService.ComputeAnalytics(c.Request.Context())
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "analytics": analytics})
}

func (adh *AdminHandler) ExportToSheets(c *gin.Context) {
  if adh.sheetsService == nil {
    c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sheets export is not configured"})
    return
  }
  count, err := adh.sheetsService.Backfill(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "exported": count})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "exported": count})
}

func (adh *AdminHandler) TestSheetsConnection(c *gin.Context) {
  if adh.sheetsService == nil {
    c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sheets export is not configured"})
    return
  }
  if err := adh.sheetsService.TestConnection(c.Request.Context()); err != nil {
    c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "connection ok"})
}
