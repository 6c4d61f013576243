package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/kru-nsru/survey-portal-backend/internal/handlers"
  "github.com/kru-nsru/survey-portal-backend/internal/middleware"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

type RouterConfig struct {
  AuthHandler           *handlers.AuthHandler
  AuthMiddleware        *middleware.AuthMiddleware
  ForgotPasswordHandler *handlers.ForgotPasswordHandler
  MeHandler             *handlers.MeHandler
  SurveyHandler         *handlers.SurveyHandler
  AdminHandler          *handlers.AdminHandler
  WsHandler             gin.HandlerFunc
  AllowedOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  origins := cfg.AllowedOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)
    api.POST("/login/google", cfg.AuthHandler.LoginWithGoogle)
    api.POST("/forgot-password/send-otp", cfg.ForgotPasswordHandler.SendOTP)
    api.POST("/forgot-password/verify-otp", cfg.ForgotPasswordHandler.VerifyOTP)
    api.POST("/forgot-password/reset-password", cfg.ForgotPasswordHandler.ResetPassword)
  }

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  protected.GET("/ws", cfg.WsHandler)

  //ME
  protected.GET("/me", cfg.MeHandler.GetMe)
  protected.POST("/me/personal-info", cfg.MeHandler.UpdatePersonalInfo)
  protected.POST("/me/change-password", cfg.MeHandler.ChangePassword)

  //Surveys
  protected.GET("/surveys", cfg.SurveyHandler.List)
  protected.GET("/surveys/:surveyId", cfg.SurveyHandler.Get)
  protected.POST("/surveys/:surveyId/submit", cfg.SurveyHandler.Submit)

  //------------------------------------------
  // Admin Routes
  //------------------------------------------
  admin := api.Group("/admin")
  admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin, types.RoleTeacher))
  admin.GET("/users", cfg.AdminHandler.ListUsers)
  admin.POST("/users", cfg.AdminHandler.CreateUser)
  admin.PUT("/users/:userId", cfg.AdminHandler.UpdateUser)
  admin.DELETE("/users/:userId", cfg.AdminHandler.DeleteUser)
  admin.GET("/responses", cfg.AdminHandler.ListResponses)
  admin.DELETE("/responses/:responseId", cfg.AdminHandler.DeleteResponse)
  admin.GET("/analytics", cfg.AdminHandler.Analytics)
  admin.POST("/export-to-sheets", cfg.AdminHandler.ExportToSheets)
  admin.GET("/test-sheets-connection", cfg.AdminHandler.TestSheetsConnection)

  return router
}
