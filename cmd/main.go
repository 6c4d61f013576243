package main

import (
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/joho/godotenv"

  "github.com/kru-nsru/survey-portal-backend/internal/codes"
  "github.com/kru-nsru/survey-portal-backend/internal/db"
  "github.com/kru-nsru/survey-portal-backend/internal/handlers"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/middleware"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/seed"
  "github.com/kru-nsru/survey-portal-backend/internal/server"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
  "github.com/kru-nsru/survey-portal-backend/internal/socket"
  "github.com/kru-nsru/survey-portal-backend/internal/surveys"
  "github.com/kru-nsru/survey-portal-backend/internal/utils"
)

func main() {
  // Env file is optional, real deployments set the variables directly
  _ = godotenv.Load()

  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  allowedDomain := utils.GetEnv("ALLOWED_EMAIL_DOMAIN", "nsru.ac.th", log)
  surveyDataDir := utils.GetEnv("SURVEY_DATA_DIR", "./data/surveys", log)
  allowedOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000", log)
  log.Debug("Environment variables loaded for Main :)",
    "accessTokenTTL", accessTokenTTL,
    "refreshTokenTTL", refreshTokenTTL,
    "redisAddress", redisAddress,
    "allowedDomain", allowedDomain,
    "surveyDataDir", surveyDataDir,
  )

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Fatal error: DB init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Survey Definitions Setup
  log.Info("Loading survey definitions from Main now...")
  surveyStore, err := surveys.NewStore(log, surveyDataDir)
  if err != nil {
    log.Error("Fatal error: Cannot load survey definitions", "error", err)
    os.Exit(1)
  }
  log.Info("Survey Definitions Loaded From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  responseRepo := repos.NewSurveyResponseRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Seed Setup
  log.Info("Attempting to Seed The Postgres From Main now...")
  if err := seed.SeedAdmin(thePG, userRepo, log); err != nil {
    log.Warn("Failed to seed data :(", "error", err)
  }
  log.Info("Seeding of Postgres From Main Successful :)")

  // One-Time Code Store Setup
  log.Info("Setting Up One-Time Code Store From Main now...")
  var codeStore codes.Store
  redisStore, err := codes.NewRedisStore(log, redisAddress, redisPassword)
  if err != nil {
    log.Warn("Redis unavailable for one-time codes, falling back to in-memory store", "error", err)
    codeStore = codes.NewMemoryStore()
  } else {
    codeStore = redisStore
  }
  log.Info("One-Time Code Store Set Up From Main Successful :)")

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now :)")
  wsHub := socket.NewHub(log)
  log.Info("Websocket Hub Set Up From Main Successful :)")

  // Redis PubSub
  log.Info("Setting Up Redis PubSub From Main Now :)")
  redisChanName := "survey_portal_hub_broadcast"
  redisPubSub, err := socket.NewRedisPubSub(log, redisAddress, redisPassword, redisChanName)
  if err != nil {
    log.Warn("Failed to init redis pubsub", "error", err)
  } else {
    if err := redisPubSub.StartSubscriber(wsHub); err != nil {
      log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
    } else {
      wsHub.SetRedisPubSub(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }
  log.Info("Successfully Set up Redis Pub Sub From Main :)")

  // Services Setup
  log.Info("Setting up Services from Main now...")
  emailService, err := services.NewEmailService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init EmailService", "error", err)
    os.Exit(1)
  }
  textService, err := services.NewTextService(log)
  if err != nil {
    log.Warn("Could not init TextService, SMS delivery disabled", "error", err)
  }
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService, avatars disabled", "error", err)
  }
  var avatarService services.AvatarService
  if bucketService != nil {
    avatarService, err = services.NewAvatarService(log, bucketService)
    if err != nil {
      log.Warn("Could not init AvatarService, avatars disabled", "error", err)
    }
  }
  sheetsService, err := services.NewSheetsService(log, surveyStore, userRepo, responseRepo)
  if err != nil {
    log.Warn("Could not init SheetsService, sheets export disabled", "error", err)
  } else {
    sheetsService.Start()
    defer sheetsService.Stop()
  }

  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second, allowedDomain)
  meService := services.NewMeService(thePG, log, userRepo)
  resetService := services.NewPasswordResetService(log, codeStore, userRepo, emailService, textService, services.PasswordResetConfig{
    FailOnDeliveryError: utils.GetEnvAsBool("OTP_FAIL_ON_DELIVERY_ERROR", false, log),
    SMSEnabled:          utils.GetEnvAsBool("OTP_SMS_ENABLED", false, log),
  })
  surveyService := services.NewSurveyService(thePG, log, surveyStore, userRepo, responseRepo, sheetsService, wsHub)
  analyticsService := services.NewAnalyticsService(thePG, log, surveyStore, userRepo, responseRepo)
  adminService := services.NewAdminService(thePG, log, userRepo, userTokenRepo, responseRepo)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  authHandler := handlers.NewAuthHandler(authService)
  forgotPasswordHandler := handlers.NewForgotPasswordHandler(resetService)
  meHandler := handlers.NewMeHandler(meService)
  surveyHandler := handlers.NewSurveyHandler(surveyService)
  adminHandler := handlers.NewAdminHandler(adminService, analyticsService, sheetsService)
  wsHandler := handlers.WsHandler(wsHub, log)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:           authHandler,
    AuthMiddleware:        authMiddleware,
    ForgotPasswordHandler: forgotPasswordHandler,
    MeHandler:             meHandler,
    SurveyHandler:         surveyHandler,
    AdminHandler:          adminHandler,
    WsHandler:             wsHandler,
    AllowedOrigins:        strings.Split(allowedOrigins, ","),
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }

  // On Shutdown
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
}
