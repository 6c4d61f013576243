package utils

import (
  "os"
  "strconv"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
)

// GetEnv returns the value of key, or fallback when unset or empty.
func GetEnv(key, fallback string, log *logger.Logger) string {
  if value, ok := os.LookupEnv(key); ok && value != "" {
    return value
  }
  if log != nil {
    log.Debug("Env var not set, using fallback", "key", key, "fallback", fallback)
  }
  return fallback
}

// GetEnvAsInt returns the value of key parsed as an int, or fallback when
// unset or unparsable.
func GetEnvAsInt(key string, fallback int, log *logger.Logger) int {
  if value, ok := os.LookupEnv(key); ok && value != "" {
    parsed, err := strconv.Atoi(value)
    if err == nil {
      return parsed
    }
    if log != nil {
      log.Warn("Env var is not a valid int, using fallback", "key", key, "value", value, "fallback", fallback)
    }
  }
  return fallback
}

// GetEnvAsBool returns the value of key parsed as a bool, or fallback when
// unset or unparsable.
func GetEnvAsBool(key string, fallback bool, log *logger.Logger) bool {
  if value, ok := os.LookupEnv(key); ok && value != "" {
    parsed, err := strconv.ParseBool(value)
    if err == nil {
      return parsed
    }
    if log != nil {
      log.Warn("Env var is not a valid bool, using fallback", "key", key, "value", value, "fallback", fallback)
    }
  }
  return fallback
}
