package apperr

import (
  "errors"
  "net/http"
)

// Sentinel errors services wrap so handlers can map outcomes to HTTP status
// codes without string matching.
var (
  ErrValidation = errors.New("validation failed")
  ErrNotFound   = errors.New("not found")
  ErrExpired    = errors.New("expired")
  ErrMismatch   = errors.New("mismatch")
  ErrConflict   = errors.New("conflict")
  ErrDependency = errors.New("upstream dependency failed")
)

// StatusCode maps a service error to an HTTP status code.
func StatusCode(err error) int {
  switch {
  case errors.Is(err, ErrValidation):
    return http.StatusBadRequest
  case errors.Is(err, ErrNotFound):
    return http.StatusNotFound
  case errors.Is(err, ErrExpired):
    return http.StatusBadRequest
  case errors.Is(err, ErrMismatch):
    return http.StatusBadRequest
  case errors.Is(err, ErrConflict):
    return http.StatusConflict
  case errors.Is(err, ErrDependency):
    return http.StatusBadGateway
  default:
    return http.StatusInternalServerError
  }
}
