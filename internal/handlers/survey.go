package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/requestdata"
  "github.com/kru-nsru/survey-portal-backend/internal/services"
)

type SurveyHandler struct {
  surveyService services.SurveyService
}

func NewSurveyHandler(surveyService services.SurveyService) *SurveyHandler {
  return &SurveyHandler{surveyService: surveyService}
}

func (sh *SurveyHandler) List(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{"surveys": sh.surveyService.ListSurveys(c.Request.Context())})
}

func (sh *SurveyHandler) Get(c *gin.Context) {
  def, err := sh.surveyService.GetSurvey(c.Request.Context(), c.Param("surveyId"))
  if err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, def)
}

// Submit takes the answers as a flat object, question_<id> keys straight
// from the survey form.
func (sh *SurveyHandler) Submit(c *gin.Context) {
  var answers map[string]interface{}
  if err := c.ShouldBindJSON(&answers); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
    return
  }
  if _, err := sh.surveyService.Submit(c.Request.Context(), rd.UserID, c.Param("surveyId"), answers); err != nil {
    c.JSON(apperr.StatusCode(err), gin.H{"success": false, "message": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "message": "response recorded"})
}
