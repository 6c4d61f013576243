package services

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/socket"
  "github.com/kru-nsru/survey-portal-backend/internal/surveys"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

type SurveyService interface {
  // ListSurveys returns every loaded survey definition.
  ListSurveys(ctx context.Context) []*types.SurveyDefinition

  // GetSurvey returns one definition by id.
  GetSurvey(ctx context.Context, surveyID string) (*types.SurveyDefinition, error)

  // Submit records a user's answers for a survey. A second submission for
  // the same (user, survey) pair is rejected with a conflict.
  Submit(ctx context.Context, userID uuid.UUID, surveyID string, answers map[string]interface{}) (*types.SurveyResponse, error)
}

type surveyService struct {
  db           *gorm.DB
  log          *logger.Logger
  store        *surveys.Store
  userRepo     repos.UserRepo
  responseRepo repos.SurveyResponseRepo
  sheets       SheetsService
  hub          *socket.Hub
}

func NewSurveyService(
  db *gorm.DB,
  log *logger.Logger,
  store *surveys.Store,
  userRepo repos.UserRepo,
  responseRepo repos.SurveyResponseRepo,
  sheets SheetsService,
  hub *socket.Hub,
) SurveyService {
  serviceLog := log.With("service", "SurveyService")
  return &surveyService{
    db:           db,
    log:          serviceLog,
    store:        store,
    userRepo:     userRepo,
    responseRepo: responseRepo,
    sheets:       sheets,
    hub:          hub,
  }
}

func (ss *surveyService) ListSurveys(ctx context.Context) []*types.SurveyDefinition {
  ss.log.Debug("Listing survey definitions")
  return ss.store.List()
}

func (ss *surveyService) GetSurvey(ctx context.Context, surveyID string) (*types.SurveyDefinition, error) {
  ss.log.Debug("Fetching survey definition", "surveyID", surveyID)
  return ss.store.Get(surveyID)
}

// numericAnswer pulls a numeric value out of a decoded JSON answer. Ratings
// arrive as float64 from encoding/json but other shapes show up too.
func numericAnswer(v interface{}) (float64, bool) {
  switch n := v.(type) {
  case float64:
    return n, true
  case int:
    return float64(n), true
  case int64:
    return float64(n), true
  case json.Number:
    f, err := n.Float64()
    if err != nil {
      return 0, false
    }
    return f, true
  default:
    return 0, false
  }
}

// validateAnswers checks submitted answers against the survey's rating
// questions. Every rating question must be answered with a value in [1, 5].
// Extra keys are kept as-is so free-text answers pass through untouched.
func (ss *surveyService) validateAnswers(def *types.SurveyDefinition, answers map[string]interface{}) error {
  for _, q := range def.Questions {
    if q.Type != types.QuestionTypeRating {
      continue
    }
    key := fmt.Sprintf("question_%d", q.ID)
    raw, ok := answers[key]
    if !ok {
      return fmt.Errorf("%w: question %d is not answered", apperr.ErrValidation, q.ID)
    }
    value, ok := numericAnswer(raw)
    if !ok {
      return fmt.Errorf("%w: question %d needs a numeric rating", apperr.ErrValidation, q.ID)
    }
    if value < 1 || value > 5 {
      return fmt.Errorf("%w: question %d rating must be between 1 and 5", apperr.ErrValidation, q.ID)
    }
  }
  return nil
}

func (ss *surveyService) Submit(ctx context.Context, userID uuid.UUID, surveyID string, answers map[string]interface{}) (*types.SurveyResponse, error) {
  ss.log.Info("Starting Submit now...", "userID", userID, "surveyID", surveyID)

  //1) The survey must exist and the answers must fit it
  def, err := ss.store.Get(surveyID)
  if err != nil {
    ss.log.Warn("Unknown survey id on submit", "surveyID", surveyID)
    return nil, err
  }
  if len(answers) == 0 {
    ss.log.Warn("No answers provided, cannot submit")
    return nil, fmt.Errorf("%w: answers are required", apperr.ErrValidation)
  }
  if err := ss.validateAnswers(def, answers); err != nil {
    ss.log.Warn("Answer validation failed", "error", err)
    return nil, err
  }

  //2) Friendly duplicate check up front. The unique index is the real
  //   guarantee; this just gives a clean message in the common case.
  exists, err := ss.responseRepo.ExistsByUserAndSurvey(ctx, nil, userID, surveyID)
  if err != nil {
    ss.log.Error("Failed to check for an existing response", "error", err)
    return nil, err
  }
  if exists {
    ss.log.Warn("User already submitted this survey", "userID", userID, "surveyID", surveyID)
    return nil, fmt.Errorf("%w: response already submitted", apperr.ErrConflict)
  }

  //3) Snapshot the user's demographics onto the response
  users, err := ss.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    ss.log.Error("Failed to fetch submitting user", "error", err)
    return nil, err
  }
  if len(users) == 0 {
    ss.log.Warn("Submitting user not found", "userID", userID)
    return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
  }
  user := users[0]

  response := &types.SurveyResponse{
    ID:        uuid.New(),
    UserID:    userID,
    SurveyID:  surveyID,
    Answers:   datatypes.JSONMap(answers),
    Faculty:   user.Faculty,
    Major:     user.Major,
    YearLevel: user.YearLevel,
  }
  created, err := ss.responseRepo.Create(ctx, nil, []*types.SurveyResponse{response})
  if err != nil {
    ss.log.Error("Failed to create survey response", "error", err)
    return nil, err
  }
  response = created[0]

  //4) The submission is durable at this point. Export and broadcast are
  //   fire-and-forget; a failure here never fails the submit.
  if ss.sheets != nil {
    ss.sheets.Enqueue(response, user)
  }
  if ss.hub != nil {
    ss.hub.BroadcastGlobal(ctx, socket.Message{
      Channel: socket.ChannelResponses,
      Payload: map[string]interface{}{
        "event":     "response.created",
        "surveyId":  response.SurveyID,
        "userId":    response.UserID,
        "createdAt": response.CreatedAt,
      },
    })
  }

  ss.log.Info("Submit finished successfully :)", "userID", userID, "surveyID", surveyID)
  return response, nil
}
