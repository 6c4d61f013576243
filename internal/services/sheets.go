package services

import (
  "context"
  "fmt"
  "os"
  "sort"
  "strconv"
  "strings"
  "time"

  "github.com/google/uuid"
  "google.golang.org/api/option"
  "google.golang.org/api/sheets/v4"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/surveys"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

// sheetNames maps survey ids to their tab in the shared spreadsheet. Unknown
// ids fall back to the raw survey id.
var sheetNames = map[string]string{
  "ethical-knowledge": "Ethical Knowledge",
  "intelligent-tck":   "TCK",
  "intelligent-tk":    "TK",
  "intelligent-tpack": "TPACK",
  "intelligent-tpk":   "TPK",
}

type SheetsService interface {
  // Enqueue hands a freshly persisted response to the export worker. It
  // never blocks: when the queue is full the response is skipped and left
  // unexported for a later backfill.
  Enqueue(response *types.SurveyResponse, user *types.User)

  // Backfill exports every response not yet marked exported.
  Backfill(ctx context.Context) (int, error)

  // TestConnection reads spreadsheet metadata to confirm credentials work.
  TestConnection(ctx context.Context) error

  // Start launches the export worker; Stop drains it.
  Start()
  Stop()
}

type exportJob struct {
  response *types.SurveyResponse
  user     *types.User
}

type sheetsService struct {
  log           *logger.Logger
  svc           *sheets.Service
  spreadsheetID string
  surveyStore   *surveys.Store
  userRepo      repos.UserRepo
  responseRepo  repos.SurveyResponseRepo
  jobs          chan exportJob
  done          chan struct{}
}

func NewSheetsService(
  log *logger.Logger,
  surveyStore *surveys.Store,
  userRepo repos.UserRepo,
  responseRepo repos.SurveyResponseRepo,
) (SheetsService, error) {
  serviceLog := log.With("service", "SheetsService")

  spreadsheetID := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
  if spreadsheetID == "" {
    return nil, fmt.Errorf("Missing GOOGLE_SHEETS_SPREADSHEET_ID environment variable")
  }
  credsPath := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE")

  ctx := context.Background()
  var opts []option.ClientOption
  opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
  if credsPath != "" {
    opts = append(opts, option.WithCredentialsFile(credsPath))
  }
  svc, err := sheets.NewService(ctx, opts...)
  if err != nil {
    serviceLog.Error("Failed to initialize Google Sheets client", "error", err)
    return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
  }
  serviceLog.Info("Google Sheets client initialized successfully :)", "spreadsheetID", spreadsheetID)

  return &sheetsService{
    log:           serviceLog,
    svc:           svc,
    spreadsheetID: spreadsheetID,
    surveyStore:   surveyStore,
    userRepo:      userRepo,
    responseRepo:  responseRepo,
    jobs:          make(chan exportJob, 256),
    done:          make(chan struct{}),
  }, nil
}

func (ss *sheetsService) Start() {
  go ss.worker()
}

func (ss *sheetsService) Stop() {
  close(ss.jobs)
  <-ss.done
}

func (ss *sheetsService) worker() {
  defer close(ss.done)
  for job := range ss.jobs {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    if err := ss.appendResponse(ctx, job.response, job.user); err != nil {
      ss.log.Warn("Failed to export response to Google Sheets", "responseID", job.response.ID, "error", err)
      cancel()
      continue
    }
    if err := ss.responseRepo.MarkExported(ctx, nil, []uuid.UUID{job.response.ID}); err != nil {
      ss.log.Warn("Failed to mark response as exported", "responseID", job.response.ID, "error", err)
    }
    cancel()
  }
}

func (ss *sheetsService) Enqueue(response *types.SurveyResponse, user *types.User) {
  select {
  case ss.jobs <- exportJob{response: response, user: user}:
    ss.log.Debug("Response enqueued for sheet export", "responseID", response.ID)
  default:
    ss.log.Warn("Sheet export queue is full, leaving response for backfill", "responseID", response.ID)
  }
}

func sheetNameFor(surveyID string) string {
  if name, ok := sheetNames[surveyID]; ok {
    return name
  }
  return surveyID
}

// truncateLabel shortens a question label by characters, not bytes, so Thai
// text never gets cut mid-rune.
func truncateLabel(label string, max int) string {
  runes := []rune(label)
  if len(runes) <= max {
    return label
  }
  return string(runes[:max])
}

// ensureHeaders writes the header row when the sheet tab is still empty.
func (ss *sheetsService) ensureHeaders(ctx context.Context, surveyID string) error {
  sheetName := sheetNameFor(surveyID)
  checkRange := fmt.Sprintf("%s!A1:Z1", sheetName)

  resp, err := ss.svc.Spreadsheets.Values.Get(ss.spreadsheetID, checkRange).Context(ctx).Do()
  if err != nil {
    return fmt.Errorf("failed to read header row of '%s': %w", sheetName, err)
  }
  if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
    return nil
  }

  headers := []interface{}{"Timestamp", "Student ID", "Name", "Email", "Faculty", "Major", "Year", "Role"}
  if def, defErr := ss.surveyStore.Get(surveyID); defErr == nil {
    for _, q := range def.Questions {
      headers = append(headers, fmt.Sprintf("Q%d: %s", q.ID, truncateLabel(q.Question, 50)))
    }
  }

  ss.log.Info("Adding header row to sheet", "sheet", sheetName)
  _, err = ss.svc.Spreadsheets.Values.Update(ss.spreadsheetID, checkRange, &sheets.ValueRange{
    Values: [][]interface{}{headers},
  }).ValueInputOption("RAW").Context(ctx).Do()
  if err != nil {
    return fmt.Errorf("failed to write header row of '%s': %w", sheetName, err)
  }
  return nil
}

// answerValues returns the response's answers ordered by question number,
// parsed out of the "question_<n>" keys.
func answerValues(response *types.SurveyResponse) []interface{} {
  keys := make([]string, 0, len(response.Answers))
  for key := range response.Answers {
    keys = append(keys, key)
  }
  sort.Slice(keys, func(i, j int) bool {
    numI, _ := strconv.Atoi(strings.TrimPrefix(keys[i], "question_"))
    numJ, _ := strconv.Atoi(strings.TrimPrefix(keys[j], "question_"))
    return numI < numJ
  })
  values := make([]interface{}, 0, len(keys))
  for _, key := range keys {
    value := response.Answers[key]
    if value == nil {
      value = ""
    }
    values = append(values, value)
  }
  return values
}

func (ss *sheetsService) appendResponse(ctx context.Context, response *types.SurveyResponse, user *types.User) error {
  if err := ss.ensureHeaders(ctx, response.SurveyID); err != nil {
    ss.log.Warn("Could not check/add headers", "error", err)
  }

  row := []interface{}{
    response.CreatedAt.Format(time.RFC3339),
    user.StudentID,
    strings.TrimSpace(user.FirstName + " " + user.LastName),
    user.Email,
    response.Faculty,
    response.Major,
    response.YearLevel,
    user.Role,
  }
  row = append(row, answerValues(response)...)

  sheetName := sheetNameFor(response.SurveyID)
  appendRange := fmt.Sprintf("%s!A:Z", sheetName)
  _, err := ss.svc.Spreadsheets.Values.Append(ss.spreadsheetID, appendRange, &sheets.ValueRange{
    Values: [][]interface{}{row},
  }).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
  if err != nil {
    return fmt.Errorf("failed to append row to '%s': %w", sheetName, err)
  }
  ss.log.Info("Appended response to Google Sheets", "surveyID", response.SurveyID, "studentID", user.StudentID)
  return nil
}

func (ss *sheetsService) Backfill(ctx context.Context) (int, error) {
  ss.log.Info("Starting Backfill of unexported responses now...")

  responses, err := ss.responseRepo.GetUnexported(ctx, nil)
  if err != nil {
    return 0, fmt.Errorf("failed to fetch unexported responses: %w", err)
  }
  if len(responses) == 0 {
    ss.log.Info("No unexported responses found, nothing to backfill")
    return 0, nil
  }

  // One user lookup for the whole batch.
  userIDSet := make(map[uuid.UUID]struct{})
  for _, response := range responses {
    userIDSet[response.UserID] = struct{}{}
  }
  userIDs := make([]uuid.UUID, 0, len(userIDSet))
  for id := range userIDSet {
    userIDs = append(userIDs, id)
  }
  users, err := ss.userRepo.GetByIDs(ctx, nil, userIDs)
  if err != nil {
    return 0, fmt.Errorf("failed to fetch users for backfill: %w", err)
  }
  usersByID := make(map[uuid.UUID]*types.User, len(users))
  for _, user := range users {
    usersByID[user.ID] = user
  }

  exported := 0
  for _, response := range responses {
    user, ok := usersByID[response.UserID]
    if !ok {
      ss.log.Warn("Skipping response with no matching user", "responseID", response.ID, "userID", response.UserID)
      continue
    }
    if err := ss.appendResponse(ctx, response, user); err != nil {
      ss.log.Warn("Failed to backfill response", "responseID", response.ID, "error", err)
      continue
    }
    if err := ss.responseRepo.MarkExported(ctx, nil, []uuid.UUID{response.ID}); err != nil {
      ss.log.Warn("Failed to mark backfilled response as exported", "responseID", response.ID, "error", err)
      continue
    }
    exported++
  }
  ss.log.Info("Backfill finished", "exported", exported, "total", len(responses))
  return exported, nil
}

func (ss *sheetsService) TestConnection(ctx context.Context) error {
  ss.log.Info("Testing Google Sheets connection now...")
  spreadsheet, err := ss.svc.Spreadsheets.Get(ss.spreadsheetID).Context(ctx).Do()
  if err != nil {
    ss.log.Error("Google Sheets connection test failed", "error", err)
    return fmt.Errorf("sheets connection test failed: %w", err)
  }
  ss.log.Info("Google Sheets connection test succeeded :)", "title", spreadsheet.Properties.Title)
  return nil
}
