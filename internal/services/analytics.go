package services

import (
  "context"
  "fmt"
  "sort"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/repos"
  "github.com/kru-nsru/survey-portal-backend/internal/surveys"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

// radarDimension pairs a survey id with its dashboard label. Order matters,
// the radar chart axes follow this sequence.
type radarDimension struct {
  SurveyID string
  Label    string
}

var radarDimensions = []radarDimension{
  {SurveyID: "intelligent-tk", Label: "TK (เทคโนโลยี)"},
  {SurveyID: "intelligent-tpk", Label: "TPK (เทคโนโลยี+การสอน)"},
  {SurveyID: "intelligent-tck", Label: "TCK (เทคโนโลยี+เนื้อหา)"},
  {SurveyID: "intelligent-tpack", Label: "TPACK (บูรณาการ)"},
  {SurveyID: "ethical-knowledge", Label: "จริยธรรม"},
}

// UnknownGroupTH groups responses whose user has no faculty or year on file.
const UnknownGroupTH = "ไม่ระบุ"

const rankedSkillCount = 5

type AnalyticsService interface {
  // ComputeAnalytics aggregates every stored response into the dashboard
  // payload: radar chart, skill rankings, group comparison, readiness gauge.
  ComputeAnalytics(ctx context.Context) (*types.Analytics, error)
}

type analyticsService struct {
  db           *gorm.DB
  log          *logger.Logger
  store        *surveys.Store
  userRepo     repos.UserRepo
  responseRepo repos.SurveyResponseRepo
}

func NewAnalyticsService(
  db *gorm.DB,
  log *logger.Logger,
  store *surveys.Store,
  userRepo repos.UserRepo,
  responseRepo repos.SurveyResponseRepo,
) AnalyticsService {
  serviceLog := log.With("service", "AnalyticsService")
  return &analyticsService{
    db:           db,
    log:          serviceLog,
    store:        store,
    userRepo:     userRepo,
    responseRepo: responseRepo,
  }
}

func formatMean(sum float64, count int) string {
  if count == 0 {
    return "0"
  }
  return fmt.Sprintf("%.2f", sum/float64(count))
}

func (as *analyticsService) ComputeAnalytics(ctx context.Context) (*types.Analytics, error) {
  as.log.Info("Starting ComputeAnalytics now...")

  responses, err := as.responseRepo.GetAll(ctx, nil)
  if err != nil {
    as.log.Error("Failed to fetch survey responses", "error", err)
    return nil, err
  }
  users, err := as.userRepo.GetAll(ctx, nil)
  if err != nil {
    as.log.Error("Failed to fetch users", "error", err)
    return nil, err
  }
  usersByID := make(map[uuid.UUID]*types.User, len(users))
  for _, u := range users {
    usersByID[u.ID] = u
  }

  analytics := &types.Analytics{
    RadarChart:       as.buildRadarChart(responses),
    Comparative:      as.buildComparative(responses, usersByID),
    PerformanceGauge: as.buildGauge(responses),
    TrendData: types.TrendData{
      Enabled: false,
      Message: "ยังไม่มีข้อมูล Pre-test/Post-test",
    },
    Meta: types.AnalyticsMeta{
      TotalResponses: len(responses),
      TotalUsers:     len(users),
      LastUpdated:    time.Now().UTC().Format(time.RFC3339),
    },
  }
  analytics.TopSkills, analytics.BottomSkills = as.buildSkillRankings(responses)

  as.log.Info("ComputeAnalytics finished successfully :)", "responses", len(responses), "users", len(users))
  return analytics, nil
}

// buildRadarChart averages every valid rating per dimension survey. A value
// only counts when it falls inside the 1-5 scale.
func (as *analyticsService) buildRadarChart(responses []*types.SurveyResponse) types.RadarChart {
  sums := make(map[string]float64, len(radarDimensions))
  counts := make(map[string]int, len(radarDimensions))
  for _, r := range responses {
    for _, raw := range r.Answers {
      value, ok := numericAnswer(raw)
      if !ok || value < 1 || value > 5 {
        continue
      }
      sums[r.SurveyID] += value
      counts[r.SurveyID]++
    }
  }

  chart := types.RadarChart{MaxScore: 5}
  for _, dim := range radarDimensions {
    chart.Labels = append(chart.Labels, dim.Label)
    chart.Scores = append(chart.Scores, formatMean(sums[dim.SurveyID], counts[dim.SurveyID]))
  }
  return chart
}

type skillAccumulator struct {
  item  types.SkillItem
  sum   float64
  count int
}

// buildSkillRankings ranks every rating question across all surveys by its
// mean score. The strongest five and weakest five come back separately, the
// weak list ordered worst-first.
func (as *analyticsService) buildSkillRankings(responses []*types.SurveyResponse) ([]types.SkillItem, []types.SkillItem) {
  accumulators := make(map[string]*skillAccumulator)
  var order []string

  for _, def := range as.store.List() {
    for _, q := range def.Questions {
      if q.Type != types.QuestionTypeRating {
        continue
      }
      key := fmt.Sprintf("%s|question_%d", def.ID, q.ID)
      accumulators[key] = &skillAccumulator{
        item: types.SkillItem{
          Question:   q.Question,
          Category:   q.Category,
          SurveyName: def.Title,
        },
      }
      order = append(order, key)
    }
  }

  for _, r := range responses {
    for _, def := range as.store.List() {
      if def.ID != r.SurveyID {
        continue
      }
      for _, q := range def.Questions {
        if q.Type != types.QuestionTypeRating {
          continue
        }
        raw, ok := r.Answers[fmt.Sprintf("question_%d", q.ID)]
        if !ok {
          continue
        }
        value, numeric := numericAnswer(raw)
        if !numeric || value < 1 || value > 5 {
          continue
        }
        acc := accumulators[fmt.Sprintf("%s|question_%d", def.ID, q.ID)]
        acc.sum += value
        acc.count++
      }
    }
  }

  ranked := make([]*skillAccumulator, 0, len(order))
  for _, key := range order {
    acc := accumulators[key]
    if acc.count == 0 {
      continue
    }
    acc.item.Mean = formatMean(acc.sum, acc.count)
    acc.item.ResponseCount = acc.count
    ranked = append(ranked, acc)
  }
  sort.SliceStable(ranked, func(i, j int) bool {
    return ranked[i].sum/float64(ranked[i].count) > ranked[j].sum/float64(ranked[j].count)
  })

  topN := rankedSkillCount
  if topN > len(ranked) {
    topN = len(ranked)
  }
  top := make([]types.SkillItem, 0, topN)
  for _, acc := range ranked[:topN] {
    top = append(top, acc.item)
  }

  bottomStart := len(ranked) - rankedSkillCount
  if bottomStart < 0 {
    bottomStart = 0
  }
  bottom := make([]types.SkillItem, 0, len(ranked)-bottomStart)
  for i := len(ranked) - 1; i >= bottomStart; i-- {
    bottom = append(bottom, ranked[i].item)
  }
  return top, bottom
}

// buildComparative groups per-response mean scores by the responding user's
// current faculty and year level. Responses whose user no longer exists are
// skipped.
func (as *analyticsService) buildComparative(responses []*types.SurveyResponse, usersByID map[uuid.UUID]*types.User) types.Comparative {
  type groupAccumulator struct {
    sum   float64
    count int
  }
  byFaculty := make(map[string]*groupAccumulator)
  byYear := make(map[string]*groupAccumulator)

  for _, r := range responses {
    user, ok := usersByID[r.UserID]
    if !ok {
      continue
    }
    var sum float64
    var count int
    for _, raw := range r.Answers {
      value, numeric := numericAnswer(raw)
      if !numeric || value < 1 || value > 5 {
        continue
      }
      sum += value
      count++
    }
    if count == 0 {
      continue
    }
    mean := sum / float64(count)

    faculty := user.Faculty
    if faculty == "" || faculty == types.UnspecifiedTH {
      faculty = UnknownGroupTH
    }
    year := user.YearLevel
    if year == "" || year == types.UnspecifiedTH {
      year = UnknownGroupTH
    }
    if byFaculty[faculty] == nil {
      byFaculty[faculty] = &groupAccumulator{}
    }
    byFaculty[faculty].sum += mean
    byFaculty[faculty].count++
    if byYear[year] == nil {
      byYear[year] = &groupAccumulator{}
    }
    byYear[year].sum += mean
    byYear[year].count++
  }

  comparative := types.Comparative{
    ByFaculty: make(map[string]types.GroupStat, len(byFaculty)),
    ByYear:    make(map[string]types.GroupStat, len(byYear)),
  }
  for name, acc := range byFaculty {
    comparative.ByFaculty[name] = types.GroupStat{Mean: formatMean(acc.sum, acc.count), Responses: acc.count}
  }
  for name, acc := range byYear {
    comparative.ByYear[name] = types.GroupStat{Mean: formatMean(acc.sum, acc.count), Responses: acc.count}
  }
  return comparative
}

// buildGauge translates the grand mean of every valid rating into a teaching
// readiness level.
func (as *analyticsService) buildGauge(responses []*types.SurveyResponse) types.PerformanceGauge {
  var sum float64
  var count int
  for _, r := range responses {
    for _, raw := range r.Answers {
      value, ok := numericAnswer(raw)
      if !ok || value < 1 || value > 5 {
        continue
      }
      sum += value
      count++
    }
  }

  gauge := types.PerformanceGauge{
    Score:    formatMean(sum, count),
    MaxScore: 5,
  }
  var grandMean float64
  if count > 0 {
    grandMean = sum / float64(count)
  }
  switch {
  case grandMean >= 3.51:
    gauge.Level = "Advanced"
    gauge.Color = "#28a745"
    gauge.Label = "พร้อมสำหรับการสอนจริง"
  case grandMean >= 2.51:
    gauge.Level = "Intermediate"
    gauge.Color = "#ffc107"
    gauge.Label = "พอใช้ได้ แต่ต้องฝึกเพิ่ม"
  default:
    gauge.Level = "Novice"
    gauge.Color = "#dc3545"
    gauge.Label = "ต้องปูพื้นฐานด่วน"
  }
  return gauge
}
