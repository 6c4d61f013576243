package types

// Analytics shapes mirror what the admin dashboard charts consume. Means are
// formatted as two-decimal strings so the frontend can render them directly.

type RadarChart struct {
  Labels   []string `json:"labels"`
  Scores   []string `json:"scores"`
  MaxScore int      `json:"maxScore"`
}

type SkillItem struct {
  Question      string `json:"question"`
  Category      string `json:"category"`
  Mean          string `json:"mean"`
  SurveyName    string `json:"surveyName"`
  ResponseCount int    `json:"responseCount"`
}

type GroupStat struct {
  Mean      string `json:"mean"`
  Responses int    `json:"responses"`
}

type Comparative struct {
  ByFaculty map[string]GroupStat `json:"byFaculty"`
  ByYear    map[string]GroupStat `json:"byYear"`
}

type PerformanceGauge struct {
  Score    string `json:"score"`
  Level    string `json:"level"`
  Color    string `json:"color"`
  Label    string `json:"label"`
  MaxScore int    `json:"maxScore"`
}

type TrendData struct {
  Enabled bool     `json:"enabled"`
  Message string   `json:"message"`
  Dates   []string `json:"dates"`
  Scores  []string `json:"scores"`
}

type AnalyticsMeta struct {
  TotalResponses int    `json:"totalResponses"`
  TotalUsers     int    `json:"totalUsers"`
  LastUpdated    string `json:"lastUpdated"`
}

type Analytics struct {
  RadarChart       RadarChart       `json:"radarChart"`
  TopSkills        []SkillItem      `json:"topSkills"`
  BottomSkills     []SkillItem      `json:"bottomSkills"`
  Comparative      Comparative      `json:"comparative"`
  PerformanceGauge PerformanceGauge `json:"performanceGauge"`
  TrendData        TrendData        `json:"trendData"`
  Meta             AnalyticsMeta    `json:"meta"`
}
