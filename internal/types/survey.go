package types

const (
  QuestionTypeRating = "rating"
  QuestionTypeText   = "text"
)

// SurveyDefinition is loaded from a JSON file under the survey data
// directory. It is read-only input, never persisted.
type SurveyDefinition struct {
  ID          string     `json:"id"`
  Title       string     `json:"title"`
  Description string     `json:"description,omitempty"`
  Questions   []Question `json:"questions"`
}

type Question struct {
  ID       int    `json:"id"`
  Question string `json:"question"`
  Type     string `json:"type"`
  Category string `json:"category,omitempty"`
}
