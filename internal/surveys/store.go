package surveys

import (
  "encoding/json"
  "fmt"
  "os"
  "path/filepath"
  "sort"
  "strings"

  "github.com/kru-nsru/survey-portal-backend/internal/apperr"
  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

// Store loads survey definitions from JSON files in a directory at startup
// and serves them read-only. A definition's id falls back to its filename
// without the .json extension when the file does not carry one.
type Store struct {
  log         *logger.Logger
  definitions map[string]*types.SurveyDefinition
  order       []string
}

func NewStore(log *logger.Logger, dir string) (*Store, error) {
  entries, err := os.ReadDir(dir)
  if err != nil {
    return nil, fmt.Errorf("failed to read survey directory '%s': %w", dir, err)
  }
  s := &Store{
    log:         log.With("component", "SurveyStore"),
    definitions: make(map[string]*types.SurveyDefinition),
  }
  for _, entry := range entries {
    if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
      continue
    }
    path := filepath.Join(dir, entry.Name())
    raw, err := os.ReadFile(path)
    if err != nil {
      return nil, fmt.Errorf("failed to read survey file '%s': %w", path, err)
    }
    var def types.SurveyDefinition
    if err := json.Unmarshal(raw, &def); err != nil {
      return nil, fmt.Errorf("failed to parse survey file '%s': %w", path, err)
    }
    if def.ID == "" {
      def.ID = strings.TrimSuffix(entry.Name(), ".json")
    }
    if _, exists := s.definitions[def.ID]; exists {
      return nil, fmt.Errorf("duplicate survey id '%s' from file '%s'", def.ID, path)
    }
    s.definitions[def.ID] = &def
    s.order = append(s.order, def.ID)
    s.log.Debug("Loaded survey definition", "id", def.ID, "title", def.Title, "questions", len(def.Questions))
  }
  sort.Strings(s.order)
  s.log.Info("Survey definitions loaded", "count", len(s.definitions))
  return s, nil
}

// List returns every definition in stable id order.
func (s *Store) List() []*types.SurveyDefinition {
  out := make([]*types.SurveyDefinition, 0, len(s.order))
  for _, id := range s.order {
    out = append(out, s.definitions[id])
  }
  return out
}

func (s *Store) Get(id string) (*types.SurveyDefinition, error) {
  def, ok := s.definitions[id]
  if !ok {
    return nil, fmt.Errorf("%w: survey '%s'", apperr.ErrNotFound, id)
  }
  return def, nil
}
