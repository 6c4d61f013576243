package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kru-nsru/survey-portal-backend/internal/apperr"
	"github.com/kru-nsru/survey-portal-backend/internal/codes"
	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

// fakeCodeStore is an in-memory codes.Store for service tests.
type fakeCodeStore struct {
	mu      sync.Mutex
	entries map[string]codes.Entry
	setErr  error
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{entries: make(map[string]codes.Entry)}
}

func (f *fakeCodeStore) Get(ctx context.Context, identity string) (codes.Entry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[identity]
	return entry, ok, nil
}

func (f *fakeCodeStore) Set(ctx context.Context, identity string, entry codes.Entry, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[identity] = entry
	return nil
}

func (f *fakeCodeStore) Delete(ctx context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, identity)
	return nil
}

// fakeUserRepo keeps users in a slice and records password updates.
type fakeUserRepo struct {
	users            []*types.User
	updatedPasswords map[string]string
	updatedFields    map[uuid.UUID]map[string]interface{}
}

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	return &fakeUserRepo{
		users:            users,
		updatedPasswords: make(map[string]string),
		updatedFields:    make(map[uuid.UUID]map[string]interface{}),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	f.users = append(f.users, users...)
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, id := range userIDs {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, sid := range studentIDs {
			if u.StudentID == sid {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, email := range userEmails {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
	for _, u := range f.users {
		if u.Email == userEmail {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) StudentIDExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error) {
	for _, u := range f.users {
		if u.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error {
	f.updatedFields[userID] = fields
	return nil
}

func (f *fakeUserRepo) UpdatePasswordByEmail(ctx context.Context, tx *gorm.DB, userEmail, hashedPassword string) error {
	for _, u := range f.users {
		if u.Email == userEmail {
			u.Password = hashedPassword
			f.updatedPasswords[userEmail] = hashedPassword
			return nil
		}
	}
	return fmt.Errorf("no user with email %s", userEmail)
}

func (f *fakeUserRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	return nil
}

func (f *fakeUserRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	var kept []*types.User
	for _, u := range f.users {
		remove := false
		for _, id := range userIDs {
			if u.ID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, u)
		}
	}
	f.users = kept
	return nil
}

func (f *fakeUserRepo) GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error) {
	if len(f.users) == 0 {
		return nil, fmt.Errorf("no users in fake repo")
	}
	return f.users[0], nil
}

// fakeResponseRepo enforces the one-response-per-survey rule in memory.
type fakeResponseRepo struct {
	responses []*types.SurveyResponse
	exported  []uuid.UUID
}

func newFakeResponseRepo(responses ...*types.SurveyResponse) *fakeResponseRepo {
	return &fakeResponseRepo{responses: responses}
}

func (f *fakeResponseRepo) Create(ctx context.Context, tx *gorm.DB, responses []*types.SurveyResponse) ([]*types.SurveyResponse, error) {
	for _, r := range responses {
		for _, existing := range f.responses {
			if existing.UserID == r.UserID && existing.SurveyID == r.SurveyID {
				return nil, fmt.Errorf("%w: response already submitted", apperr.ErrConflict)
			}
		}
		f.responses = append(f.responses, r)
	}
	return responses, nil
}

func (f *fakeResponseRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.SurveyResponse, error) {
	return f.responses, nil
}

func (f *fakeResponseRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.SurveyResponse, error) {
	var out []*types.SurveyResponse
	for _, r := range f.responses {
		for _, id := range userIDs {
			if r.UserID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) GetBySurveyIDs(ctx context.Context, tx *gorm.DB, surveyIDs []string) ([]*types.SurveyResponse, error) {
	var out []*types.SurveyResponse
	for _, r := range f.responses {
		for _, id := range surveyIDs {
			if r.SurveyID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) GetUnexported(ctx context.Context, tx *gorm.DB) ([]*types.SurveyResponse, error) {
	var out []*types.SurveyResponse
	for _, r := range f.responses {
		if !r.Exported {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) ExistsByUserAndSurvey(ctx context.Context, tx *gorm.DB, userID uuid.UUID, surveyID string) (bool, error) {
	for _, r := range f.responses {
		if r.UserID == userID && r.SurveyID == surveyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResponseRepo) MarkExported(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error {
	f.exported = append(f.exported, responseIDs...)
	for _, r := range f.responses {
		for _, id := range responseIDs {
			if r.ID == id {
				r.Exported = true
			}
		}
	}
	return nil
}

func (f *fakeResponseRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error {
	var kept []*types.SurveyResponse
	for _, r := range f.responses {
		remove := false
		for _, id := range responseIDs {
			if r.ID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, r)
		}
	}
	f.responses = kept
	return nil
}

func (f *fakeResponseRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	var kept []*types.SurveyResponse
	for _, r := range f.responses {
		remove := false
		for _, id := range userIDs {
			if r.UserID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, r)
		}
	}
	f.responses = kept
	return nil
}

// fakeUserTokenRepo keeps token rows in memory.
type fakeUserTokenRepo struct {
	tokens []*types.UserToken
}

func (f *fakeUserTokenRepo) Create(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	f.tokens = append(f.tokens, userTokens...)
	return userTokens, nil
}

func (f *fakeUserTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error) {
	var out []*types.UserToken
	for _, t := range f.tokens {
		for _, at := range accessTokens {
			if t.AccessToken == at {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error) {
	var out []*types.UserToken
	for _, t := range f.tokens {
		for _, rt := range refreshTokens {
			if t.RefreshToken == rt {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	var out []*types.UserToken
	for _, t := range f.tokens {
		for _, id := range userIDs {
			if t.UserID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) error {
	var kept []*types.UserToken
	for _, t := range f.tokens {
		remove := false
		for _, id := range tokenIDs {
			if t.ID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeUserTokenRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	var kept []*types.UserToken
	for _, t := range f.tokens {
		remove := false
		for _, id := range userIDs {
			if t.UserID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

// fakeEmailService records outgoing email instead of sending it.
type fakeEmailService struct {
	sent    []sentEmail
	failErr error
}

type sentEmail struct {
	to        string
	subject   string
	plainText string
	emailType string
}

func (f *fakeEmailService) SendEmail(ctx context.Context, toEmail string, subject string, plainText string, htmlContent string, emailType string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, sentEmail{to: toEmail, subject: subject, plainText: plainText, emailType: emailType})
	return nil
}

// fakeTextService records outgoing SMS.
type fakeTextService struct {
	sent []string
}

func (f *fakeTextService) SendText(ctx context.Context, toNumber string, body string) error {
	f.sent = append(f.sent, toNumber)
	return nil
}
