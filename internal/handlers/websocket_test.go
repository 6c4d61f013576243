package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kru-nsru/survey-portal-backend/internal/requestdata"
	"github.com/kru-nsru/survey-portal-backend/internal/socket"
	"github.com/kru-nsru/survey-portal-backend/internal/types"
)

func TestSubscriptionChannelsByRole(t *testing.T) {
	tests := []struct {
		role     string
		wantFeed bool
	}{
		{types.RoleStudent, false},
		{types.RolePerson, false},
		{types.RoleTeacher, true},
		{types.RoleAdmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rd := &requestdata.RequestData{UserID: uuid.New(), Role: tt.role}

			channels := subscriptionChannels(rd)

			assert.Contains(t, channels, "user:"+rd.UserID.String())
			if tt.wantFeed {
				assert.Contains(t, channels, socket.ChannelResponses)
			} else {
				assert.NotContains(t, channels, socket.ChannelResponses)
			}
		})
	}
}
