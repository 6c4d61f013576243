package handlers

import (
  "context"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/gorilla/websocket"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
  "github.com/kru-nsru/survey-portal-backend/internal/requestdata"
  "github.com/kru-nsru/survey-portal-backend/internal/socket"
  "github.com/kru-nsru/survey-portal-backend/internal/types"
)

// subscriptionChannels picks the channels a fresh socket starts on. Everyone
// gets their personal channel; dashboard roles also get the live response
// feed.
func subscriptionChannels(rd *requestdata.RequestData) []string {
  channels := []string{"user:" + rd.UserID.String()}
  if rd.Role == types.RoleAdmin || rd.Role == types.RoleTeacher {
    channels = append(channels, socket.ChannelResponses)
  }
  return channels
}

var upgrader = websocket.Upgrader{
  CheckOrigin: func(r *http.Request) bool {
    return true
  },
}

func WsHandler(hub *socket.Hub, log *logger.Logger) gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil || rd.UserID == uuid.Nil {
      c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
      return
    }
    conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
      log.Warn("Failed to upgrade to websocket", "error", err)
      return
    }

    // The socket outlives the HTTP request, so it gets its own context.
    ctx, cancel := context.WithCancel(context.Background())
    client := socket.NewClient(conn, hub, rd.UserID, cancel, log)

    hub.Subscribe(client, subscriptionChannels(rd))

    go client.ReadLoop(ctx)
    go client.WriteLoop(ctx)
  }
}
