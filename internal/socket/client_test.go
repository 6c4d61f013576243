package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kru-nsru/survey-portal-backend/internal/logger"
)

// newTestConnPair upgrades a real websocket over httptest and hands back both
// ends of the connection.
func newTestConnPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientConn.Close() })

	select {
	case serverConn := <-serverConns:
		return serverConn, clientConn
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the server side of the websocket")
		return nil, nil
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	serverConn, _ := newTestConnPair(t)
	hub := NewHub(logger.NewNop())
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := NewClient(serverConn, hub, uuid.New(), cancel, logger.NewNop())
	hub.Subscribe(client, []string{"user:" + client.ID.String()})

	client.close()
	assert.NotPanics(t, client.close)

	_, ok := <-client.Outbound
	assert.False(t, ok)
}

func TestClientDisconnectShutsDownBothLoops(t *testing.T) {
	serverConn, clientConn := newTestConnPair(t)
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := NewClient(serverConn, hub, uuid.New(), cancel, logger.NewNop())
	hub.Subscribe(client, []string{"user:" + client.ID.String()})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		client.ReadLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		client.WriteLoop(ctx)
	}()

	// Hanging up client-side makes the read pump exit first; the write pump
	// follows when the outbound channel closes. Both defer close().
	require.NoError(t, clientConn.Close())

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pump goroutines did not shut down after disconnect")
	}
}
