package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, hub *Hub, userID uuid.UUID) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set("userID", userID)
		}
		c.Next()
	}, NewHandler(hub, nil, zerolog.Nop()).HandleConnection)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHub_DeliversToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	userID := uuid.New()
	conn, _, err := websocket.DefaultDialer.Dial(startServer(t, hub, userID), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientsCount(userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(uuid.New(), EventApplicationStatusChanged, "someone else")
	hub.Publish(userID, EventApplicationStatusChanged, map[string]string{"status": "APPROVED"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, EventApplicationStatusChanged, event.Type)
	assert.Equal(t, "APPROVED", event.Data["status"])
}

func TestHub_UnregistersOnClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	userID := uuid.New()
	conn, _, err := websocket.DefaultDialer.Dial(startServer(t, hub, userID), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientsCount(userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientsCount(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	userID := uuid.New()
	conn, _, err := websocket.DefaultDialer.Dial(startServer(t, hub, userID), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientsCount(userID) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientsCount(userID))
}

func TestHandler_RequiresUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	url := startServer(t, hub, uuid.Nil)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://apply.example.com/"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, check(req("https://APPLY.example.com")))
	assert.True(t, check(req("")))
	assert.False(t, check(req("https://evil.example.com")))
	assert.True(t, originChecker(nil)(req("https://anything.test")))
}
